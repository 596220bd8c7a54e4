package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prohmpiriya/travel-booking/internal/domain"
	"github.com/prohmpiriya/travel-booking/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const uniqueViolation = "23505"

// PgxQuerier is satisfied by *pgxpool.Pool and *database.PostgresDB
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PostgresPackageRepository stores each package as a JSONB document
type PostgresPackageRepository struct {
	db PgxQuerier
}

// NewPostgresPackageRepository creates a new PostgresPackageRepository
func NewPostgresPackageRepository(db PgxQuerier) *PostgresPackageRepository {
	return &PostgresPackageRepository{db: db}
}

// Create inserts a new package
func (r *PostgresPackageRepository) Create(ctx context.Context, pkg *domain.TravelPackage) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.package.create")
	defer span.End()
	span.SetAttributes(attribute.String("package_id", pkg.ID))

	doc, err := json.Marshal(NewPackageSnapshot(pkg))
	if err != nil {
		return fmt.Errorf("failed to encode package: %w", err)
	}

	query := `
		INSERT INTO travel_packages (id, name, passenger_capacity, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query, pkg.ID, pkg.Name, pkg.PassengerCapacity, doc, pkg.CreatedAt, pkg.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrPackageExists
		}
		return fmt.Errorf("failed to create package: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID loads a package by id
func (r *PostgresPackageRepository) GetByID(ctx context.Context, id string) (*domain.TravelPackage, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.package.get_by_id")
	defer span.End()
	span.SetAttributes(attribute.String("package_id", id))

	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT document FROM travel_packages WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "package not found")
			return nil, domain.ErrPackageNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get package: %w", err)
	}

	pkg, err := decodePackage(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return pkg, nil
}

// Update replaces the stored document of an existing package
func (r *PostgresPackageRepository) Update(ctx context.Context, pkg *domain.TravelPackage) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.package.update")
	defer span.End()
	span.SetAttributes(attribute.String("package_id", pkg.ID))

	doc, err := json.Marshal(NewPackageSnapshot(pkg))
	if err != nil {
		return fmt.Errorf("failed to encode package: %w", err)
	}

	query := `
		UPDATE travel_packages
		SET name = $2, passenger_capacity = $3, document = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, pkg.ID, pkg.Name, pkg.PassengerCapacity, doc, pkg.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update package: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "package not found")
		return domain.ErrPackageNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// List returns packages ordered by creation time
func (r *PostgresPackageRepository) List(ctx context.Context, limit, offset int) ([]*domain.TravelPackage, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.package.list")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit), attribute.Int("offset", offset))

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM travel_packages`).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count packages: %w", err)
	}

	// LIMIT NULL returns every row
	var pageLimit interface{}
	if limit > 0 {
		pageLimit = limit
	}
	rows, err := r.db.Query(ctx, `
		SELECT document FROM travel_packages
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`, pageLimit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	packages := []*domain.TravelPackage{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to scan package: %w", err)
		}
		pkg, err := decodePackage(doc)
		if err != nil {
			return nil, 0, err
		}
		packages = append(packages, pkg)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to iterate packages: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return packages, total, nil
}

func decodePackage(doc []byte) (*domain.TravelPackage, error) {
	var s PackageSnapshot
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("failed to decode package: %w", err)
	}
	pkg, err := s.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("stored package is invalid: %w", err)
	}
	return pkg, nil
}
