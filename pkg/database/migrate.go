package database

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prohmpiriya/travel-booking/pkg/logger"
	"go.uber.org/zap"
)

// Migrate applies every pending up migration found in dir of source and
// returns the resulting schema version.
func Migrate(pool *pgxpool.Pool, dbName string, source fs.FS, dir string, log *logger.Logger) (uint, error) {
	if log == nil {
		log = logger.Nop()
	}

	src, err := iofs.New(source, dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations: %w", err)
	}

	// closing this handle leaves the pool open
	db := stdlib.OpenDBFromPool(pool)
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{
		DatabaseName: dbName,
		SchemaName:   "public",
	})
	if err != nil {
		src.Close()
		db.Close()
		return 0, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		src.Close()
		driver.Close()
		return 0, fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return 0, fmt.Errorf("migration failed: dirty database version %d", dirty.Version)
		}
		return 0, fmt.Errorf("migration failed: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Info("database schema up to date", zap.Uint("version", version))
	return version, nil
}
