package repository

import (
	"context"
	"errors"

	"github.com/prohmpiriya/travel-booking/internal/domain"
)

var (
	// ErrPackageExists is returned when creating a package whose id is already stored
	ErrPackageExists = errors.New("travel package already exists")
	// ErrLockTimeout is returned when a package lock cannot be acquired in time
	ErrLockTimeout = errors.New("timed out waiting for package lock")
	// ErrCorruptSnapshot is returned when stored state no longer satisfies the domain invariants
	ErrCorruptSnapshot = errors.New("stored travel package is corrupt")
)

// PackageRepository persists travel packages as whole aggregates
type PackageRepository interface {
	// Create stores a new package
	Create(ctx context.Context, pkg *domain.TravelPackage) error

	// GetByID loads a package, returning domain.ErrPackageNotFound when absent
	GetByID(ctx context.Context, id string) (*domain.TravelPackage, error)

	// Update replaces the stored state of an existing package
	Update(ctx context.Context, pkg *domain.TravelPackage) error

	// List returns packages ordered by creation time and the total count
	List(ctx context.Context, limit, offset int) ([]*domain.TravelPackage, int, error)
}

// PackageLocker serialises mutations of a single package
type PackageLocker interface {
	// Lock blocks until the package lock is held or ctx is done.
	// The returned function releases the lock and is safe to call once.
	Lock(ctx context.Context, packageID string) (unlock func(), err error)
}
