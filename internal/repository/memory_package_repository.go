package repository

import (
	"context"
	"sync"

	"github.com/prohmpiriya/travel-booking/internal/domain"
)

// MemoryPackageRepository keeps package snapshots in process memory.
// Loads always rebuild fresh aggregates so callers never share state.
type MemoryPackageRepository struct {
	mu       sync.RWMutex
	packages map[string]*PackageSnapshot
	order    []string
}

// NewMemoryPackageRepository creates an empty in-memory repository
func NewMemoryPackageRepository() *MemoryPackageRepository {
	return &MemoryPackageRepository{packages: make(map[string]*PackageSnapshot)}
}

// Create stores a new package
func (r *MemoryPackageRepository) Create(ctx context.Context, pkg *domain.TravelPackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.packages[pkg.ID]; ok {
		return ErrPackageExists
	}
	r.packages[pkg.ID] = NewPackageSnapshot(pkg)
	r.order = append(r.order, pkg.ID)
	return nil
}

// GetByID loads a package by id
func (r *MemoryPackageRepository) GetByID(ctx context.Context, id string) (*domain.TravelPackage, error) {
	r.mu.RLock()
	s, ok := r.packages[id]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	return s.ToDomain()
}

// Update replaces the stored snapshot of an existing package
func (r *MemoryPackageRepository) Update(ctx context.Context, pkg *domain.TravelPackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.packages[pkg.ID]; !ok {
		return domain.ErrPackageNotFound
	}
	r.packages[pkg.ID] = NewPackageSnapshot(pkg)
	return nil
}

// List returns packages in creation order
func (r *MemoryPackageRepository) List(ctx context.Context, limit, offset int) ([]*domain.TravelPackage, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.order)
	if offset >= total {
		return []*domain.TravelPackage{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	out := make([]*domain.TravelPackage, 0, end-offset)
	for _, id := range r.order[offset:end] {
		pkg, err := r.packages[id].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, pkg)
	}
	return out, total, nil
}
