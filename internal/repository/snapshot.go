package repository

import (
	"fmt"
	"time"

	"github.com/prohmpiriya/travel-booking/internal/domain"
	"github.com/shopspring/decimal"
)

// PackageSnapshot is the stored form of a travel package aggregate
type PackageSnapshot struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	PassengerCapacity int                   `json:"passenger_capacity"`
	Destinations      []DestinationSnapshot `json:"destinations"`
	Passengers        []PassengerSnapshot   `json:"passengers"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

type DestinationSnapshot struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Activities []ActivitySnapshot `json:"activities"`
}

type ActivitySnapshot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
	Capacity    int             `json:"capacity"`
	Enrolled    int             `json:"enrolled"`
}

type PassengerSnapshot struct {
	Number      int                  `json:"number"`
	Name        string               `json:"name"`
	Tier        domain.Tier          `json:"tier"`
	Balance     decimal.Decimal      `json:"balance"`
	Enrollments []EnrollmentSnapshot `json:"enrollments"`
}

type EnrollmentSnapshot struct {
	ActivityID string          `json:"activity_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	EnrolledAt time.Time       `json:"enrolled_at"`
}

// NewPackageSnapshot captures the full state of a package
func NewPackageSnapshot(pkg *domain.TravelPackage) *PackageSnapshot {
	s := &PackageSnapshot{
		ID:                pkg.ID,
		Name:              pkg.Name,
		PassengerCapacity: pkg.PassengerCapacity,
		CreatedAt:         pkg.CreatedAt,
		UpdatedAt:         pkg.UpdatedAt,
	}

	for _, d := range pkg.Itinerary() {
		ds := DestinationSnapshot{ID: d.ID, Name: d.Name}
		for _, a := range d.Activities() {
			ds.Activities = append(ds.Activities, ActivitySnapshot{
				ID:          a.ID,
				Name:        a.Name,
				Description: a.Description,
				Cost:        a.Cost,
				Capacity:    a.Capacity,
				Enrolled:    a.EnrolledPassengers(),
			})
		}
		s.Destinations = append(s.Destinations, ds)
	}

	for _, p := range pkg.Passengers() {
		ps := PassengerSnapshot{
			Number:  p.Number,
			Name:    p.Name,
			Tier:    p.Tier,
			Balance: p.Balance(),
		}
		for _, e := range p.Enrollments() {
			ps.Enrollments = append(ps.Enrollments, EnrollmentSnapshot{
				ActivityID: e.ActivityID,
				AmountPaid: e.AmountPaid,
				EnrolledAt: e.EnrolledAt,
			})
		}
		s.Passengers = append(s.Passengers, ps)
	}

	return s
}

// ToDomain rebuilds the aggregate, validating every invariant on the way.
// Violations are storage faults, reported as ErrCorruptSnapshot rather than as
// the domain validation error that detected them.
func (s *PackageSnapshot) ToDomain() (*domain.TravelPackage, error) {
	pkg, err := s.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return pkg, nil
}

func (s *PackageSnapshot) toDomain() (*domain.TravelPackage, error) {
	itinerary := make([]*domain.Destination, 0, len(s.Destinations))
	for _, ds := range s.Destinations {
		activities := make([]*domain.Activity, 0, len(ds.Activities))
		for _, as := range ds.Activities {
			a, err := domain.RestoreActivity(as.ID, as.Name, as.Description, as.Cost, as.Capacity, as.Enrolled)
			if err != nil {
				return nil, fmt.Errorf("activity %s: %w", as.ID, err)
			}
			activities = append(activities, a)
		}
		d, err := domain.RestoreDestination(ds.ID, ds.Name, activities)
		if err != nil {
			return nil, fmt.Errorf("destination %s: %w", ds.ID, err)
		}
		itinerary = append(itinerary, d)
	}

	passengers := make([]*domain.Passenger, 0, len(s.Passengers))
	for _, ps := range s.Passengers {
		enrollments := make([]domain.Enrollment, 0, len(ps.Enrollments))
		for _, es := range ps.Enrollments {
			enrollments = append(enrollments, domain.Enrollment{
				ActivityID: es.ActivityID,
				AmountPaid: es.AmountPaid,
				EnrolledAt: es.EnrolledAt,
			})
		}
		p, err := domain.RestorePassenger(ps.Number, ps.Name, ps.Tier, ps.Balance, enrollments)
		if err != nil {
			return nil, fmt.Errorf("passenger %d: %w", ps.Number, err)
		}
		passengers = append(passengers, p)
	}

	pkg, err := domain.RestoreTravelPackage(s.ID, s.Name, s.PassengerCapacity, itinerary, passengers)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", s.ID, err)
	}
	pkg.CreatedAt = s.CreatedAt
	pkg.UpdatedAt = s.UpdatedAt
	return pkg, nil
}
