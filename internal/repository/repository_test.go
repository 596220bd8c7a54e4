package repository

import (
	"testing"

	"github.com/prohmpiriya/travel-booking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type packageFixture struct {
	pkg      *domain.TravelPackage
	snorkel  *domain.Activity
	standard *domain.Passenger
}

// newPackageFixture builds a package with one enrollment already taken
func newPackageFixture(t *testing.T) *packageFixture {
	t.Helper()

	pkg, err := domain.NewTravelPackage("Island Hopper", 3)
	require.NoError(t, err)
	dest, err := domain.NewDestination("Bali")
	require.NoError(t, err)
	snorkel, err := domain.NewActivity("Snorkeling", "Reef tour", decimal.NewFromInt(120), 2)
	require.NoError(t, err)
	dest.AddActivity(snorkel)
	pkg.AddDestination(dest)

	standard, err := domain.NewPassenger(1, "Ana", domain.TierStandard, decimal.NewFromInt(200))
	require.NoError(t, err)
	require.True(t, pkg.AddPassenger(standard))
	require.True(t, standard.SignUpForActivity(snorkel))

	return &packageFixture{pkg: pkg, snorkel: snorkel, standard: standard}
}
