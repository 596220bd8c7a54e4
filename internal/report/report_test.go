package report

import (
	"bytes"
	"testing"

	"github.com/prohmpiriya/travel-booking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	pkg      *domain.TravelPackage
	dest     *domain.Destination
	snorkel  *domain.Activity
	museum   *domain.Activity
	standard *domain.Passenger
	premium  *domain.Passenger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	pkg, err := domain.NewTravelPackage("Island Hopper", 3)
	require.NoError(t, err)
	dest, err := domain.NewDestination("Bali")
	require.NoError(t, err)
	snorkel, err := domain.NewActivity("Snorkeling", "Reef tour", decimal.NewFromInt(120), 1)
	require.NoError(t, err)
	museum, err := domain.NewActivity("Museum", "Local history", decimal.RequireFromString("15.5"), 10)
	require.NoError(t, err)
	dest.AddActivity(snorkel)
	dest.AddActivity(museum)
	pkg.AddDestination(dest)

	standard, err := domain.NewPassenger(1, "Ana", domain.TierStandard, decimal.NewFromInt(200))
	require.NoError(t, err)
	premium, err := domain.NewPassenger(2, "Ben", domain.TierPremium, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.True(t, pkg.AddPassenger(standard))
	require.True(t, pkg.AddPassenger(premium))

	return &fixture{pkg: pkg, dest: dest, snorkel: snorkel, museum: museum, standard: standard, premium: premium}
}

func TestItineraryLines(t *testing.T) {
	f := newFixture(t)

	lines := ItineraryLines(f.pkg)

	assert.Equal(t, []string{
		"Travel Package: Island Hopper",
		"Destination: Bali",
		"    Activity: Snorkeling",
		"        Cost: 120.00",
		"        Capacity: 1",
		"        Description: Reef tour",
		"    Activity: Museum",
		"        Cost: 15.50",
		"        Capacity: 10",
		"        Description: Local history",
	}, lines)
}

func TestPassengerListLines(t *testing.T) {
	f := newFixture(t)

	lines := PassengerListLines(f.pkg)

	assert.Equal(t, []string{
		"Travel Package: Island Hopper",
		"Passenger Capacity: 3",
		"Number of Passengers Enrolled: 2",
		"    Name: Ana, Number: 1",
		"    Name: Ben, Number: 2",
	}, lines)
}

func TestAvailableActivityLines_SkipsFullActivities(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.premium.SignUpForActivity(f.snorkel))

	lines := AvailableActivityLines(f.dest.Activities())

	assert.Equal(t, []string{
		"Activity: Museum",
		"    Spaces Available: 10",
		"    Cost: 15.50",
		"    Description: Local history",
	}, lines)
}

func TestPassengerDetailLines(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.standard.SignUpForActivity(f.snorkel))

	lines, err := PassengerDetailLines(f.pkg, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Name: Ana",
		"Number: 1",
		"Tier: standard",
		"Balance: 80.00",
		"Activities:",
		"    Activity: Snorkeling",
		"        Destination: Bali",
		"        Price Paid: 120.00",
	}, lines)

	lines, err = PassengerDetailLines(f.pkg, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name: Ben", "Number: 2", "Tier: premium", "Activities: none"}, lines)

	_, err = PassengerDetailLines(f.pkg, 42)
	assert.ErrorIs(t, err, domain.ErrPassengerNotFound)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Write(&buf, []string{"a", "b"}))
	assert.Equal(t, "a\nb\n", buf.String())
}
