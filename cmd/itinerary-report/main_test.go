package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/prohmpiriya/travel-booking/internal/dto"
	"github.com/prohmpiriya/travel-booking/internal/repository"
	"github.com/prohmpiriya/travel-booking/internal/service"
	"github.com/prohmpiriya/travel-booking/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededService(t *testing.T) (service.TravelService, string) {
	t.Helper()
	ctx := context.Background()
	svc := service.NewTravelService(repository.NewMemoryPackageRepository(), nil, nil, &service.TravelServiceConfig{Logger: logger.Nop()})

	pkg, err := svc.CreatePackage(ctx, &dto.CreatePackageRequest{Name: "Island Hopper", PassengerCapacity: 2})
	require.NoError(t, err)
	dest, err := svc.AddDestination(ctx, pkg.ID, &dto.AddDestinationRequest{Name: "Bali"})
	require.NoError(t, err)
	_, err = svc.AddActivity(ctx, pkg.ID, dest.ID, &dto.AddActivityRequest{Name: "Snorkeling", Cost: decimal.NewFromInt(50), Capacity: 3})
	require.NoError(t, err)
	_, err = svc.RegisterPassenger(ctx, pkg.ID, &dto.RegisterPassengerRequest{Number: 1, Name: "Ana", Tier: "standard", Balance: decimal.NewFromInt(80)})
	require.NoError(t, err)
	return svc, pkg.ID
}

func TestRun_AllReports(t *testing.T) {
	svc, id := seededService(t)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), svc, options{packageID: id, report: reportAll, passenger: 1}, &out))

	text := out.String()
	assert.Contains(t, text, "Travel Package: Island Hopper")
	assert.Contains(t, text, "Destination: Bali")
	assert.Contains(t, text, "Number of Passengers Enrolled: 1")
	assert.Contains(t, text, "Spaces Available: 3")
	assert.Contains(t, text, "Name: Ana")
}

func TestRun_Errors(t *testing.T) {
	svc, id := seededService(t)
	ctx := context.Background()
	var out bytes.Buffer

	assert.Error(t, run(ctx, svc, options{packageID: id, report: "weather"}, &out))
	assert.Error(t, run(ctx, svc, options{packageID: id, report: reportPassenger}, &out))
	assert.Error(t, run(ctx, svc, options{packageID: "missing", report: reportItinerary}, &out))
}

func TestRun_ListPackages(t *testing.T) {
	svc, id := seededService(t)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), svc, options{}, &out))
	assert.Contains(t, out.String(), id+"  Island Hopper  (1/2 passengers, 1 destinations)")
}
