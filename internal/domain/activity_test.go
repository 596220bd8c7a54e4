package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActivity(t *testing.T, cost string, capacity int) *Activity {
	t.Helper()
	a, err := NewActivity("Test Name", "Test Description", decimal.RequireFromString(cost), capacity)
	require.NoError(t, err)
	return a
}

func newTestPassenger(t *testing.T, number int, tier Tier, balance string) *Passenger {
	t.Helper()
	p, err := NewPassenger(number, "TestName", tier, decimal.RequireFromString(balance))
	require.NoError(t, err)
	return p
}

func TestActivity_AddPassenger_UntilFull(t *testing.T) {
	activity := newTestActivity(t, "200.0", 1)
	passenger := newTestPassenger(t, 1, TierStandard, "200")

	assert.True(t, activity.AddPassenger(passenger), "first passenger should take the only place")
	assert.Equal(t, 1, activity.EnrolledPassengers())

	other := newTestPassenger(t, 2, TierStandard, "200")
	assert.False(t, activity.AddPassenger(other), "second passenger should be rejected")
	assert.Equal(t, 1, activity.EnrolledPassengers(), "enrolled count should not change on rejection")
	assert.True(t, activity.IsFull())
	assert.Equal(t, 0, activity.SpacesAvailable())
}

func TestActivity_AddPassenger_CountMatchesSuccesses(t *testing.T) {
	activity := newTestActivity(t, "10", 5)

	for i := 1; i <= 5; i++ {
		require.True(t, activity.AddPassenger(nil))
		assert.Equal(t, i, activity.EnrolledPassengers())
	}
	for i := 0; i < 3; i++ {
		assert.False(t, activity.AddPassenger(nil))
		assert.LessOrEqual(t, activity.EnrolledPassengers(), activity.Capacity)
	}
	assert.Equal(t, 5, activity.EnrolledPassengers())
}

func TestActivity_ZeroCapacityRejectsEveryone(t *testing.T) {
	activity := newTestActivity(t, "0", 0)

	assert.True(t, activity.IsFull())
	assert.False(t, activity.AddPassenger(nil))
	assert.Equal(t, 0, activity.EnrolledPassengers())
}

func TestNewActivity_Validation(t *testing.T) {
	tests := []struct {
		name     string
		actName  string
		cost     string
		capacity int
		wantErr  error
	}{
		{name: "empty name", actName: " ", cost: "1", capacity: 1, wantErr: ErrInvalidName},
		{name: "negative cost", actName: "Hike", cost: "-0.01", capacity: 1, wantErr: ErrInvalidCost},
		{name: "negative capacity", actName: "Hike", cost: "1", capacity: -1, wantErr: ErrInvalidCapacity},
		{name: "free activity", actName: "Walk", cost: "0", capacity: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewActivity(tt.actName, "", decimal.RequireFromString(tt.cost), tt.capacity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsValidationError(err))
				assert.Nil(t, a)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, a.ID)
			assert.Equal(t, 0, a.EnrolledPassengers())
		})
	}
}

func TestRestoreActivity_RejectsEnrolledAboveCapacity(t *testing.T) {
	_, err := RestoreActivity("act-1", "Dive", "", decimal.NewFromInt(5), 2, 3)
	assert.ErrorIs(t, err, ErrEnrolledExceedsCapacity)

	a, err := RestoreActivity("act-1", "Dive", "", decimal.NewFromInt(5), 2, 2)
	require.NoError(t, err)
	assert.True(t, a.IsFull())
}
