package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Activity is a bookable offering at a destination with a fixed capacity and cost
type Activity struct {
	ID          string
	Name        string
	Description string
	Cost        decimal.Decimal
	Capacity    int

	enrolled int
}

// NewActivity creates an activity with no enrolled passengers
func NewActivity(name, description string, cost decimal.Decimal, capacity int) (*Activity, error) {
	return RestoreActivity(uuid.New().String(), name, description, cost, capacity, 0)
}

// RestoreActivity rebuilds a persisted activity, including its enrolled count
func RestoreActivity(id, name, description string, cost decimal.Decimal, capacity, enrolled int) (*Activity, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	if cost.IsNegative() {
		return nil, ErrInvalidCost
	}
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if enrolled < 0 || enrolled > capacity {
		return nil, ErrEnrolledExceedsCapacity
	}
	return &Activity{
		ID:          id,
		Name:        name,
		Description: description,
		Cost:        cost,
		Capacity:    capacity,
		enrolled:    enrolled,
	}, nil
}

// EnrolledPassengers returns how many passengers hold a place in the activity
func (a *Activity) EnrolledPassengers() int {
	return a.enrolled
}

// SpacesAvailable returns the number of places left
func (a *Activity) SpacesAvailable() int {
	return a.Capacity - a.enrolled
}

// IsFull reports whether every place is taken
func (a *Activity) IsFull() bool {
	return a.enrolled >= a.Capacity
}

// AddPassenger takes one place for the passenger if any is left.
// Every sign-up, whatever the passenger tier, goes through here.
func (a *Activity) AddPassenger(_ *Passenger) bool {
	if a.enrolled < a.Capacity {
		a.enrolled++
		return true
	}
	return false
}
