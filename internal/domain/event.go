package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TravelEventType identifies what happened to a travel package
type TravelEventType string

const (
	TravelEventPassengerRegistered TravelEventType = "passenger.registered"
	TravelEventActivityEnrolled    TravelEventType = "activity.enrolled"
)

// TravelEvent is published after a successful roster or enrollment change
type TravelEvent struct {
	EventID         string          `json:"event_id"`
	EventType       TravelEventType `json:"event_type"`
	PackageID       string          `json:"package_id"`
	PassengerNumber int             `json:"passenger_number"`
	PassengerName   string          `json:"passenger_name"`
	Tier            Tier            `json:"tier"`
	ActivityID      string          `json:"activity_id,omitempty"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	Balance         decimal.Decimal `json:"balance"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// NewPassengerRegisteredEvent builds the event for a passenger joining a package roster
func NewPassengerRegisteredEvent(eventID string, pkg *TravelPackage, p *Passenger) *TravelEvent {
	return &TravelEvent{
		EventID:         eventID,
		EventType:       TravelEventPassengerRegistered,
		PackageID:       pkg.ID,
		PassengerNumber: p.Number,
		PassengerName:   p.Name,
		Tier:            p.Tier,
		AmountPaid:      decimal.Zero,
		Balance:         p.Balance(),
		OccurredAt:      time.Now(),
	}
}

// NewActivityEnrolledEvent builds the event for a passenger taking a place in an activity
func NewActivityEnrolledEvent(eventID string, pkg *TravelPackage, p *Passenger, a *Activity, paid decimal.Decimal) *TravelEvent {
	return &TravelEvent{
		EventID:         eventID,
		EventType:       TravelEventActivityEnrolled,
		PackageID:       pkg.ID,
		PassengerNumber: p.Number,
		PassengerName:   p.Name,
		Tier:            p.Tier,
		ActivityID:      a.ID,
		AmountPaid:      paid,
		Balance:         p.Balance(),
		OccurredAt:      time.Now(),
	}
}

// Key returns the partition key so all events of a package stay ordered
func (e *TravelEvent) Key() string {
	return e.PackageID
}
