package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Enrollment records a place a passenger holds in an activity
type Enrollment struct {
	ActivityID string
	AmountPaid decimal.Decimal
	EnrolledAt time.Time
}

// Passenger is a traveller who may sign up for activities under the rules of their tier
type Passenger struct {
	Number int
	Name   string
	Tier   Tier

	balance     decimal.Decimal
	enrollments []Enrollment
}

// NewPassenger creates a passenger with the given opening balance
func NewPassenger(number int, name string, tier Tier, balance decimal.Decimal) (*Passenger, error) {
	return RestorePassenger(number, name, tier, balance, nil)
}

// RestorePassenger rebuilds a persisted passenger with its enrollment history
func RestorePassenger(number int, name string, tier Tier, balance decimal.Decimal, enrollments []Enrollment) (*Passenger, error) {
	if number <= 0 {
		return nil, ErrInvalidPassengerNumber
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	if !tier.IsValid() {
		return nil, ErrInvalidTier
	}
	if balance.IsNegative() {
		return nil, ErrInvalidBalance
	}
	return &Passenger{
		Number:      number,
		Name:        name,
		Tier:        tier,
		balance:     balance,
		enrollments: append([]Enrollment(nil), enrollments...),
	}, nil
}

// Balance returns the passenger's remaining balance
func (p *Passenger) Balance() decimal.Decimal {
	return p.balance
}

// Enrollments returns the activities the passenger signed up for, oldest first
func (p *Passenger) Enrollments() []Enrollment {
	return append([]Enrollment(nil), p.enrollments...)
}

// IsEnrolledIn reports whether the passenger already holds a place in the activity
func (p *Passenger) IsEnrolledIn(activityID string) bool {
	for _, e := range p.enrollments {
		if e.ActivityID == activityID {
			return true
		}
	}
	return false
}

// CanAfford reports whether the balance covers the tier price of the activity
func (p *Passenger) CanAfford(a *Activity) bool {
	if !p.Tier.Charges() {
		return true
	}
	return p.balance.GreaterThanOrEqual(p.Tier.EffectiveCost(a.Cost))
}

// SignUpForActivity tries to enroll the passenger in the activity.
// On failure neither the balance nor the activity changes.
func (p *Passenger) SignUpForActivity(a *Activity) bool {
	ok, balance := signUp(p.Tier, p.balance, a, p)
	if !ok {
		return false
	}
	paid := p.balance.Sub(balance)
	p.balance = balance
	p.enrollments = append(p.enrollments, Enrollment{
		ActivityID: a.ID,
		AmountPaid: paid,
		EnrolledAt: time.Now(),
	})
	return true
}
