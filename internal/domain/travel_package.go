package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TravelPackage aggregates an itinerary of destinations and a roster of passengers.
// Its passenger capacity is independent of any activity capacity.
type TravelPackage struct {
	ID                string
	Name              string
	PassengerCapacity int
	CreatedAt         time.Time
	UpdatedAt         time.Time

	itinerary  []*Destination
	passengers []*Passenger
}

// NewTravelPackage creates an empty travel package
func NewTravelPackage(name string, passengerCapacity int) (*TravelPackage, error) {
	now := time.Now()
	pkg, err := RestoreTravelPackage(uuid.New().String(), name, passengerCapacity, nil, nil)
	if err != nil {
		return nil, err
	}
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	return pkg, nil
}

// RestoreTravelPackage rebuilds a persisted travel package
func RestoreTravelPackage(id, name string, passengerCapacity int, itinerary []*Destination, passengers []*Passenger) (*TravelPackage, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	if passengerCapacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if len(passengers) > passengerCapacity {
		return nil, ErrRosterExceedsCapacity
	}
	return &TravelPackage{
		ID:                id,
		Name:              name,
		PassengerCapacity: passengerCapacity,
		itinerary:         append([]*Destination(nil), itinerary...),
		passengers:        append([]*Passenger(nil), passengers...),
	}, nil
}

// AddDestination appends a destination to the itinerary
func (t *TravelPackage) AddDestination(d *Destination) {
	t.itinerary = append(t.itinerary, d)
}

// AddPassenger adds the passenger to the roster if the package has room
func (t *TravelPackage) AddPassenger(p *Passenger) bool {
	if len(t.passengers) < t.PassengerCapacity {
		t.passengers = append(t.passengers, p)
		return true
	}
	return false
}

// Itinerary returns the destinations in travel order
func (t *TravelPackage) Itinerary() []*Destination {
	return append([]*Destination(nil), t.itinerary...)
}

// Passengers returns the roster in registration order
func (t *TravelPackage) Passengers() []*Passenger {
	return append([]*Passenger(nil), t.passengers...)
}

// IsFull reports whether the roster has reached the passenger capacity
func (t *TravelPackage) IsFull() bool {
	return len(t.passengers) >= t.PassengerCapacity
}

// FindDestination looks up a destination by id
func (t *TravelPackage) FindDestination(id string) (*Destination, bool) {
	for _, d := range t.itinerary {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// FindActivity looks up an activity anywhere on the itinerary and returns it with its destination
func (t *TravelPackage) FindActivity(id string) (*Activity, *Destination, bool) {
	for _, d := range t.itinerary {
		if a, ok := d.FindActivity(id); ok {
			return a, d, true
		}
	}
	return nil, nil, false
}

// FindPassenger looks up a passenger on the roster by number
func (t *TravelPackage) FindPassenger(number int) (*Passenger, bool) {
	for _, p := range t.passengers {
		if p.Number == number {
			return p, true
		}
	}
	return nil, false
}

// AvailableActivities returns the activities that still have places, in itinerary order
func (t *TravelPackage) AvailableActivities() []*Activity {
	var out []*Activity
	for _, d := range t.itinerary {
		for _, a := range d.activities {
			if !a.IsFull() {
				out = append(out, a)
			}
		}
	}
	return out
}

// SignUp enrolls a rostered passenger in an activity of this package, both addressed by id.
// An error is returned only when either id is unknown; the enrollment outcome is the bool.
func (t *TravelPackage) SignUp(passengerNumber int, activityID string) (bool, error) {
	p, ok := t.FindPassenger(passengerNumber)
	if !ok {
		return false, ErrPassengerNotFound
	}
	a, _, ok := t.FindActivity(activityID)
	if !ok {
		return false, ErrActivityNotFound
	}
	return p.SignUpForActivity(a), nil
}
