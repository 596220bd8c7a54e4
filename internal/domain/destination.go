package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Destination is a named stop on an itinerary that groups activities
type Destination struct {
	ID   string
	Name string

	activities []*Activity
}

// NewDestination creates a destination without activities
func NewDestination(name string) (*Destination, error) {
	return RestoreDestination(uuid.New().String(), name, nil)
}

// RestoreDestination rebuilds a persisted destination with its activities
func RestoreDestination(id, name string, activities []*Activity) (*Destination, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	return &Destination{
		ID:         id,
		Name:       name,
		activities: append([]*Activity(nil), activities...),
	}, nil
}

// AddActivity appends an activity to the destination
func (d *Destination) AddActivity(a *Activity) {
	d.activities = append(d.activities, a)
}

// Activities returns the destination's activities in the order they were added
func (d *Destination) Activities() []*Activity {
	return append([]*Activity(nil), d.activities...)
}

// FindActivity looks up an activity by id
func (d *Destination) FindActivity(id string) (*Activity, bool) {
	for _, a := range d.activities {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}
