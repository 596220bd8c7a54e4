// Package report renders travel package state as human-readable lines.
// The functions only read the domain model; they never change it.
package report

import (
	"fmt"
	"io"

	"github.com/prohmpiriya/travel-booking/internal/domain"
)

// ItineraryLines lists each destination of the package with its activities
func ItineraryLines(pkg *domain.TravelPackage) []string {
	lines := []string{"Travel Package: " + pkg.Name}
	for _, d := range pkg.Itinerary() {
		lines = append(lines, "Destination: "+d.Name)
		for _, a := range d.Activities() {
			lines = append(lines,
				"    Activity: "+a.Name,
				"        Cost: "+a.Cost.StringFixed(2),
				fmt.Sprintf("        Capacity: %d", a.Capacity),
				"        Description: "+a.Description,
			)
		}
	}
	return lines
}

// PassengerListLines summarises the roster of the package
func PassengerListLines(pkg *domain.TravelPackage) []string {
	passengers := pkg.Passengers()
	lines := []string{
		"Travel Package: " + pkg.Name,
		fmt.Sprintf("Passenger Capacity: %d", pkg.PassengerCapacity),
		fmt.Sprintf("Number of Passengers Enrolled: %d", len(passengers)),
	}
	for _, p := range passengers {
		lines = append(lines, fmt.Sprintf("    Name: %s, Number: %d", p.Name, p.Number))
	}
	return lines
}

// AvailableActivityLines lists activities that still have places. Full ones are skipped.
func AvailableActivityLines(activities []*domain.Activity) []string {
	var lines []string
	for _, a := range activities {
		if a.IsFull() {
			continue
		}
		lines = append(lines,
			"Activity: "+a.Name,
			fmt.Sprintf("    Spaces Available: %d", a.SpacesAvailable()),
			"    Cost: "+a.Cost.StringFixed(2),
			"    Description: "+a.Description,
		)
	}
	return lines
}

// PassengerDetailLines describes one passenger and the activities they signed up for
func PassengerDetailLines(pkg *domain.TravelPackage, number int) ([]string, error) {
	p, ok := pkg.FindPassenger(number)
	if !ok {
		return nil, domain.ErrPassengerNotFound
	}

	lines := []string{
		"Name: " + p.Name,
		fmt.Sprintf("Number: %d", p.Number),
		"Tier: " + p.Tier.String(),
	}
	// premium passengers never spend their balance
	if p.Tier.Charges() {
		lines = append(lines, "Balance: "+p.Balance().StringFixed(2))
	}

	enrollments := p.Enrollments()
	if len(enrollments) == 0 {
		return append(lines, "Activities: none"), nil
	}
	lines = append(lines, "Activities:")
	for _, e := range enrollments {
		a, d, ok := pkg.FindActivity(e.ActivityID)
		if !ok {
			continue
		}
		lines = append(lines,
			"    Activity: "+a.Name,
			"        Destination: "+d.Name,
			"        Price Paid: "+e.AmountPaid.StringFixed(2),
		)
	}
	return lines, nil
}

// Write prints the lines to w, one per line
func Write(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
