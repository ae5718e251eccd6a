// Package snapshot defines the persisted data model for one capture run:
// both directions' itinerary legs, per-leg seat inventory and fare quotes.
// The JSON field names are the on-disk record format and must not change;
// records written by earlier versions (including the historical "prefered"
// spelling) are still loaded by the aggregator.
package snapshot

import (
	"fmt"
	"time"
)

// SeatInventory holds the four independently-counted seat categories for one
// leg. Availability and occupancy are separate counts, not complements of a
// cabin total.
type SeatInventory struct {
	StandardAvailable  int `json:"standardSeatsAvailable"`
	StandardOccupied   int `json:"standardSeatsOccupied"`
	PreferredAvailable int `json:"preferedSeatsAvailable"`
	PreferredOccupied  int `json:"preferedSeatsOccupied"`
}

// Leg is one non-stop flight segment between two airports.
type Leg struct {
	FlightNumber     string        `json:"flightNumber"`
	DepartureTime    time.Time     `json:"departureTime"`
	ArrivalTime      time.Time     `json:"arrivalTime"`
	DepartureAirport string        `json:"departureAirport"`
	ArrivalAirport   string        `json:"arrivalAirport"`
	Duration         string        `json:"duration"`
	SeatDetails      SeatInventory `json:"seatDetails"`
}

// DirectionRecord is one travel direction (outbound or return) of one run:
// the ordered legs plus the fare-class to price mapping observed for the row.
type DirectionRecord struct {
	Flights []Leg              `json:"flights"`
	Fares   map[string]float64 `json:"fares"`
}

// Snapshot is the full result of one capture run. It is immutable once
// persisted; the store keys it by capture timestamp.
type Snapshot struct {
	Departure DirectionRecord `json:"departure"`
	Return    DirectionRecord `json:"return"`
}

// FormatDuration renders arrival minus departure as "<h>h <m>m" with whole
// minutes truncated, not rounded.
func FormatDuration(departure, arrival time.Time) string {
	d := arrival.Sub(departure)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) - hours*60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
