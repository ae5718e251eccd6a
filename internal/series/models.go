package series

import (
	"time"

	"github.com/dkarlov/faretrack/internal/snapshot"
)

// Point is the normalized view of one stored snapshot: one entry of the
// chronologically sorted series. Lowest fares are precomputed because they
// double as the fallback value wherever a selected fare class is absent
// from this snapshot.
type Point struct {
	Key            string             `json:"key"`
	Time           time.Time          `json:"time"`
	Date           string             `json:"date"`
	LowestOutbound float64            `json:"lowestOutbound"`
	LowestInbound  float64            `json:"lowestInbound"`
	OutboundFares  map[string]float64 `json:"outboundFares"`
	InboundFares   map[string]float64 `json:"inboundFares"`
	OutboundLegs   []snapshot.Leg     `json:"outboundLegs"`
	InboundLegs    []snapshot.Leg     `json:"inboundLegs"`
}

// FlightSeries is the per-flight-identifier seat availability sequence,
// index-aligned with the sorted points. A nil entry means the identifier did
// not appear in that snapshot; it is a gap, not a zero.
type FlightSeries struct {
	FlightNumber     string `json:"flightNumber"`
	DepartureAirport string `json:"departureAirport"`
	ArrivalAirport   string `json:"arrivalAirport"`
	Standard         []*int `json:"standard"`
	Preferred        []*int `json:"preferred"`
}

// FarePrices is a pair of index-aligned price sequences for one fare class.
type FarePrices struct {
	Outbound []float64 `json:"outbound"`
	Inbound  []float64 `json:"inbound"`
}

// Deltas are the headline current-vs-previous-snapshot differences. When
// only one snapshot exists the comparison baseline is zero, so the deltas
// equal the current values.
type Deltas struct {
	Key                   string  `json:"key"`
	OutboundPrice         float64 `json:"outboundPrice"`
	InboundPrice          float64 `json:"inboundPrice"`
	OutboundStandardSeats int     `json:"outboundStandardSeats"`
	InboundStandardSeats  int     `json:"inboundStandardSeats"`
}

// Series is one aggregation pass over the full snapshot set. It is a
// read-only, rebuilt-on-demand view; nothing is cached across passes.
type Series struct {
	Points      []Point        `json:"points"`
	FareClasses []string       `json:"fareClasses"`
	Flights     []FlightSeries `json:"flights"`
}
