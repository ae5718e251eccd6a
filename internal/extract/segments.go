package extract

import (
	"fmt"
	"time"

	"github.com/dkarlov/faretrack/internal/snapshot"
)

// Observation is one raw detail-list entry read for a matched row, before
// classification. Layover entries represent connection gaps, not flight
// boundaries, and are dropped before pairing.
type Observation struct {
	Layover        bool
	HasOrigin      bool // entries exposing an origin marker open a leg
	Clock          string
	DayAnnotations []string
	Airport        string
	FlightNumber   string
}

// Segment is one classified leg-boundary observation. It is a closed sum:
// the only implementations are LegStart and LegEnd, and the pairer matches
// on both variants exhaustively.
type Segment interface {
	segment()
}

// LegStart opens a leg: departure instant, airport and flight identifier.
type LegStart struct {
	Time         time.Time
	Airport      string
	FlightNumber string
}

// LegEnd closes a leg: arrival instant and airport.
type LegEnd struct {
	Time    time.Time
	Airport string
}

func (LegStart) segment() {}
func (LegEnd) segment()   {}

// ExtractSegments filters layover entries and classifies the remainder as
// LegStart or LegEnd, parsing each displayed time against the direction's
// reference date. Return-direction end times are deliberately parsed against
// the same reference date as their starts; only an explicit "+N day"
// annotation advances the day.
func ExtractSegments(entries []Observation, ref time.Time) ([]Segment, error) {
	var segments []Segment
	for i, entry := range entries {
		if entry.Layover {
			continue
		}

		t, err := ParseClock(entry.Clock, ref, entry.DayAnnotations)
		if err != nil {
			return nil, &PairingError{
				Segments: len(segments),
				Err:      fmt.Errorf("entry %d: %w", i, err),
			}
		}

		if entry.HasOrigin {
			segments = append(segments, LegStart{
				Time:         t,
				Airport:      entry.Airport,
				FlightNumber: entry.FlightNumber,
			})
		} else {
			segments = append(segments, LegEnd{
				Time:    t,
				Airport: entry.Airport,
			})
		}
	}
	return segments, nil
}

// PairLegs pairs consecutive segments (0,1), (2,3), ... into legs in
// document order, with no reordering by time. A sequence of odd length, or
// one that does not strictly alternate start/end, yields a PairingError and
// no legs at all. Multi-leg itineraries pair the same way regardless of
// length.
func PairLegs(segments []Segment) ([]snapshot.Leg, error) {
	if len(segments)%2 != 0 {
		return nil, &PairingError{Segments: len(segments)}
	}

	legs := make([]snapshot.Leg, 0, len(segments)/2)
	for i := 0; i < len(segments); i += 2 {
		start, ok := segments[i].(LegStart)
		if !ok {
			return nil, &PairingError{
				Segments: len(segments),
				Err:      fmt.Errorf("segment %d: expected leg start", i),
			}
		}
		end, ok := segments[i+1].(LegEnd)
		if !ok {
			return nil, &PairingError{
				Segments: len(segments),
				Err:      fmt.Errorf("segment %d: expected leg end", i+1),
			}
		}

		legs = append(legs, snapshot.Leg{
			FlightNumber:     start.FlightNumber,
			DepartureTime:    start.Time,
			ArrivalTime:      end.Time,
			DepartureAirport: start.Airport,
			ArrivalAirport:   end.Airport,
			Duration:         snapshot.FormatDuration(start.Time, end.Time),
		})
	}
	return legs, nil
}
