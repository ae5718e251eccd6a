package extract

import (
	"github.com/dkarlov/faretrack/internal/snapshot"
)

// BuildDirection assembles one direction's paired legs, per-leg seat
// inventory and fare quote into a DirectionRecord. Leg i receives the
// inventory at min(i, len(inventories)-1): when the page renders fewer seat
// tabs than legs, every leg beyond the last tab reuses the last tab's
// inventory instead of failing. This is pure assembly, no I/O.
func BuildDirection(legs []snapshot.Leg, inventories []snapshot.SeatInventory, fares FareQuote) snapshot.DirectionRecord {
	record := snapshot.DirectionRecord{
		Flights: make([]snapshot.Leg, len(legs)),
		Fares:   make(map[string]float64, len(fares)),
	}

	for i, leg := range legs {
		if len(inventories) > 0 {
			idx := i
			if idx >= len(inventories) {
				idx = len(inventories) - 1
			}
			leg.SeatDetails = inventories[idx]
		}
		record.Flights[i] = leg
	}

	for key, price := range fares {
		record.Fares[key] = price
	}

	return record
}

// BuildSnapshot combines both directions into one run snapshot. The capture
// instant is supplied separately to the store, which derives the record key
// from it.
func BuildSnapshot(outbound, inbound snapshot.DirectionRecord) snapshot.Snapshot {
	return snapshot.Snapshot{
		Departure: outbound,
		Return:    inbound,
	}
}
