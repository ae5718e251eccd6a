package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarlov/faretrack/internal/snapshot"
)

func testLegs(n int) []snapshot.Leg {
	legs := make([]snapshot.Leg, n)
	for i := range legs {
		legs[i] = snapshot.Leg{
			FlightNumber:  "TS10" + string(rune('0'+i)),
			DepartureTime: ref.Add(time.Duration(i) * 4 * time.Hour),
			ArrivalTime:   ref.Add(time.Duration(i)*4*time.Hour + 2*time.Hour),
		}
	}
	return legs
}

func TestBuildDirection_SeatAlignmentReusesLastTab(t *testing.T) {
	inventories := []snapshot.SeatInventory{
		{StandardAvailable: 40, StandardOccupied: 100},
		{StandardAvailable: 12, StandardOccupied: 60},
	}

	// 3 legs, 2 tabs: leg 0 -> tab 0, leg 1 -> tab 1, leg 2 -> tab 1.
	record := BuildDirection(testLegs(3), inventories, FareQuote{})
	require.Len(t, record.Flights, 3)
	assert.Equal(t, 40, record.Flights[0].SeatDetails.StandardAvailable)
	assert.Equal(t, 12, record.Flights[1].SeatDetails.StandardAvailable)
	assert.Equal(t, 12, record.Flights[2].SeatDetails.StandardAvailable)
}

func TestBuildDirection_OneTabPerLeg(t *testing.T) {
	inventories := []snapshot.SeatInventory{
		{PreferredAvailable: 4},
		{PreferredAvailable: 6},
	}

	record := BuildDirection(testLegs(2), inventories, FareQuote{})
	require.Len(t, record.Flights, 2)
	assert.Equal(t, 4, record.Flights[0].SeatDetails.PreferredAvailable)
	assert.Equal(t, 6, record.Flights[1].SeatDetails.PreferredAvailable)
}

func TestBuildDirection_NoTabsLeavesZeroInventory(t *testing.T) {
	record := BuildDirection(testLegs(1), nil, FareQuote{})
	require.Len(t, record.Flights, 1)
	assert.Equal(t, snapshot.SeatInventory{}, record.Flights[0].SeatDetails)
}

func TestBuildDirection_CopiesFares(t *testing.T) {
	quote := FareQuote{"Basic (Economy)": 210}

	record := BuildDirection(testLegs(1), nil, quote)
	assert.Equal(t, 210.0, record.Fares["Basic (Economy)"])

	// The record owns its own map.
	quote["Basic (Economy)"] = 999
	assert.Equal(t, 210.0, record.Fares["Basic (Economy)"])
}

func TestBuildSnapshot(t *testing.T) {
	outbound := BuildDirection(testLegs(1), nil, FareQuote{})
	inbound := BuildDirection(testLegs(2), nil, FareQuote{})

	snap := BuildSnapshot(outbound, inbound)
	assert.Len(t, snap.Departure.Flights, 1)
	assert.Len(t, snap.Return.Flights, 2)
}
