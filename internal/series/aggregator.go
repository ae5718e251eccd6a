// Package series merges the independently-produced daily snapshots into
// per-fare-class and per-flight-number time series. Every aggregation pass
// is a fresh, order-deterministic computation over freshly-read records, so
// re-running it over an unchanged snapshot set yields identical output.
package series

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dkarlov/faretrack/internal/snapshot"
	"github.com/dkarlov/faretrack/internal/storage/sqlite"
	"github.com/dkarlov/faretrack/pkg/logger"
)

// ErrNoSnapshots is returned when aggregation runs over an empty store. The
// caller surfaces it verbatim as a user-visible error state, never as an
// empty series.
var ErrNoSnapshots = errors.New("no snapshots available")

// SnapshotLister is the read side of the snapshot store.
type SnapshotLister interface {
	ListAll() ([]sqlite.StoredSnapshot, error)
}

// Aggregator builds series views over the stored snapshots.
type Aggregator struct {
	store  SnapshotLister
	logger *logger.Logger
}

// NewAggregator creates a new aggregator over the given store.
func NewAggregator(store SnapshotLister, log *logger.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		logger: log.Named("aggregator"),
	}
}

// Build re-reads all stored snapshots and derives the sorted series.
func (a *Aggregator) Build() (*Series, error) {
	records, err := a.store.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	series, skipped, err := buildSeries(records)
	for _, s := range skipped {
		a.logger.Warn("Skipping snapshot with unparseable key", logger.String("key", s))
	}
	if err != nil {
		return nil, err
	}

	// A direction with no fares at all makes the lowest-fare fallback zero,
	// which shows up as a $0 point in every class series for that snapshot.
	for _, point := range series.Points {
		if len(point.OutboundFares) == 0 || len(point.InboundFares) == 0 {
			a.logger.Warn("Snapshot direction has no fares, series falls back to zero",
				logger.String("key", point.Key))
		}
	}

	a.logger.Debug("Series built",
		logger.Int("points", len(series.Points)),
		logger.Int("fare_classes", len(series.FareClasses)),
		logger.Int("flights", len(series.Flights)))

	return series, nil
}

// buildSeries is the pure core of an aggregation pass.
func buildSeries(records []sqlite.StoredSnapshot) (*Series, []string, error) {
	points := make([]Point, 0, len(records))
	var skipped []string

	for _, record := range records {
		ts, err := parseKey(record.Key)
		if err != nil {
			skipped = append(skipped, record.Key)
			continue
		}
		points = append(points, newPoint(record.Key, ts, record.Snapshot))
	}

	if len(points) == 0 {
		return nil, skipped, ErrNoSnapshots
	}

	sort.Slice(points, func(i, j int) bool {
		if !points[i].Time.Equal(points[j].Time) {
			return points[i].Time.Before(points[j].Time)
		}
		return points[i].Key < points[j].Key
	})

	return &Series{
		Points:      points,
		FareClasses: fareVocabulary(points[0]),
		Flights:     flightSeries(points),
	}, skipped, nil
}

// parseKey normalizes a record key into a full instant. Date-only keys imply
// midnight UTC.
func parseKey(key string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, key); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.Parse("2006-01-02", key); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("key %q encodes no timestamp", key)
}

func newPoint(key string, ts time.Time, snap snapshot.Snapshot) Point {
	return Point{
		Key:            key,
		Time:           ts,
		Date:           ts.Format("2006-01-02"),
		LowestOutbound: lowestFare(snap.Departure.Fares),
		LowestInbound:  lowestFare(snap.Return.Fares),
		OutboundFares:  snap.Departure.Fares,
		InboundFares:   snap.Return.Fares,
		OutboundLegs:   snap.Departure.Flights,
		InboundLegs:    snap.Return.Flights,
	}
}

func lowestFare(fares map[string]float64) float64 {
	lowest := 0.0
	first := true
	for _, price := range fares {
		if first || price < lowest {
			lowest = price
			first = false
		}
	}
	return lowest
}

// fareVocabulary is the selectable fare-class set, discovered from the
// chronologically-first snapshot. Classes appearing only in later snapshots
// are not selectable; classes absent from later snapshots degrade to the
// lowest-fare fallback instead of breaking.
func fareVocabulary(first Point) []string {
	seen := make(map[string]bool)
	var classes []string
	for _, fares := range []map[string]float64{first.OutboundFares, first.InboundFares} {
		for class := range fares {
			if !seen[class] {
				seen[class] = true
				classes = append(classes, class)
			}
		}
	}
	sort.Strings(classes)
	return classes
}

// flightSeries derives, for the union of all flight identifiers seen in any
// snapshot, the index-aligned seat availability sequences. The route is read
// from the identifier's first occurrence and assumed stable across
// snapshots.
func flightSeries(points []Point) []FlightSeries {
	byNumber := make(map[string]*FlightSeries)
	var order []string

	for i, point := range points {
		for _, leg := range append(append([]snapshot.Leg{}, point.OutboundLegs...), point.InboundLegs...) {
			fs, ok := byNumber[leg.FlightNumber]
			if !ok {
				fs = &FlightSeries{
					FlightNumber:     leg.FlightNumber,
					DepartureAirport: leg.DepartureAirport,
					ArrivalAirport:   leg.ArrivalAirport,
					Standard:         make([]*int, len(points)),
					Preferred:        make([]*int, len(points)),
				}
				byNumber[leg.FlightNumber] = fs
				order = append(order, leg.FlightNumber)
			}
			if fs.Standard[i] == nil {
				standard := leg.SeatDetails.StandardAvailable
				preferred := leg.SeatDetails.PreferredAvailable
				fs.Standard[i] = &standard
				fs.Preferred[i] = &preferred
			}
		}
	}

	sort.Strings(order)
	flights := make([]FlightSeries, 0, len(order))
	for _, number := range order {
		flights = append(flights, *byNumber[number])
	}
	return flights
}

// FarePrices builds the index-aligned outbound and inbound price sequences
// for the selected fare class. A snapshot lacking the class contributes its
// lowest observed fare of the relevant direction at that index; the fallback
// is what lets the fare-class vocabulary evolve across days without holes in
// older points.
func (s *Series) FarePrices(class string) FarePrices {
	prices := FarePrices{
		Outbound: make([]float64, len(s.Points)),
		Inbound:  make([]float64, len(s.Points)),
	}
	for i, point := range s.Points {
		prices.Outbound[i] = priceOrLowest(point.OutboundFares, class, point.LowestOutbound)
		prices.Inbound[i] = priceOrLowest(point.InboundFares, class, point.LowestInbound)
	}
	return prices
}

func priceOrLowest(fares map[string]float64, class string, lowest float64) float64 {
	if price, ok := fares[class]; ok {
		return price
	}
	return lowest
}

// HeadlineDeltas compares the current (last) snapshot against the
// immediately preceding one for the selected fare class: price per
// direction, plus total standard-seat availability per direction. With a
// single snapshot the baseline is zero.
func (s *Series) HeadlineDeltas(class string) Deltas {
	last := len(s.Points) - 1
	prices := s.FarePrices(class)

	var prevOut, prevIn float64
	var prevOutSeats, prevInSeats int
	if last > 0 {
		prev := s.Points[last-1]
		prevOut = prices.Outbound[last-1]
		prevIn = prices.Inbound[last-1]
		prevOutSeats = totalStandardSeats(prev.OutboundLegs)
		prevInSeats = totalStandardSeats(prev.InboundLegs)
	}

	current := s.Points[last]
	return Deltas{
		Key:                   current.Key,
		OutboundPrice:         prices.Outbound[last] - prevOut,
		InboundPrice:          prices.Inbound[last] - prevIn,
		OutboundStandardSeats: totalStandardSeats(current.OutboundLegs) - prevOutSeats,
		InboundStandardSeats:  totalStandardSeats(current.InboundLegs) - prevInSeats,
	}
}

func totalStandardSeats(legs []snapshot.Leg) int {
	total := 0
	for _, leg := range legs {
		total += leg.SeatDetails.StandardAvailable
	}
	return total
}
