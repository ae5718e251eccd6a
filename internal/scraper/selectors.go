package scraper

import "github.com/dkarlov/faretrack/internal/extract"

// Selectors holds every element description the runner hands to the
// automation driver. This is the only site-specific surface of the scraper;
// the extraction pipeline itself never sees a selector. Descriptions are
// opaque to the core and interpreted by the configured driver (CSS for the
// go-rod driver).
type Selectors struct {
	// Search form
	FormOrigin        string
	FormDestination   string
	FormDepartureDate string
	FormReturnDate    string
	FormPassengers    string
	FormSubmit        string
	ResultsReady      string

	// Result rows, one list per direction
	OutboundRows string
	InboundRows  string

	// Itinerary detail dialog, scoped per matched row
	DetailOpen    string
	DetailEntries string
	DetailClose   string
	LayoverMarker string
	OriginMarker  string
	ClockText     string
	DayAnnotation string
	AirportCode   string
	FlightNumber  string

	// Seat-map overlay
	SeatMapOpen            string
	SeatTabs               string
	SeatMapClose           string
	SeatStandardOccupied   string
	SeatStandardAvailable  string
	SeatPreferredOccupied  string
	SeatPreferredAvailable string

	// Fare tray
	FareOpen    string
	FareOptions string
	FareFamily  string
	FareCabin   string
	FarePrice   string
	FareClose   string
}

// Rows returns the row-list description for the given direction.
func (s Selectors) Rows(dir extract.Direction) string {
	if dir == extract.Inbound {
		return s.InboundRows
	}
	return s.OutboundRows
}

// seatCategory maps a seat category to its element description.
func (s Selectors) seatCategory(category extract.SeatCategory) string {
	switch category {
	case extract.StandardOccupied:
		return s.SeatStandardOccupied
	case extract.StandardAvailable:
		return s.SeatStandardAvailable
	case extract.PreferredOccupied:
		return s.SeatPreferredOccupied
	default:
		return s.SeatPreferredAvailable
	}
}

// DefaultSelectors returns the descriptions for the currently-targeted
// booking site.
func DefaultSelectors() Selectors {
	return Selectors{
		FormOrigin:        `input[name="origin"]`,
		FormDestination:   `input[name="destination"]`,
		FormDepartureDate: `input[name="departureDate"]`,
		FormReturnDate:    `input[name="returnDate"]`,
		FormPassengers:    `input[name="passengers"]`,
		FormSubmit:        `button[type="submit"]`,
		ResultsReady:      `.search-results`,

		OutboundRows: `.search-results .journey-outbound .result-row`,
		InboundRows:  `.search-results .journey-return .result-row`,

		DetailOpen:    `.row-details-toggle`,
		DetailEntries: `.itinerary-dialog .itinerary-entry`,
		DetailClose:   `.itinerary-dialog .dialog-close`,
		LayoverMarker: `.layover-badge`,
		OriginMarker:  `.origin-marker`,
		ClockText:     `.entry-time`,
		DayAnnotation: `.day-offset`,
		AirportCode:   `.airport-code`,
		FlightNumber:  `.flight-number`,

		SeatMapOpen:            `.seatmap-toggle`,
		SeatTabs:               `.seatmap-overlay .leg-tab:not(.hidden)`,
		SeatMapClose:           `.seatmap-overlay .dialog-close`,
		SeatStandardOccupied:   `.seatmap-overlay .seat.standard.occupied`,
		SeatStandardAvailable:  `.seatmap-overlay .seat.standard.available`,
		SeatPreferredOccupied:  `.seatmap-overlay .seat.preferred.occupied`,
		SeatPreferredAvailable: `.seatmap-overlay .seat.preferred.available`,

		FareOpen:    `.fare-options-toggle`,
		FareOptions: `.fare-tray .fare-option`,
		FareFamily:  `.fare-family-name`,
		FareCabin:   `.fare-cabin-label`,
		FarePrice:   `.fare-price`,
		FareClose:   `.fare-tray .dialog-close`,
	}
}
