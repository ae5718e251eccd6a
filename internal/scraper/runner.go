// Package scraper drives one capture run end to end: fill the search form,
// match one result row per direction, read itinerary details, seat maps and
// fare options through the automation capability surface, and persist the
// assembled snapshot. Runs are strictly sequential over one UI session.
package scraper

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkarlov/faretrack/internal/automation"
	"github.com/dkarlov/faretrack/internal/config"
	"github.com/dkarlov/faretrack/internal/extract"
	"github.com/dkarlov/faretrack/internal/snapshot"
	"github.com/dkarlov/faretrack/internal/storage/sqlite"
	"github.com/dkarlov/faretrack/pkg/logger"
)

// DriverFactory creates a fresh automation driver for one run. Each run owns
// its driver and closes it; no browser state leaks between runs.
type DriverFactory func(ctx context.Context) (automation.Driver, error)

// Runner executes capture runs against the configured search.
type Runner struct {
	cfg       *config.Config
	store     *sqlite.SnapshotStorage
	newDriver DriverFactory
	selectors Selectors
	logger    *logger.Logger

	mu      sync.Mutex
	running bool
}

// NewRunner creates a runner using the default site selectors.
func NewRunner(cfg *config.Config, store *sqlite.SnapshotStorage, factory DriverFactory, log *logger.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		store:     store,
		newDriver: factory,
		selectors: DefaultSelectors(),
		logger:    log.Named("scraper"),
	}
}

// TryStart acquires the run gate without performing the run, so callers can
// tell immediately whether a run is already active. On success the returned
// run function performs the capture and releases the gate; the caller must
// invoke it exactly once.
func (r *Runner) TryStart() (run func(ctx context.Context) (string, error), ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil, false
	}
	r.running = true

	return func(ctx context.Context) (string, error) {
		defer func() {
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
		}()
		return r.RunOnce(ctx)
	}, true
}

// TryRun starts a run unless one is already active, in which case it reports
// skipped=true. The scheduler and the API share this gate so ticks never
// overlap a long-running capture.
func (r *Runner) TryRun(ctx context.Context) (key string, skipped bool, err error) {
	run, ok := r.TryStart()
	if !ok {
		return "", true, nil
	}
	key, err = run(ctx)
	return key, false, err
}

// RunOnce performs one full capture run and returns the stored record key.
// A failed direction aborts the whole run: a snapshot missing one direction
// would poison every later series index.
func (r *Runner) RunOnce(ctx context.Context) (string, error) {
	runID := uuid.New().String()
	start := time.Now()
	log := r.logger.With(logger.String("run_id", runID))

	log.Info("Starting capture run",
		logger.String("origin", r.cfg.Search.Origin),
		logger.String("destination", r.cfg.Search.Destination))

	departureDate, returnDate, err := r.referenceDates()
	if err != nil {
		return "", err
	}

	driver, err := r.newDriver(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create driver: %w", err)
	}
	defer func() {
		if err := driver.Close(); err != nil {
			log.Warn("Failed to close driver", logger.Error(err))
		}
	}()

	session := automation.NewSession(driver, log)

	if err := r.submitSearch(ctx, driver); err != nil {
		return "", err
	}

	criteria := extract.Criteria{
		OutboundStart: r.cfg.Search.Match.OutboundStart,
		OutboundEnd:   r.cfg.Search.Match.OutboundEnd,
		InboundStart:  r.cfg.Search.Match.InboundStart,
		InboundEnd:    r.cfg.Search.Match.InboundEnd,
	}

	outbound, err := r.extractDirection(ctx, session, extract.Outbound, departureDate, criteria, log)
	if err != nil {
		return "", fmt.Errorf("outbound extraction failed: %w", err)
	}

	inbound, err := r.extractDirection(ctx, session, extract.Inbound, returnDate, criteria, log)
	if err != nil {
		return "", fmt.Errorf("inbound extraction failed: %w", err)
	}

	snap := extract.BuildSnapshot(outbound, inbound)
	key, err := r.store.Put(&snap, time.Now().UTC())
	if err != nil {
		return "", err
	}

	log.Info("Capture run complete",
		logger.String("key", key),
		logger.Int("outbound_legs", len(snap.Departure.Flights)),
		logger.Int("inbound_legs", len(snap.Return.Flights)),
		logger.Duration("duration", time.Since(start)))

	return key, nil
}

// referenceDates parses the configured travel dates. Each direction's times
// are parsed against its own date; only "+N day" annotations move the day.
func (r *Runner) referenceDates() (departure, ret time.Time, err error) {
	departure, err = time.Parse("2006-01-02", r.cfg.Search.DepartureDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid departure date: %w", err)
	}
	ret, err = time.Parse("2006-01-02", r.cfg.Search.ReturnDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid return date: %w", err)
	}
	return departure, ret, nil
}

// submitSearch navigates to the booking site, fills the search form and
// waits for the result list to render.
func (r *Runner) submitSearch(ctx context.Context, driver automation.Driver) error {
	if err := driver.Navigate(ctx, r.cfg.Scraper.BaseURL); err != nil {
		return err
	}

	fields := []struct {
		description string
		value       string
	}{
		{r.selectors.FormOrigin, r.cfg.Search.Origin},
		{r.selectors.FormDestination, r.cfg.Search.Destination},
		{r.selectors.FormDepartureDate, r.cfg.Search.DepartureDate},
		{r.selectors.FormReturnDate, r.cfg.Search.ReturnDate},
		{r.selectors.FormPassengers, strconv.Itoa(r.cfg.Search.Passengers)},
	}
	for _, field := range fields {
		if err := driver.Fill(ctx, field.description, field.value); err != nil {
			return fmt.Errorf("failed to fill search form: %w", err)
		}
	}

	if err := driver.Click(ctx, r.selectors.FormSubmit); err != nil {
		return fmt.Errorf("failed to submit search: %w", err)
	}
	if _, err := driver.WaitFor(ctx, r.selectors.ResultsReady); err != nil {
		return fmt.Errorf("search results did not render: %w", err)
	}
	return nil
}

// extractDirection selects one row for the direction and reads its
// itinerary, seat maps and fares. The three reads each open and close their
// own dialog; the session guarantees the close path runs even on failure.
func (r *Runner) extractDirection(
	ctx context.Context,
	session *automation.Session,
	dir extract.Direction,
	ref time.Time,
	criteria extract.Criteria,
	log *logger.Logger,
) (snapshot.DirectionRecord, error) {
	driver := session.Driver()

	rows, err := driver.Locate(r.selectors.Rows(dir))
	if err != nil {
		return snapshot.DirectionRecord{}, fmt.Errorf("failed to read %s rows: %w", dir, err)
	}

	texts := make([]string, len(rows))
	for i, row := range rows {
		text, err := row.Text()
		if err != nil {
			return snapshot.DirectionRecord{}, fmt.Errorf("failed to read row %d text: %w", i, err)
		}
		texts[i] = text
	}

	idx, err := extract.MatchRow(texts, criteria, dir)
	if err != nil {
		return snapshot.DirectionRecord{}, err
	}
	row := rows[idx]

	log.Debug("Matched result row",
		logger.String("direction", dir.String()),
		logger.Int("row_index", idx))

	legs, err := r.readLegs(ctx, session, row, ref)
	if err != nil {
		return snapshot.DirectionRecord{}, err
	}

	inventories, err := r.readSeatInventories(ctx, session, row)
	if err != nil {
		return snapshot.DirectionRecord{}, err
	}

	fares, err := r.readFares(ctx, session, row, log)
	if err != nil {
		return snapshot.DirectionRecord{}, err
	}

	return extract.BuildDirection(legs, inventories, fares), nil
}

// readLegs opens the row's itinerary detail dialog, reads the raw entries
// and pairs them into legs.
func (r *Runner) readLegs(ctx context.Context, session *automation.Session, row automation.Handle, ref time.Time) ([]snapshot.Leg, error) {
	var observations []extract.Observation

	err := session.WithDialog(ctx,
		func(ctx context.Context) error { return clickWithin(ctx, row, r.selectors.DetailOpen) },
		func(ctx context.Context) error { return session.Driver().Click(ctx, r.selectors.DetailClose) },
		func(ctx context.Context) error {
			entries, err := session.Driver().Locate(r.selectors.DetailEntries)
			if err != nil {
				return fmt.Errorf("failed to read itinerary entries: %w", err)
			}
			for i, entry := range entries {
				obs, err := r.readObservation(entry)
				if err != nil {
					return fmt.Errorf("failed to read itinerary entry %d: %w", i, err)
				}
				observations = append(observations, obs)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	segments, err := extract.ExtractSegments(observations, ref)
	if err != nil {
		return nil, err
	}
	return extract.PairLegs(segments)
}

// readObservation reads one detail entry's markers and texts.
func (r *Runner) readObservation(entry automation.Handle) (extract.Observation, error) {
	layovers, err := entry.Count(r.selectors.LayoverMarker)
	if err != nil {
		return extract.Observation{}, err
	}
	origins, err := entry.Count(r.selectors.OriginMarker)
	if err != nil {
		return extract.Observation{}, err
	}

	annotations, err := allTexts(entry, r.selectors.DayAnnotation)
	if err != nil {
		return extract.Observation{}, err
	}

	return extract.Observation{
		Layover:        layovers > 0,
		HasOrigin:      origins > 0,
		Clock:          firstText(entry, r.selectors.ClockText),
		DayAnnotations: annotations,
		Airport:        firstText(entry, r.selectors.AirportCode),
		FlightNumber:   firstText(entry, r.selectors.FlightNumber),
	}, nil
}

// readSeatInventories opens the seat-map overlay and counts seats on every
// visible tab.
func (r *Runner) readSeatInventories(ctx context.Context, session *automation.Session, row automation.Handle) ([]snapshot.SeatInventory, error) {
	var inventories []snapshot.SeatInventory

	err := session.WithDialog(ctx,
		func(ctx context.Context) error { return clickWithin(ctx, row, r.selectors.SeatMapOpen) },
		func(ctx context.Context) error { return session.Driver().Click(ctx, r.selectors.SeatMapClose) },
		func(ctx context.Context) error {
			handles, err := session.Driver().Locate(r.selectors.SeatTabs)
			if err != nil {
				return fmt.Errorf("failed to locate seat tabs: %w", err)
			}

			var tabs []extract.SeatTab
			for _, handle := range handles {
				visible, err := handle.Visible()
				if err != nil {
					return fmt.Errorf("failed to check tab visibility: %w", err)
				}
				if !visible {
					continue
				}
				tabs = append(tabs, &seatTab{
					handle:    handle,
					driver:    session.Driver(),
					selectors: r.selectors,
				})
			}

			inventories, err = extract.ReadSeatInventories(ctx, tabs)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return inventories, nil
}

// readFares opens the fare tray and builds the fare quote. Options with
// malformed price text are dropped and logged, never fatal.
func (r *Runner) readFares(ctx context.Context, session *automation.Session, row automation.Handle, log *logger.Logger) (extract.FareQuote, error) {
	var quote extract.FareQuote

	err := session.WithDialog(ctx,
		func(ctx context.Context) error { return clickWithin(ctx, row, r.selectors.FareOpen) },
		func(ctx context.Context) error { return session.Driver().Click(ctx, r.selectors.FareClose) },
		func(ctx context.Context) error {
			handles, err := session.Driver().Locate(r.selectors.FareOptions)
			if err != nil {
				return fmt.Errorf("failed to locate fare options: %w", err)
			}

			options := make([]extract.FareOption, 0, len(handles))
			for _, handle := range handles {
				options = append(options, extract.FareOption{
					Family:    firstText(handle, r.selectors.FareFamily),
					Cabin:     firstText(handle, r.selectors.FareCabin),
					PriceText: firstText(handle, r.selectors.FarePrice),
				})
			}

			var dropped []error
			quote, dropped = extract.BuildFareQuote(options)
			for _, err := range dropped {
				log.Warn("Dropped fare option", logger.Error(err))
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// seatTab adapts one seat-map tab handle to the extraction pipeline.
type seatTab struct {
	handle    automation.Handle
	driver    automation.Driver
	selectors Selectors
}

func (t *seatTab) Activate(ctx context.Context) error {
	return t.handle.Click(ctx)
}

// Count counts the active tab's seat grid; the categories live at overlay
// level and reflect whichever tab was activated last.
func (t *seatTab) Count(category extract.SeatCategory) (int, error) {
	return t.driver.Count(t.selectors.seatCategory(category))
}

// clickWithin clicks the first descendant of h matching the description.
func clickWithin(ctx context.Context, h automation.Handle, description string) error {
	targets, err := h.Locate(description)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no element %q within row", description)
	}
	return targets[0].Click(ctx)
}

// firstText returns the text of the first descendant matching the
// description, or an empty string when none is present. Missing optional
// texts (e.g. flight numbers on arrival entries) are not errors.
func firstText(h automation.Handle, description string) string {
	targets, err := h.Locate(description)
	if err != nil || len(targets) == 0 {
		return ""
	}
	text, err := targets[0].Text()
	if err != nil {
		return ""
	}
	return text
}

// allTexts returns the texts of every descendant matching the description.
func allTexts(h automation.Handle, description string) ([]string, error) {
	targets, err := h.Locate(description)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(targets))
	for _, target := range targets {
		text, err := target.Text()
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}
