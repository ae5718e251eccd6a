package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dkarlov/faretrack/internal/config"
	"github.com/dkarlov/faretrack/internal/series"
	"github.com/dkarlov/faretrack/pkg/logger"
)

// RunStarter is the slice of the scraper the API needs to trigger ad hoc
// intraday runs.
type RunStarter interface {
	// TryStart acquires the run gate without blocking on the run itself. On
	// success the returned function performs the capture and releases the
	// gate; it must be invoked exactly once.
	TryStart() (run func(ctx context.Context) (string, error), ok bool)
}

// Handler serves the aggregated series data to the presentation layer. Every
// request rebuilds the view from storage; there is no cross-request cache,
// so a request always reflects the latest persisted snapshot set.
type Handler struct {
	aggregator *series.Aggregator
	runner     RunStarter
	config     *config.Config
	logger     *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(aggregator *series.Aggregator, runner RunStarter, cfg *config.Config, log *logger.Logger) *Handler {
	return &Handler{
		aggregator: aggregator,
		runner:     runner,
		config:     cfg,
		logger:     log.Named("api-handler"),
	}
}

// GetHealth handles GET /api/v1/health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetSnapshots handles GET /api/v1/snapshots: the keys of every usable
// stored record, in chronological order.
func (h *Handler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	s, ok := h.buildSeries(w)
	if !ok {
		return
	}

	keys := make([]string, len(s.Points))
	for i, point := range s.Points {
		keys[i] = point.Key
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"count": len(keys),
		"keys":  keys,
	})
}

// GetFareClasses handles GET /api/v1/fare-classes: the selectable fare-class
// vocabulary, discovered from the chronologically-first snapshot.
func (h *Handler) GetFareClasses(w http.ResponseWriter, r *http.Request) {
	s, ok := h.buildSeries(w)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"fareClasses": s.FareClasses,
	})
}

// GetSeries handles GET /api/v1/series?class=...: the full aggregated view
// for one selected fare class. Without an explicit class the first
// vocabulary entry is used.
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	s, ok := h.buildSeries(w)
	if !ok {
		return
	}

	class := h.selectClass(r, s)
	h.respondJSON(w, http.StatusOK, map[string]any{
		"class":       class,
		"fareClasses": s.FareClasses,
		"points":      s.Points,
		"prices":      s.FarePrices(class),
		"flights":     s.Flights,
		"deltas":      s.HeadlineDeltas(class),
	})
}

// GetFlights handles GET /api/v1/flights: per-flight-number seat
// availability series aligned with the snapshot sequence.
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	s, ok := h.buildSeries(w)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"flights": s.Flights,
	})
}

// GetDeltas handles GET /api/v1/deltas?class=...: the headline
// current-vs-previous differences.
func (h *Handler) GetDeltas(w http.ResponseWriter, r *http.Request) {
	s, ok := h.buildSeries(w)
	if !ok {
		return
	}

	class := h.selectClass(r, s)
	h.respondJSON(w, http.StatusOK, map[string]any{
		"class":  class,
		"deltas": s.HeadlineDeltas(class),
	})
}

// TriggerRun handles POST /api/v1/runs: kicks off one ad hoc capture run in
// the background. The response is written as soon as the run gate is
// acquired; the capture itself runs detached from the request. Returns 409
// when a run is already active.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		h.respondError(w, http.StatusServiceUnavailable, "scraping is not configured")
		return
	}

	run, ok := h.runner.TryStart()
	if !ok {
		h.respondError(w, http.StatusConflict, "a capture run is already active")
		return
	}

	go func() {
		key, err := run(context.Background())
		if err != nil {
			h.logger.Error("Triggered run failed", logger.Error(err))
			return
		}
		h.logger.Info("Triggered run stored snapshot", logger.String("key", key))
	}()

	h.respondJSON(w, http.StatusAccepted, map[string]any{
		"status": "started",
	})
}

// buildSeries runs one aggregation pass and writes the error response on
// failure. Zero usable snapshots is a user-visible error state, not an empty
// series.
func (h *Handler) buildSeries(w http.ResponseWriter) (*series.Series, bool) {
	s, err := h.aggregator.Build()
	if err != nil {
		if errors.Is(err, series.ErrNoSnapshots) {
			h.respondError(w, http.StatusNotFound, err.Error())
		} else {
			h.logger.Error("Failed to build series", logger.Error(err))
			h.respondError(w, http.StatusInternalServerError, "failed to aggregate snapshots")
		}
		return nil, false
	}
	return s, true
}

// selectClass picks the fare class for the request, defaulting to the first
// vocabulary entry. Unknown classes are allowed: every lookup degrades to
// the snapshot's lowest fare.
func (h *Handler) selectClass(r *http.Request, s *series.Series) string {
	if class := r.URL.Query().Get("class"); class != "" {
		return class
	}
	if len(s.FareClasses) > 0 {
		return s.FareClasses[0]
	}
	return ""
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
