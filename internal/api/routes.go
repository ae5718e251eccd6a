package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkarlov/faretrack/internal/config"
	"github.com/dkarlov/faretrack/internal/series"
	"github.com/dkarlov/faretrack/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(aggregator *series.Aggregator, runner RunStarter, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(aggregator, runner, cfg, log),
		middleware: NewMiddleware(log),
		config:     cfg,
		logger:     log.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		router.Get("/health", r.handler.GetHealth)

		// Snapshot and series routes
		router.Get("/snapshots", r.handler.GetSnapshots)
		router.Get("/fare-classes", r.handler.GetFareClasses)
		router.Get("/series", r.handler.GetSeries)
		router.Get("/flights", r.handler.GetFlights)
		router.Get("/deltas", r.handler.GetDeltas)

		// Ad hoc capture run
		router.Post("/runs", r.handler.TriggerRun)
	})

	// Serve the chart frontend from the configured directory
	if r.config.Server.StaticFilesDir != "" {
		fileServer := http.FileServer(http.Dir(r.config.Server.StaticFilesDir))
		router.Handle("/*", fileServer)
	}

	return router
}
