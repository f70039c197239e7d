package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/setsreps/internal/history"
	"github.com/claude/setsreps/internal/ingest/alpha"
	"github.com/claude/setsreps/internal/metrics"
	"github.com/claude/setsreps/internal/programs"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *history.Store
	programs *programs.Catalog
	alpha    *alpha.Provider
	metrics  *metrics.Manager
	whois    WhoIser
	validate *validator.Validate
	log      *slog.Logger
	apiKey   string
	now      func() time.Time
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(store *history.Store, catalog *programs.Catalog, alphaProvider *alpha.Provider, apiKey string, m *metrics.Manager, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		programs: catalog,
		alpha:    alphaProvider,
		metrics:  m,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
		apiKey:   apiKey,
		now:      time.Now,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log, s.metrics))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read endpoints (no auth — tsnet handles access)
		r.Get("/me", s.handleMe)
		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/today", s.handleTodayWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Get("/records", s.handleListRecords)
		r.Get("/records/{exercise}", s.handleGetRecord)
		r.Post("/records/check", s.handleCheckRecord)
		r.Get("/stats/summary", s.handleSummary)
		r.Get("/stats/streaks", s.handleStreaks)
		r.Get("/stats/periodic", s.handlePeriodic)
		r.Get("/stats/activity", s.handleActivity)
		r.Get("/programs", s.handleListPrograms)
		r.Get("/programs/{id}", s.handleGetProgram)

		// Write endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/workouts", s.handleFinishWorkout)
			r.Delete("/workouts", s.handleClearHistory)
			r.Post("/workouts/import", s.handleImportWorkouts)
			r.Put("/workouts/{id}", s.handleEditWorkout)
			r.Put("/workouts/{id}/times", s.handleEditWorkoutTimes)
			r.Delete("/workouts/{id}", s.handleDeleteWorkout)
			r.Post("/programs/{id}/start", s.handleStartProgram)
			r.Post("/ingest/alpha", s.handleAlphaIngest)
		})
	})
}

// SetMetricsHandler exposes the registry at /metrics.
func (s *Server) SetMetricsHandler(g prometheus.Gatherer) {
	s.router.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// SetMCP mounts the MCP streamable HTTP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
	s.router.Handle("/mcp/*", h)
}
