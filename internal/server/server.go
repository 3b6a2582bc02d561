// Package server is the FitLink HTTP API: ingest, data queries, the
// live workout session, challenges, the widget snapshot, and the coach
// proxy.
package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/fitlink/internal/coach"
	"github.com/claude/fitlink/internal/ingest"
	"github.com/claude/fitlink/internal/session"
	"github.com/claude/fitlink/internal/snapshot"
	"github.com/claude/fitlink/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        *storage.DB
	ingest    *ingest.Provider
	hub       *session.Hub
	snap      *snapshot.Store
	refresher *snapshot.Refresher
	coach     *coach.Client
	log       *slog.Logger
	apiKey    string
	userID    int
	router    chi.Router

	coachCache coachCache
}

// New creates a new Server with all routes configured. The refresher
// and coach client may be nil when those features are not configured.
func New(db *storage.DB, ing *ingest.Provider, hub *session.Hub, snap *snapshot.Store, refresher *snapshot.Refresher, coachClient *coach.Client, apiKey string, userID int, log *slog.Logger) *Server {
	s := &Server{
		db:        db,
		ingest:    ing,
		hub:       hub,
		snap:      snap,
		refresher: refresher,
		coach:     coachClient,
		log:       log,
		apiKey:    apiKey,
		userID:    userID,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/ingest", s.handleIngest)
		r.Post("/api/v1/water", s.handleAddWater)

		r.Route("/api/v1/session", func(r chi.Router) {
			r.Post("/start", s.handleSessionStart)
			r.Post("/action", s.handleSessionAction)
			r.Post("/set", s.handleSessionSet)
			r.Post("/health", s.handleSessionHealth)
			r.Get("/", s.handleSessionStatus)
			r.Get("/messages", s.handleSessionDrain)
			r.Post("/messages", s.handleSessionReceive)
		})

		r.Route("/api/v1/challenges", func(r chi.Router) {
			r.Post("/", s.handleCreateChallenge)
			r.Post("/join", s.handleJoinChallenge)
			r.Get("/", s.handleListChallenges)
			r.Get("/{code}/leaderboard", s.handleLeaderboard)
		})

		r.Post("/api/v1/coach/insights", s.handleCoachInsights)
		r.Post("/api/v1/coach/workout", s.handleCoachWorkout)
		r.Post("/api/v1/coach/tip", s.handleCoachTip)
	})

	// Read endpoints (no auth; tsnet handles access when enabled)
	s.router.Get("/api/v1/metrics/latest", s.handleLatestMetrics)
	s.router.Get("/api/v1/metrics", s.handleQueryMetrics)
	s.router.Get("/api/v1/metrics/stats", s.handleMetricStats)
	s.router.Get("/api/v1/timeseries", s.handleTimeSeries)
	s.router.Get("/api/v1/allowlist", s.handleAllowlist)
	s.router.Get("/api/v1/sleep", s.handleQuerySleep)
	s.router.Get("/api/v1/workouts", s.handleQueryWorkouts)
	s.router.Get("/api/v1/workouts/sets", s.handleQueryWorkoutSets)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/recovery", s.handleRecovery)
	s.router.Get("/api/v1/snapshot", s.handleSnapshot)
}
