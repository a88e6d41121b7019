package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"github.com/hamsterrace/raceboard/internal/api/handler"
	"github.com/hamsterrace/raceboard/internal/api/middleware"
	"github.com/hamsterrace/raceboard/internal/metrics"
	"github.com/hamsterrace/raceboard/internal/services/identity"
	"github.com/hamsterrace/raceboard/internal/services/leaderboard"
	"github.com/hamsterrace/raceboard/internal/services/race"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	IdentityService    *identity.Service
	RaceController     *race.Controller
	LeaderboardService *leaderboard.Service

	Cookie handler.CookieConfig

	// RateLimiter guards mutating routes when set
	RateLimiter *middleware.RateLimiter
	// Gatherer serves /metrics when set
	Gatherer prometheus.Gatherer
	// CORSOrigins enables CORS for the listed origins when non-empty
	CORSOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.IdentityService, cfg.Cookie)
	nameHandler := handler.NewNameHandler(cfg.IdentityService)
	raceHandler := handler.NewRaceHandler(cfg.RaceController, cfg.LeaderboardService)

	// Session resolution runs before logging so log lines carry the identity
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Session(cfg.IdentityService, cfg.Cookie.Name, cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.RateLimiter == nil {
			return h
		}
		return cfg.RateLimiter.Middleware()(h)
	}

	// Identity routes
	r.HandleFunc("/session", sessionHandler.Get).Methods(http.MethodGet)
	r.Handle("/session", limited(sessionHandler.Create)).Methods(http.MethodPost)
	r.Handle("/session", limited(sessionHandler.Destroy)).Methods(http.MethodDelete)
	r.Handle("/name", limited(nameHandler.Set)).Methods(http.MethodPost)

	// Race routes
	r.HandleFunc("/race", raceHandler.Board).Methods(http.MethodGet)
	r.Handle("/race", limited(raceHandler.Start)).Methods(http.MethodPost)
	r.Handle("/race", limited(raceHandler.Finish)).Methods(http.MethodPatch)
	r.Handle("/race", limited(raceHandler.Cancel)).Methods(http.MethodDelete)

	// Operational routes
	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(cfg.Gatherer)).Methods(http.MethodGet)
	}

	if len(cfg.CORSOrigins) == 0 {
		return r
	}
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
