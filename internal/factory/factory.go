package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hamsterrace/raceboard/internal/api"
	"github.com/hamsterrace/raceboard/internal/api/handler"
	"github.com/hamsterrace/raceboard/internal/api/middleware"
	"github.com/hamsterrace/raceboard/internal/dependencies/clock"
	"github.com/hamsterrace/raceboard/internal/dependencies/random"
	"github.com/hamsterrace/raceboard/internal/metrics"
	"github.com/hamsterrace/raceboard/internal/services/identity"
	"github.com/hamsterrace/raceboard/internal/services/leaderboard"
	"github.com/hamsterrace/raceboard/internal/services/moderation"
	"github.com/hamsterrace/raceboard/internal/services/race"
	"github.com/hamsterrace/raceboard/internal/services/timing"
	"github.com/hamsterrace/raceboard/internal/storage"
	"github.com/hamsterrace/raceboard/internal/storage/memory"
	"github.com/hamsterrace/raceboard/internal/storage/postgres"
	redisstorage "github.com/hamsterrace/raceboard/internal/storage/redis"
	"github.com/hamsterrace/raceboard/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeSQLite   = "sqlite"
	StorageTypePostgres = "postgres"
)

// DefaultCookieName is the session cookie name used when none is configured
const DefaultCookieName = "sessionid"

// App contains all wired application components
type App struct {
	// Storage
	Sessions storage.SessionStore
	Races    storage.RaceStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	IdentityService    *identity.Service
	RaceController     *race.Controller
	LeaderboardService *leaderboard.Service
	RateLimiter        *middleware.RateLimiter

	// Instrumentation
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	// Router is the fully wired HTTP handler
	Router http.Handler

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// SessionStore selects the session backend ("memory" or "redis")
	// If empty, defaults to "memory"
	SessionStore string
	// RedisConfig holds Redis connection settings (required if SessionStore is "redis")
	RedisConfig *redisstorage.Config

	// RaceStore selects the leaderboard backend ("memory", "sqlite" or "postgres")
	// If empty, defaults to "memory"
	RaceStore   string
	SQLitePath  string
	DatabaseURL string

	// SessionTTL is the lifetime of a new session; zero uses the identity default
	SessionTTL time.Duration
	// TimingTolerance is the accepted client/server drift; zero uses the timing default
	TimingTolerance time.Duration

	// RateLimit is requests per second per caller; zero disables limiting
	RateLimit float64
	RateBurst int

	CookieName   string
	CookieSecure bool
	CORSOrigins  []string
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}

	sessions, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	races, err := newRaceStore(ctx, cfg)
	if err != nil {
		closeStore(sessions)
		return nil, err
	}

	return newWithDependencies(sessions, races, clock.New(), random.New(), cfg, logger), nil
}

func newSessionStore(cfg Config) (storage.SessionStore, error) {
	switch cfg.SessionStore {
	case "", StorageTypeMemory:
		return memory.NewSessionStorage(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when SessionStore is redis")
		}
		redisCfg := *cfg.RedisConfig
		if cfg.SessionTTL > 0 {
			redisCfg.SessionTTL = cfg.SessionTTL
		}
		store, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid SessionStore %q: must be 'memory' or 'redis'", cfg.SessionStore)
	}
}

func newRaceStore(ctx context.Context, cfg Config) (storage.RaceStore, error) {
	switch cfg.RaceStore {
	case "", StorageTypeMemory:
		return memory.NewRaceStorage(), nil
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when RaceStore is sqlite")
		}
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, nil
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when RaceStore is postgres")
		}
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid RaceStore %q: must be 'memory', 'sqlite' or 'postgres'", cfg.RaceStore)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	sessions storage.SessionStore,
	races storage.RaceStore,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *App {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	identityService := identity.New(sessions, moderation.New(), clk, rnd, logger, identity.Config{
		SessionTTL: cfg.SessionTTL,
	})
	raceController := race.NewController(
		sessions, races, timing.NewValidator(cfg.TimingTolerance), clk, rnd, collector, logger,
	)
	leaderboardService := leaderboard.New(races, collector, logger)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit),
			Burst: cfg.RateBurst,
		}, logger)
	}

	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	sessionTTL := cfg.SessionTTL
	if sessionTTL == 0 {
		sessionTTL = identity.DefaultConfig().SessionTTL
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		IdentityService:    identityService,
		RaceController:     raceController,
		LeaderboardService: leaderboardService,
		Cookie: handler.CookieConfig{
			Name:   cookieName,
			MaxAge: sessionTTL,
			Secure: cfg.CookieSecure,
		},
		RateLimiter: limiter,
		Gatherer:    registry,
		CORSOrigins: cfg.CORSOrigins,
	})

	return &App{
		Sessions:           sessions,
		Races:              races,
		Clock:              clk,
		Random:             rnd,
		IdentityService:    identityService,
		RaceController:     raceController,
		LeaderboardService: leaderboardService,
		RateLimiter:        limiter,
		Registry:           registry,
		Metrics:            collector,
		Router:             router,
		logger:             logger,
	}
}

// Close releases storage connections and background workers
func (a *App) Close() error {
	if a.RateLimiter != nil {
		a.RateLimiter.Stop()
	}
	var errs []error
	if err := a.Races.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close race store: %w", err))
	}
	if c, ok := a.Sessions.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session store: %w", err))
		}
	}
	return errors.Join(errs...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func closeStore(store storage.SessionStore) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}
