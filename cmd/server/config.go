package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hamsterrace/raceboard/internal/factory"
	redisstorage "github.com/hamsterrace/raceboard/internal/storage/redis"
)

// Config holds every server setting. Each flag can also be supplied as a
// RACEBOARD_ environment variable.
type Config struct {
	bind            string
	port            int
	sessionName     string
	sessionTTL      time.Duration
	secureCookie    bool
	sessionStore    string
	redisURL        string
	raceStore       string
	sqlitePath      string
	databaseURL     string
	timingTolerance time.Duration
	rateLimit       float64
	rateBurst       int
	corsOrigins     []string
	janitorInterval time.Duration
	verbose         bool

	// seed subcommand
	seedMaps   []string
	seedPerMap int
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sessionName == "" {
		return errors.New("--session-name must not be empty")
	}
	if c.sessionTTL <= 0 {
		return fmt.Errorf("invalid session ttl: %s", c.sessionTTL)
	}
	if c.rateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %v", c.rateLimit)
	}
	return c.validateStores()
}

func (c *Config) validateStores() error {
	switch c.sessionStore {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.redisURL == "" {
			return errors.New("--redis-url is required when --session-store=redis")
		}
	default:
		return fmt.Errorf("invalid session store %q (must be memory or redis)", c.sessionStore)
	}

	switch c.raceStore {
	case factory.StorageTypeMemory:
	case factory.StorageTypeSQLite:
		if c.sqlitePath == "" {
			return errors.New("--sqlite-path is required when --race-store=sqlite")
		}
	case factory.StorageTypePostgres:
		if c.databaseURL == "" {
			return errors.New("--database-url is required when --race-store=postgres")
		}
	default:
		return fmt.Errorf("invalid race store %q (must be memory, sqlite or postgres)", c.raceStore)
	}
	return nil
}

func (c *Config) logLevel() slog.Level {
	if c.verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// factoryConfig converts the resolved flags into factory settings
func (c *Config) factoryConfig(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Logger:          logger,
		SessionStore:    c.sessionStore,
		RaceStore:       c.raceStore,
		SQLitePath:      c.sqlitePath,
		DatabaseURL:     c.databaseURL,
		SessionTTL:      c.sessionTTL,
		TimingTolerance: c.timingTolerance,
		RateLimit:       c.rateLimit,
		RateBurst:       c.rateBurst,
		CookieName:      c.sessionName,
		CookieSecure:    c.secureCookie,
		CORSOrigins:     c.corsOrigins,
	}
	if c.sessionStore == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.redisURL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("RACEBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "raceboard",
		Short:         "Race session and leaderboard server for the hamster racing game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.SetNormalizeFunc(normalizeFlag)

	pfs.StringVar(&cfg.sessionStore, "session-store", factory.StorageTypeMemory, "session backend: memory or redis (env: RACEBOARD_SESSION_STORE)")
	pfs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection URL (env: RACEBOARD_REDIS_URL)")
	pfs.StringVar(&cfg.raceStore, "race-store", factory.StorageTypeSQLite, "leaderboard backend: memory, sqlite or postgres (env: RACEBOARD_RACE_STORE)")
	pfs.StringVar(&cfg.sqlitePath, "sqlite-path", "races.db", "sqlite database file (env: RACEBOARD_SQLITE_PATH)")
	pfs.StringVar(&cfg.databaseURL, "database-url", "", "postgres connection URL (env: RACEBOARD_DATABASE_URL)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: RACEBOARD_VERBOSE)")

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlag)

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: RACEBOARD_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8000, "port to listen on (env: RACEBOARD_PORT)")
	fs.StringVar(&cfg.sessionName, "session-name", factory.DefaultCookieName, "session cookie name (env: RACEBOARD_SESSION_NAME)")
	fs.DurationVar(&cfg.sessionTTL, "session-ttl", 24*time.Hour, "lifetime of a guest session (env: RACEBOARD_SESSION_TTL)")
	fs.BoolVar(&cfg.secureCookie, "secure-cookie", false, "mark the session cookie Secure (env: RACEBOARD_SECURE_COOKIE)")
	fs.DurationVar(&cfg.timingTolerance, "timing-tolerance", time.Second, "accepted client/server race time drift (env: RACEBOARD_TIMING_TOLERANCE)")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", 5, "requests per second per caller on mutating routes, 0 disables (env: RACEBOARD_RATE_LIMIT)")
	fs.IntVar(&cfg.rateBurst, "rate-burst", 20, "rate limiter burst size (env: RACEBOARD_RATE_BURST)")
	fs.StringSliceVar(&cfg.corsOrigins, "cors-origins", nil, "comma-separated allowed CORS origins, empty disables CORS (env: RACEBOARD_CORS_ORIGINS)")
	fs.DurationVar(&cfg.janitorInterval, "janitor-interval", 15*time.Minute, "how often expired sessions are purged (env: RACEBOARD_JANITOR_INTERVAL)")

	cmd.AddCommand(newSeedCmd(cfg, v))

	bindFlags(v, pfs)
	bindFlags(v, fs)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newSeedCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the leaderboard with dummy entries.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateStores(); err != nil {
				return err
			}
			if cfg.seedPerMap < 1 {
				return fmt.Errorf("invalid --per-map: %d", cfg.seedPerMap)
			}
			return seedLeaderboard(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlag)

	fs.StringSliceVar(&cfg.seedMaps, "maps", nil, "maps to seed, defaults to every stage (env: RACEBOARD_MAPS)")
	fs.IntVar(&cfg.seedPerMap, "per-map", 20, "entries generated per map (env: RACEBOARD_PER_MAP)")

	bindFlags(v, fs)

	return cmd
}

func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// bindFlags lets environment variables fill any flag not given on the command line
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, envValue(v.Get(f.Name)))
		}
	})
}

func envValue(value any) string {
	if items, ok := value.([]string); ok {
		return strings.Join(items, ",")
	}
	return fmt.Sprintf("%v", value)
}
