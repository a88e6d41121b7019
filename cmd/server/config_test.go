package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamsterrace/raceboard/internal/factory"
)

func validConfig() Config {
	return Config{
		port:         8000,
		sessionName:  "sessionid",
		sessionTTL:   time.Hour,
		sessionStore: factory.StorageTypeMemory,
		raceStore:    factory.StorageTypeMemory,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "port too low", mutate: func(c *Config) { c.port = 0 }, wantErr: "invalid port"},
		{name: "port too high", mutate: func(c *Config) { c.port = 70000 }, wantErr: "invalid port"},
		{name: "empty cookie name", mutate: func(c *Config) { c.sessionName = "" }, wantErr: "--session-name"},
		{name: "negative rate", mutate: func(c *Config) { c.rateLimit = -1 }, wantErr: "rate limit"},
		{name: "redis without url", mutate: func(c *Config) { c.sessionStore = factory.StorageTypeRedis }, wantErr: "--redis-url"},
		{name: "postgres without url", mutate: func(c *Config) { c.raceStore = factory.StorageTypePostgres }, wantErr: "--database-url"},
		{name: "sqlite without path", mutate: func(c *Config) { c.raceStore = factory.StorageTypeSQLite }, wantErr: "--sqlite-path"},
		{name: "unknown race store", mutate: func(c *Config) { c.raceStore = "mongo" }, wantErr: "invalid race store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFlagDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8000, cfg.port)
	assert.Equal(t, "sessionid", cfg.sessionName)
	assert.Equal(t, factory.StorageTypeSQLite, cfg.raceStore)
	assert.Equal(t, time.Second, cfg.timingTolerance)
	assert.Equal(t, 15*time.Minute, cfg.janitorInterval)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("RACEBOARD_PORT", "9100")
	t.Setenv("RACEBOARD_SESSION_STORE", "redis")
	t.Setenv("RACEBOARD_CORS_ORIGINS", "http://a.test,http://b.test")

	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 9100, cfg.port)
	assert.Equal(t, factory.StorageTypeRedis, cfg.sessionStore)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.corsOrigins)
}

func TestFactoryConfig(t *testing.T) {
	cfg := validConfig()
	cfg.sessionStore = factory.StorageTypeRedis
	cfg.redisURL = "redis://cache:6379/1"
	cfg.rateLimit = 3

	fc := cfg.factoryConfig(nil)

	require.NotNil(t, fc.RedisConfig)
	assert.Equal(t, "redis://cache:6379/1", fc.RedisConfig.URL)
	assert.Equal(t, "sessionid", fc.CookieName)
	assert.Equal(t, 3.0, fc.RateLimit)
}
