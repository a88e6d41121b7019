package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hamsterrace/raceboard/internal/api"
	"github.com/hamsterrace/raceboard/internal/dependencies/clock"
	"github.com/hamsterrace/raceboard/internal/dependencies/random"
	"github.com/hamsterrace/raceboard/internal/factory"
	"github.com/hamsterrace/raceboard/internal/seed"
)

func main() {
	// A missing .env is fine; anything else is worth a warning
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env", slog.String("error", err.Error()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).ExecuteContext(ctx))
}

func newLogger(cfg *Config) *slog.Logger {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.logLevel(),
	}))
	slog.SetDefault(logger)
	return logger
}

func serve(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg)

	app, err := factory.New(ctx, cfg.factoryConfig(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	// Purge expired sessions in the background
	janitorCtx, cancelJanitor := context.WithCancel(ctx)
	defer cancelJanitor()
	go app.IdentityService.RunJanitor(janitorCtx, cfg.janitorInterval)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.bind
	serverConfig.Port = cfg.port
	server := api.NewServer(app.Router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("session_store", cfg.sessionStore),
		slog.String("race_store", cfg.raceStore),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

func seedLeaderboard(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg)

	app, err := factory.New(ctx, cfg.factoryConfig(logger))
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	maps := cfg.seedMaps
	if len(maps) == 0 {
		maps = seed.MapIDs()
	}

	records := seed.NewGenerator(random.New(), clock.New()).Records(maps, cfg.seedPerMap)
	_, err = seed.Seed(ctx, app.Races, records, logger)
	return err
}
