// Package leaderboard normalizes untrusted ranking parameters and runs them
// against the race store.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hamsterrace/raceboard/internal/metrics"
	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/storage"
)

// RawQuery holds leaderboard parameters exactly as the client sent them
type RawQuery struct {
	Map    string
	Sort   string
	SortBy string
	Offset string
	Limit  string
}

// Normalize turns raw parameters into a query. Malformed values fall back to
// their defaults instead of failing.
func Normalize(raw RawQuery) model.LeaderboardQuery {
	q := model.DefaultLeaderboardQuery()

	q.Map = raw.Map

	switch strings.ToLower(raw.Sort) {
	case "asc":
		q.Order = model.SortAscending
	case "desc":
		q.Order = model.SortDescending
	}

	if col, ok := model.ParseSortColumn(raw.SortBy); ok {
		q.SortBy = col
	}

	q.Offset = nonNegative(raw.Offset, model.DefaultLeaderboardOffset)
	q.Limit = nonNegative(raw.Limit, model.DefaultLeaderboardLimit)
	return q
}

func nonNegative(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// Service executes leaderboard queries
type Service struct {
	races   storage.RaceStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// New creates a new leaderboard Service
func New(races storage.RaceStore, metrics metrics.Recorder, logger *slog.Logger) *Service {
	return &Service{
		races:   races,
		metrics: metrics,
		logger:  logger,
	}
}

// Query normalizes raw and returns the query actually used with its results.
// The normalized query is returned even when the store fails.
func (s *Service) Query(ctx context.Context, raw RawQuery) (model.LeaderboardQuery, []model.RaceRecord, error) {
	q := Normalize(raw)

	records, err := s.races.QueryRaces(ctx, q)
	s.metrics.RecordLeaderboardQuery(err != nil)
	if err != nil {
		s.logger.Error("leaderboard query failed",
			slog.String("map", q.Map),
			slog.String("sort_by", q.SortBy.String()),
			slog.String("sort", q.Order.String()),
			slog.String("error", err.Error()),
		)
		return q, nil, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}
	return q, records, nil
}
