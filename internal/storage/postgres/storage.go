// Package postgres stores the leaderboard in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/storage"
	"github.com/hamsterrace/raceboard/internal/storage/sqlquery"
)

// Storage is a PostgreSQL-backed implementation of storage.RaceStore
type Storage struct {
	pool *pgxpool.Pool
}

// Ensure Storage implements the interface
var _ storage.RaceStore = (*Storage)(nil)

// New migrates the schema and opens a connection pool
func New(ctx context.Context, databaseURL string) (*Storage, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Storage{pool: pool}, nil
}

// NewWithPool wraps an existing pool; the schema must already be applied
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close releases the pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) AppendRace(ctx context.Context, record *model.RaceRecord) error {
	var createdAt any
	if !record.CreatedAt.IsZero() {
		createdAt = record.CreatedAt.UTC()
	}

	err := s.pool.QueryRow(ctx, sqlquery.InsertRace(sqlquery.Dollar),
		record.Color, record.Name, record.Map, record.Time, createdAt,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting race: %w", err)
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return nil
}

func (s *Storage) QueryRaces(ctx context.Context, q model.LeaderboardQuery) ([]model.RaceRecord, error) {
	stmt, args := sqlquery.SelectRaces(q, sqlquery.Dollar)
	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying races: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.RaceRecord, error) {
		var r model.RaceRecord
		err := row.Scan(&r.ID, &r.Color, &r.Name, &r.Map, &r.Time, &r.CreatedAt)
		r.CreatedAt = r.CreatedAt.UTC()
		return r, err
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.RaceRecord{}
	}
	return records, nil
}
