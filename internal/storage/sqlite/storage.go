// Package sqlite stores the leaderboard in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/storage"
	"github.com/hamsterrace/raceboard/internal/storage/sqlquery"
)

//go:embed schema.sql
var schema string

// timestampLayouts are tried in order when reading created_at back.
// The last one is SQLite's own datetime('now') form.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// formatTimestamp renders t as UTC ISO8601 so it sorts lexically
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Storage is a SQLite-backed implementation of storage.RaceStore
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.RaceStore = (*Storage)(nil)

// New opens (creating if needed) the database at path and applies the schema
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite has a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) AppendRace(ctx context.Context, record *model.RaceRecord) error {
	// created_at is compared as text, so every row carries formatTimestamp's layout
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var id int64
	var stored string
	err := s.db.QueryRowContext(ctx, sqlquery.InsertRace(sqlquery.Question),
		record.Color, record.Name, record.Map, record.Time, formatTimestamp(createdAt),
	).Scan(&id, &stored)
	if err != nil {
		return fmt.Errorf("inserting race: %w", err)
	}

	record.ID = id
	if record.CreatedAt, err = parseTimestamp(stored); err != nil {
		return err
	}
	return nil
}

func (s *Storage) QueryRaces(ctx context.Context, q model.LeaderboardQuery) ([]model.RaceRecord, error) {
	stmt, args := sqlquery.SelectRaces(q, sqlquery.Question)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying races: %w", err)
	}
	defer rows.Close()

	records := make([]model.RaceRecord, 0)
	for rows.Next() {
		var r model.RaceRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Color, &r.Name, &r.Map, &r.Time, &createdAt); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
