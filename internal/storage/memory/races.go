package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/storage"
)

// RaceStorage is an in-memory implementation of storage.RaceStore
type RaceStorage struct {
	mu      sync.RWMutex
	records []model.RaceRecord
	nextID  int64
}

// NewRaceStorage creates an empty in-memory leaderboard
func NewRaceStorage() *RaceStorage {
	return &RaceStorage{nextID: 1}
}

// Ensure RaceStorage implements the interface
var _ storage.RaceStore = (*RaceStorage)(nil)

// raceComparators is indexed by model.SortColumn
var raceComparators = [...]func(a, b model.RaceRecord) int{
	model.SortByID:        func(a, b model.RaceRecord) int { return cmp.Compare(a.ID, b.ID) },
	model.SortByColor:     func(a, b model.RaceRecord) int { return cmp.Compare(a.Color, b.Color) },
	model.SortByMap:       func(a, b model.RaceRecord) int { return cmp.Compare(a.Map, b.Map) },
	model.SortByTime:      func(a, b model.RaceRecord) int { return cmp.Compare(a.Time, b.Time) },
	model.SortByCreatedAt: func(a, b model.RaceRecord) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (s *RaceStorage) AppendRace(ctx context.Context, record *model.RaceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = s.nextID
	s.nextID++
	s.records = append(s.records, *record)
	return nil
}

func (s *RaceStorage) QueryRaces(ctx context.Context, q model.LeaderboardQuery) ([]model.RaceRecord, error) {
	s.mu.RLock()
	matched := make([]model.RaceRecord, 0)
	for _, r := range s.records {
		if r.Map == q.Map {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	byColumn := raceComparators[model.SortByID]
	if q.SortBy.Valid() {
		byColumn = raceComparators[q.SortBy]
	}
	slices.SortStableFunc(matched, func(a, b model.RaceRecord) int {
		c := byColumn(a, b)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if q.Order == model.SortDescending {
			return -c
		}
		return c
	})

	if q.Offset >= len(matched) {
		return []model.RaceRecord{}, nil
	}
	end := len(matched)
	if q.Limit >= 0 && q.Limit < end-q.Offset {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], nil
}

// Close is a no-op
func (s *RaceStorage) Close() error {
	return nil
}
