package storagetest

import (
	"context"
	"math"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/storage"
)

// RaceStoreSuite exercises a storage.RaceStore. Backends embed it and set
// NewStore, which is called once per test.
type RaceStoreSuite struct {
	suite.Suite
	NewStore func() storage.RaceStore

	Store storage.RaceStore
	Ctx   context.Context
	Base  time.Time
}

func (s *RaceStoreSuite) SetupTest() {
	s.Store = s.NewStore()
	s.Ctx = context.Background()
	s.Base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *RaceStoreSuite) TearDownTest() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

// seed appends records in order; the i-th record is created i minutes after Base
func (s *RaceStoreSuite) seed(records ...model.RaceRecord) []model.RaceRecord {
	out := make([]model.RaceRecord, 0, len(records))
	for i, r := range records {
		r.CreatedAt = s.Base.Add(time.Duration(i) * time.Minute)
		s.Require().NoError(s.Store.AppendRace(s.Ctx, &r))
		out = append(out, r)
	}
	return out
}

func query(mapName string, col model.SortColumn, order model.SortOrder, offset, limit int) model.LeaderboardQuery {
	return model.LeaderboardQuery{Map: mapName, SortBy: col, Order: order, Offset: offset, Limit: limit}
}

func names(records []model.RaceRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func (s *RaceStoreSuite) TestAppendAssignsIncreasingIDs() {
	seeded := s.seed(
		model.RaceRecord{Color: "Red", Name: "a", Map: "m", Time: 300},
		model.RaceRecord{Color: "Red", Name: "b", Map: "m", Time: 200},
	)
	s.Positive(seeded[0].ID)
	s.Greater(seeded[1].ID, seeded[0].ID)
}

func (s *RaceStoreSuite) TestQueryRoundTripsFields() {
	s.seed(model.RaceRecord{Color: "Cyan", Name: "Guest_x", Map: "StageI.tmx", Time: 12345})

	got, err := s.Store.QueryRaces(s.Ctx, query("StageI.tmx", model.SortByID, model.SortAscending, 0, 10))
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("Cyan", got[0].Color)
	s.Equal("Guest_x", got[0].Name)
	s.Equal("StageI.tmx", got[0].Map)
	s.Equal(int64(12345), got[0].Time)
	s.True(got[0].CreatedAt.Equal(s.Base), "created_at %v", got[0].CreatedAt)
}

func (s *RaceStoreSuite) TestQueryFiltersByExactMap() {
	s.seed(
		model.RaceRecord{Name: "a", Map: "m1", Time: 1},
		model.RaceRecord{Name: "b", Map: "m2", Time: 2},
		model.RaceRecord{Name: "c", Map: "", Time: 3},
		model.RaceRecord{Name: "d", Map: "m1", Time: 4},
	)

	got, err := s.Store.QueryRaces(s.Ctx, query("m1", model.SortByID, model.SortAscending, 0, 10))
	s.Require().NoError(err)
	s.Equal([]string{"a", "d"}, names(got))

	got, err = s.Store.QueryRaces(s.Ctx, query("", model.SortByID, model.SortAscending, 0, 10))
	s.Require().NoError(err)
	s.Equal([]string{"c"}, names(got))
}

func (s *RaceStoreSuite) TestQueryUnknownMapIsEmpty() {
	s.seed(model.RaceRecord{Name: "a", Map: "m1", Time: 1})

	got, err := s.Store.QueryRaces(s.Ctx, query("nope", model.SortByID, model.SortAscending, 0, 10))
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *RaceStoreSuite) TestQuerySortsByTime() {
	s.seed(
		model.RaceRecord{Name: "slow", Map: "m", Time: 900},
		model.RaceRecord{Name: "fast", Map: "m", Time: 100},
		model.RaceRecord{Name: "mid", Map: "m", Time: 500},
	)

	got, err := s.Store.QueryRaces(s.Ctx, query("m", model.SortByTime, model.SortAscending, 0, 10))
	s.Require().NoError(err)
	s.Equal([]string{"fast", "mid", "slow"}, names(got))

	got, err = s.Store.QueryRaces(s.Ctx, query("m", model.SortByTime, model.SortDescending, 0, 10))
	s.Require().NoError(err)
	s.Equal([]string{"slow", "mid", "fast"}, names(got))
}

func (s *RaceStoreSuite) TestQuerySortsByColorWithIDTiebreak() {
	s.seed(
		model.RaceRecord{Name: "r1", Color: "Red", Map: "m", Time: 1},
		model.RaceRecord{Name: "b1", Color: "Blue", Map: "m", Time: 1},
		model.RaceRecord{Name: "r2", Color: "Red", Map: "m", Time: 1},
	)

	got, err := s.Store.QueryRaces(s.Ctx, query("m", model.SortByColor, model.SortAscending, 0, 10))
	s.Require().NoError(err)
	s.Equal([]string{"b1", "r1", "r2"}, names(got))
}

func (s *RaceStoreSuite) TestQuerySortsByCreatedAt() {
	s.seed(
		model.RaceRecord{Name: "first", Map: "m", Time: 3},
		model.RaceRecord{Name: "second", Map: "m", Time: 2},
		model.RaceRecord{Name: "third", Map: "m", Time: 1},
	)

	got, err := s.Store.QueryRaces(s.Ctx, query("m", model.SortByCreatedAt, model.SortDescending, 0, 10))
	s.Require().NoError(err)
	s.Equal([]string{"third", "second", "first"}, names(got))
}

func (s *RaceStoreSuite) TestQueryPaginates() {
	var records []model.RaceRecord
	for i := 0; i < 15; i++ {
		records = append(records, model.RaceRecord{Name: string(rune('a' + i)), Map: "m", Time: int64(1000 - i*10)})
	}
	s.seed(records...)

	page, err := s.Store.QueryRaces(s.Ctx, query("m", model.SortByTime, model.SortAscending, 0, 10))
	s.Require().NoError(err)
	s.Require().Len(page, 10)

	for k := 0; k < 10; k++ {
		one, err := s.Store.QueryRaces(s.Ctx, query("m", model.SortByTime, model.SortAscending, k, 1))
		s.Require().NoError(err)
		s.Require().Len(one, 1)
		s.Equal(page[k].ID, one[0].ID)
		s.Equal(page[k].Name, one[0].Name)
	}
}

func (s *RaceStoreSuite) TestQueryOffsetPastEndIsEmpty() {
	s.seed(model.RaceRecord{Name: "a", Map: "m", Time: 1})

	got, err := s.Store.QueryRaces(s.Ctx, query("m", model.SortByID, model.SortAscending, 5, 10))
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *RaceStoreSuite) TestQueryZeroLimitIsEmpty() {
	s.seed(model.RaceRecord{Name: "a", Map: "m", Time: 1})

	got, err := s.Store.QueryRaces(s.Ctx, query("m", model.SortByID, model.SortAscending, 0, 0))
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *RaceStoreSuite) TestQueryHugeLimit() {
	s.seed(
		model.RaceRecord{Name: "a", Map: "m", Time: 3},
		model.RaceRecord{Name: "b", Map: "m", Time: 2},
		model.RaceRecord{Name: "c", Map: "m", Time: 1},
	)

	got, err := s.Store.QueryRaces(s.Ctx, query("m", model.SortByTime, model.SortAscending, 1, math.MaxInt))
	s.Require().NoError(err)
	s.Equal([]string{"b", "a"}, names(got))
}
