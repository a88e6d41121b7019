package factory

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/services/leaderboard"
	"github.com/hamsterrace/raceboard/internal/services/race"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(Config{})
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

func (s *IntegrationSuite) newSession(name string) *model.Session {
	session, created, err := s.app.IdentityService.CreateIdentity(s.ctx, "")
	s.Require().NoError(err)
	s.Require().True(created)
	if name == "" {
		return session
	}
	renamed, err := s.app.IdentityService.SetDisplayName(s.ctx, session, name)
	s.Require().NoError(err)
	return renamed
}

// Test: Complete race flow from identity creation to the leaderboard
func (s *IntegrationSuite) TestCompleteRaceFlow() {
	session := s.newSession("Whiskers")

	started, err := s.app.RaceController.StartRace(s.ctx, session)
	s.Require().NoError(err)

	s.app.MockClock.Advance(12 * time.Second)

	record, err := s.app.RaceController.FinishRace(s.ctx, session, race.FinishInput{
		RaceID:   started.ID,
		RaceTime: 12_200,
		Map:      "StageI",
		Color:    "golden",
	})
	s.Require().NoError(err)
	s.Equal("Whiskers", record.Name)

	q, results, err := s.app.LeaderboardService.Query(s.ctx, leaderboard.RawQuery{Map: "StageI"})
	s.Require().NoError(err)
	s.Equal(model.DefaultLeaderboardLimit, q.Limit)
	s.Require().Len(results, 1)
	s.Equal(int64(12_200), results[0].Time)
	s.Equal(s.app.MockClock.Now(), results[0].CreatedAt)

	expected := `
# HELP raceboard_races_finished_total Races accepted onto the leaderboard.
# TYPE raceboard_races_finished_total counter
raceboard_races_finished_total 1
`
	s.NoError(testutil.GatherAndCompare(s.app.Registry, strings.NewReader(expected), "raceboard_races_finished_total"))
}

// Test: Rename after finishing does not rewrite stored records
func (s *IntegrationSuite) TestRecordKeepsNameSnapshot() {
	session := s.newSession("Before")

	started, err := s.app.RaceController.StartRace(s.ctx, session)
	s.Require().NoError(err)
	s.app.MockClock.Advance(time.Second)
	_, err = s.app.RaceController.FinishRace(s.ctx, session, race.FinishInput{
		RaceID: started.ID, RaceTime: 1000, Map: "StageII", Color: "white",
	})
	s.Require().NoError(err)

	_, err = s.app.IdentityService.SetDisplayName(s.ctx, session, "After")
	s.Require().NoError(err)

	_, results, err := s.app.LeaderboardService.Query(s.ctx, leaderboard.RawQuery{Map: "StageII"})
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("Before", results[0].Name)
}

// Test: Destroying an identity discards its running race
func (s *IntegrationSuite) TestDestroyDiscardsRace() {
	session := s.newSession("")

	started, err := s.app.RaceController.StartRace(s.ctx, session)
	s.Require().NoError(err)

	s.Require().NoError(s.app.IdentityService.DestroyIdentity(s.ctx, session.Token))

	_, err = s.app.Sessions.GetRaceSession(s.ctx, session.Identity.ID)
	s.ErrorIs(err, model.ErrRaceNotFound)

	err = s.app.RaceController.CancelRace(s.ctx, session, started.ID)
	s.ErrorIs(err, model.ErrRaceNotFound)
}

// Test: Expired sessions are purged together with their races
func (s *IntegrationSuite) TestJanitorPurgesExpired() {
	session := s.newSession("")
	_, err := s.app.RaceController.StartRace(s.ctx, session)
	s.Require().NoError(err)

	s.app.MockClock.Advance(25 * time.Hour)

	removed, err := s.app.IdentityService.CleanExpiredSessions(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, err = s.app.IdentityService.Resolve(s.ctx, session.Token)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func TestNewWithSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "races.db")
	app, err := New(context.Background(), Config{
		RaceStore:  StorageTypeSQLite,
		SQLitePath: path,
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, app.Close()) }()

	assert.NotNil(t, app.Router)
	assert.Nil(t, app.RateLimiter)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "unknown session store", cfg: Config{SessionStore: "etcd"}},
		{name: "redis without config", cfg: Config{SessionStore: StorageTypeRedis}},
		{name: "unknown race store", cfg: Config{RaceStore: "mongo"}},
		{name: "sqlite without path", cfg: Config{RaceStore: StorageTypeSQLite}},
		{name: "postgres without url", cfg: Config{RaceStore: StorageTypePostgres}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := New(context.Background(), tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, app)
		})
	}
}
