package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/storage"
	"github.com/hamsterrace/raceboard/internal/storage/storagetest"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour
	cfg.RaceSessionTTL = 10 * time.Minute
	return cfg
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, &storagetest.SessionStoreSuite{
		NewStore: func() storage.SessionStore {
			mini := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
			return NewWithClient(client, testConfig())
		},
	})
}

// StorageSuite covers behavior specific to the Redis backend
type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, testConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestSessionTTL() {
	session := &model.Session{Token: "tok-1", Identity: model.Identity{ID: "id-1"}}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	ttl := s.mini.TTL(sessionKey("tok-1"))
	s.Equal(time.Hour, ttl)

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetSession(s.ctx, "tok-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestRaceSessionTTL() {
	race := &model.RaceSession{ID: "race-1", IdentityID: "id-1", StartedAt: time.Now()}
	s.Require().NoError(s.storage.SaveRaceSession(s.ctx, race))

	s.Equal(10*time.Minute, s.mini.TTL(raceSessionKey("id-1")))

	s.mini.FastForward(11 * time.Minute)

	_, err := s.storage.GetRaceSession(s.ctx, "id-1")
	s.ErrorIs(err, model.ErrRaceNotFound)
}

func (s *StorageSuite) TestRaceSessionStoredAsHash() {
	race := &model.RaceSession{ID: "race-1", IdentityID: "id-1", StartedAt: time.Now()}
	s.Require().NoError(s.storage.SaveRaceSession(s.ctx, race))

	s.Equal("race-1", s.mini.HGet(raceSessionKey("id-1"), raceIDField))
	s.NotEmpty(s.mini.HGet(raceSessionKey("id-1"), raceDataField))
}

func (s *StorageSuite) TestDeleteExpiredSessionsDefersToTTL() {
	removed, err := s.storage.DeleteExpiredSessions(s.ctx, time.Now())
	s.Require().NoError(err)
	s.Zero(removed)
}
