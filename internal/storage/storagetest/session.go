// Package storagetest holds behavioral suites shared by every storage backend.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/storage"
)

// SessionStoreSuite exercises a storage.SessionStore. Backends embed it and set
// NewStore, which is called once per test.
type SessionStoreSuite struct {
	suite.Suite
	NewStore func() storage.SessionStore

	Store storage.SessionStore
	Ctx   context.Context
	Now   time.Time
}

func (s *SessionStoreSuite) SetupTest() {
	s.Store = s.NewStore()
	s.Ctx = context.Background()
	s.Now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *SessionStoreSuite) session(token string, id model.IdentityID, ttl time.Duration) *model.Session {
	return &model.Session{
		Token:     token,
		Identity:  model.Identity{ID: id, DisplayName: "Guest_" + string(id)},
		CreatedAt: s.Now,
		ExpiresAt: s.Now.Add(ttl),
	}
}

// Session tests

func (s *SessionStoreSuite) TestSaveAndGetSession() {
	err := s.Store.SaveSession(s.Ctx, s.session("tok-1", "id-1", time.Hour))
	s.Require().NoError(err)

	got, err := s.Store.GetSession(s.Ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("id-1"), got.Identity.ID)
	s.Equal("Guest_id-1", got.Identity.DisplayName)
	s.True(got.ExpiresAt.Equal(s.Now.Add(time.Hour)))
}

func (s *SessionStoreSuite) TestGetSessionNotFound() {
	_, err := s.Store.GetSession(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *SessionStoreSuite) TestSaveSessionOverwritesDisplayName() {
	sess := s.session("tok-1", "id-1", time.Hour)
	s.Require().NoError(s.Store.SaveSession(s.Ctx, sess))

	sess.Identity.DisplayName = "Speedy"
	s.Require().NoError(s.Store.SaveSession(s.Ctx, sess))

	got, err := s.Store.GetSession(s.Ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal("Speedy", got.Identity.DisplayName)
}

func (s *SessionStoreSuite) TestDeleteSession() {
	s.Require().NoError(s.Store.SaveSession(s.Ctx, s.session("tok-1", "id-1", time.Hour)))

	s.Require().NoError(s.Store.DeleteSession(s.Ctx, "tok-1"))

	_, err := s.Store.GetSession(s.Ctx, "tok-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *SessionStoreSuite) TestDeleteSessionUnknownIsNoop() {
	s.NoError(s.Store.DeleteSession(s.Ctx, "missing"))
}

// Race session tests

func (s *SessionStoreSuite) race(id model.IdentityID, raceID model.RaceID) *model.RaceSession {
	return &model.RaceSession{ID: raceID, IdentityID: id, StartedAt: s.Now}
}

func (s *SessionStoreSuite) TestSaveAndGetRaceSession() {
	s.Require().NoError(s.Store.SaveRaceSession(s.Ctx, s.race("id-1", "race-1")))

	got, err := s.Store.GetRaceSession(s.Ctx, "id-1")
	s.Require().NoError(err)
	s.Equal(model.RaceID("race-1"), got.ID)
	s.True(got.StartedAt.Equal(s.Now))
	s.Nil(got.EndedAt)
}

func (s *SessionStoreSuite) TestGetRaceSessionNotFound() {
	_, err := s.Store.GetRaceSession(s.Ctx, "id-1")
	s.ErrorIs(err, model.ErrRaceNotFound)
}

func (s *SessionStoreSuite) TestSaveRaceSessionReplacesPrevious() {
	s.Require().NoError(s.Store.SaveRaceSession(s.Ctx, s.race("id-1", "race-1")))
	s.Require().NoError(s.Store.SaveRaceSession(s.Ctx, s.race("id-1", "race-2")))

	got, err := s.Store.GetRaceSession(s.Ctx, "id-1")
	s.Require().NoError(err)
	s.Equal(model.RaceID("race-2"), got.ID)
}

func (s *SessionStoreSuite) TestClaimRaceSessionRemovesMatching() {
	s.Require().NoError(s.Store.SaveRaceSession(s.Ctx, s.race("id-1", "race-1")))

	claimed, err := s.Store.ClaimRaceSession(s.Ctx, "id-1", "race-1")
	s.Require().NoError(err)
	s.Equal(model.RaceID("race-1"), claimed.ID)

	_, err = s.Store.GetRaceSession(s.Ctx, "id-1")
	s.ErrorIs(err, model.ErrRaceNotFound)
}

func (s *SessionStoreSuite) TestClaimRaceSessionRejectsStaleID() {
	s.Require().NoError(s.Store.SaveRaceSession(s.Ctx, s.race("id-1", "race-2")))

	_, err := s.Store.ClaimRaceSession(s.Ctx, "id-1", "race-1")
	s.ErrorIs(err, model.ErrRaceNotFound)

	got, err := s.Store.GetRaceSession(s.Ctx, "id-1")
	s.Require().NoError(err)
	s.Equal(model.RaceID("race-2"), got.ID)
}

func (s *SessionStoreSuite) TestClaimRaceSessionOnlyOnce() {
	s.Require().NoError(s.Store.SaveRaceSession(s.Ctx, s.race("id-1", "race-1")))

	_, err := s.Store.ClaimRaceSession(s.Ctx, "id-1", "race-1")
	s.Require().NoError(err)

	_, err = s.Store.ClaimRaceSession(s.Ctx, "id-1", "race-1")
	s.ErrorIs(err, model.ErrRaceNotFound)
}

func (s *SessionStoreSuite) TestDeleteRaceSession() {
	s.Require().NoError(s.Store.SaveRaceSession(s.Ctx, s.race("id-1", "race-1")))

	s.Require().NoError(s.Store.DeleteRaceSession(s.Ctx, "id-1"))

	_, err := s.Store.GetRaceSession(s.Ctx, "id-1")
	s.ErrorIs(err, model.ErrRaceNotFound)
}

func (s *SessionStoreSuite) TestRaceSessionsAreIsolatedPerIdentity() {
	s.Require().NoError(s.Store.SaveRaceSession(s.Ctx, s.race("id-1", "race-1")))
	s.Require().NoError(s.Store.SaveRaceSession(s.Ctx, s.race("id-2", "race-2")))

	_, err := s.Store.ClaimRaceSession(s.Ctx, "id-1", "race-2")
	s.ErrorIs(err, model.ErrRaceNotFound)

	got, err := s.Store.GetRaceSession(s.Ctx, "id-2")
	s.Require().NoError(err)
	s.Equal(model.RaceID("race-2"), got.ID)
}
