package storage

import (
	"context"
	"time"

	"github.com/hamsterrace/raceboard/internal/model"
)

// SessionStore holds ephemeral per-client state: sessions with their identity,
// and at most one RaceSession per identity
type SessionStore interface {
	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	// DeleteExpiredSessions removes sessions expired at now, along with their
	// race sessions, and returns how many were removed
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)

	// Race session operations
	SaveRaceSession(ctx context.Context, race *model.RaceSession) error
	GetRaceSession(ctx context.Context, id model.IdentityID) (*model.RaceSession, error)
	DeleteRaceSession(ctx context.Context, id model.IdentityID) error
	// ClaimRaceSession atomically removes and returns the identity's race session
	// only if its ID equals raceID. Otherwise it returns model.ErrRaceNotFound and
	// leaves state untouched.
	ClaimRaceSession(ctx context.Context, id model.IdentityID, raceID model.RaceID) (*model.RaceSession, error)
}

// RaceStore is the durable, append-only leaderboard
type RaceStore interface {
	// AppendRace persists a record, assigning its ID. CreatedAt is kept when set.
	AppendRace(ctx context.Context, record *model.RaceRecord) error
	// QueryRaces runs a normalized ranking query
	QueryRaces(ctx context.Context, q model.LeaderboardQuery) ([]model.RaceRecord, error)
	Close() error
}
