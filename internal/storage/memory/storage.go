package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/storage"
)

// SessionStorage is an in-memory implementation of storage.SessionStore
type SessionStorage struct {
	mu sync.RWMutex

	sessions map[string]*model.Session
	races    map[model.IdentityID]*model.RaceSession
}

// NewSessionStorage creates a new in-memory session store
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		sessions: make(map[string]*model.Session),
		races:    make(map[model.IdentityID]*model.RaceSession),
	}
}

// Ensure SessionStorage implements the interface
var _ storage.SessionStore = (*SessionStorage)(nil)

// Session operations

func (s *SessionStorage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.Token] = &cp
	return nil
}

func (s *SessionStorage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *SessionStorage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *SessionStorage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.races, session.Identity.ID)
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// Race session operations

func (s *SessionStorage) SaveRaceSession(ctx context.Context, race *model.RaceSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *race
	s.races[race.IdentityID] = &cp
	return nil
}

func (s *SessionStorage) GetRaceSession(ctx context.Context, id model.IdentityID) (*model.RaceSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	race, ok := s.races[id]
	if !ok {
		return nil, model.ErrRaceNotFound
	}
	cp := *race
	return &cp, nil
}

func (s *SessionStorage) DeleteRaceSession(ctx context.Context, id model.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.races, id)
	return nil
}

func (s *SessionStorage) ClaimRaceSession(ctx context.Context, id model.IdentityID, raceID model.RaceID) (*model.RaceSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	race, ok := s.races[id]
	if !ok || race.ID != raceID {
		return nil, model.ErrRaceNotFound
	}
	delete(s.races, id)
	return race, nil
}
