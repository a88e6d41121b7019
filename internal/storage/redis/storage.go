package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/storage"
)

// claimScript deletes the race hash only when its id field matches ARGV[1],
// returning the stored payload. A nil reply means nothing was claimed.
var claimScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "id") == ARGV[1] then
	local data = redis.call("HGET", KEYS[1], "data")
	redis.call("DEL", KEYS[1])
	return data
end
return false
`)

// Storage is a Redis-backed implementation of storage.SessionStore
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.SessionStore = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.Token), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// DeleteExpiredSessions is a no-op: session and race keys carry their own TTLs
func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

// Race session operations

func (s *Storage) SaveRaceSession(ctx context.Context, race *model.RaceSession) error {
	data, err := json.Marshal(race)
	if err != nil {
		return err
	}

	key := raceSessionKey(race.IdentityID)

	// Replace the whole hash so a stale payload never survives a restart
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, raceIDField, string(race.ID), raceDataField, data)
		if s.cfg.RaceSessionTTL > 0 {
			pipe.Expire(ctx, key, s.cfg.RaceSessionTTL)
		}
		return nil
	})
	return err
}

func (s *Storage) GetRaceSession(ctx context.Context, id model.IdentityID) (*model.RaceSession, error) {
	data, err := s.client.HGet(ctx, raceSessionKey(id), raceDataField).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRaceNotFound
		}
		return nil, err
	}
	return decodeRace(data)
}

func (s *Storage) DeleteRaceSession(ctx context.Context, id model.IdentityID) error {
	return s.client.Del(ctx, raceSessionKey(id)).Err()
}

func (s *Storage) ClaimRaceSession(ctx context.Context, id model.IdentityID, raceID model.RaceID) (*model.RaceSession, error) {
	data, err := claimScript.Run(ctx, s.client, []string{raceSessionKey(id)}, string(raceID)).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRaceNotFound
		}
		return nil, err
	}
	return decodeRace([]byte(data))
}

func decodeRace(data []byte) (*model.RaceSession, error) {
	var race model.RaceSession
	if err := json.Unmarshal(data, &race); err != nil {
		return nil, err
	}
	return &race, nil
}
