// Package identity issues anonymous guest identities bound to session tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hamsterrace/raceboard/internal/dependencies/clock"
	"github.com/hamsterrace/raceboard/internal/dependencies/random"
	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/storage"
)

const (
	guestPrefix   = "Guest_"
	guestAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	guestLength   = 6

	// DisplayNameParam is the wire name of the display name field
	DisplayNameParam = "userName"
)

// Moderator screens display name candidates
type Moderator interface {
	IsProfane(name string) bool
	ContainsMarkup(name string) bool
}

// Config holds configuration for the identity service
type Config struct {
	SessionTTL time.Duration
}

// DefaultConfig returns default identity configuration
func DefaultConfig() Config {
	return Config{
		SessionTTL: 24 * time.Hour,
	}
}

// Service creates, resolves, renames and destroys session-bound identities
type Service struct {
	store     storage.SessionStore
	moderator Moderator
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	sessionTTL time.Duration
}

// New creates a new identity Service
func New(
	store storage.SessionStore,
	moderator Moderator,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = DefaultConfig().SessionTTL
	}
	return &Service{
		store:      store,
		moderator:  moderator,
		clock:      clock,
		random:     random,
		logger:     logger,
		sessionTTL: cfg.SessionTTL,
	}
}

// Resolve returns the live session for token, or model.ErrSessionNotFound if
// it is unknown or expired
func (s *Service) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, model.ErrSessionNotFound
	}
	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.clock.Now()) {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

// CreateIdentity issues a fresh guest identity and session. When token already
// resolves to a live session that session is returned unchanged with created=false.
func (s *Service) CreateIdentity(ctx context.Context, token string) (session *model.Session, created bool, err error) {
	existing, err := s.Resolve(ctx, token)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, model.ErrSessionNotFound) {
		return nil, false, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	now := s.clock.Now()
	session = &model.Session{
		Token: s.random.Token(),
		Identity: model.Identity{
			ID:          model.IdentityID(s.random.UUID()),
			DisplayName: guestPrefix + s.random.String(guestLength, guestAlphabet),
		},
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.store.SaveSession(ctx, session); err != nil {
		s.logger.Error("failed to save session",
			slog.String("identity_id", string(session.Identity.ID)),
			slog.String("error", err.Error()),
		)
		return nil, false, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	s.logger.Info("identity created",
		slog.String("identity_id", string(session.Identity.ID)),
		slog.String("display_name", session.Identity.DisplayName),
	)
	return session, true, nil
}

// DestroyIdentity ends the session and discards any in-flight race. Unknown
// tokens are ignored.
func (s *Service) DestroyIdentity(ctx context.Context, token string) error {
	session, err := s.store.GetSession(ctx, token)
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	if err := s.store.DeleteRaceSession(ctx, session.Identity.ID); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorage, err)
	}
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	s.logger.Info("identity destroyed",
		slog.String("identity_id", string(session.Identity.ID)),
	)
	return nil
}

// SetDisplayName validates candidate and stores it as the identity's name.
// Rejected candidates leave the previous name in place.
func (s *Service) SetDisplayName(ctx context.Context, session *model.Session, candidate string) (*model.Session, error) {
	if session == nil {
		return nil, model.ErrUnauthorized
	}

	name := strings.TrimSpace(candidate)
	if err := model.RequireParams(model.StringParam(DisplayNameParam, name)); err != nil {
		return nil, err
	}
	if s.moderator.ContainsMarkup(name) {
		return nil, model.ErrInvalidDisplayName
	}
	if s.moderator.IsProfane(name) {
		s.logger.Info("display name rejected",
			slog.String("identity_id", string(session.Identity.ID)),
		)
		return nil, model.ErrProfaneDisplayName
	}

	updated := *session
	updated.Identity.DisplayName = name
	if err := s.store.SaveSession(ctx, &updated); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	s.logger.Info("display name set",
		slog.String("identity_id", string(session.Identity.ID)),
		slog.String("display_name", name),
	)
	return &updated, nil
}

// CleanExpiredSessions purges sessions expired at the current time
func (s *Service) CleanExpiredSessions(ctx context.Context) (int, error) {
	removed, err := s.store.DeleteExpiredSessions(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}
	if removed > 0 {
		s.logger.Info("expired sessions purged", slog.Int("count", removed))
	}
	return removed, nil
}

// RunJanitor calls CleanExpiredSessions every interval until ctx is done
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.CleanExpiredSessions(ctx); err != nil {
				s.logger.Error("session janitor failed", slog.String("error", err.Error()))
			}
		}
	}
}
