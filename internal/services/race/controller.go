// Package race drives the per-identity race lifecycle: start, finish and cancel.
package race

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hamsterrace/raceboard/internal/dependencies/clock"
	"github.com/hamsterrace/raceboard/internal/dependencies/random"
	"github.com/hamsterrace/raceboard/internal/metrics"
	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/services/timing"
	"github.com/hamsterrace/raceboard/internal/storage"
)

// Wire names of the race parameters
const (
	ParamRaceID    = "raceId"
	ParamRaceTime  = "raceTime"
	ParamRaceMap   = "raceMap"
	ParamRaceColor = "raceColor"
)

// FinishInput carries a client's finish claim
type FinishInput struct {
	RaceID   model.RaceID
	RaceTime int64 // client-measured milliseconds
	Map      string
	Color    string
}

// Controller owns RaceSession transitions. Requests for one identity are
// serialized; different identities never contend.
type Controller struct {
	sessions  storage.SessionStore
	races     storage.RaceStore
	validator *timing.Validator
	clock     clock.Clock
	random    random.Random
	metrics   metrics.Recorder
	logger    *slog.Logger

	locks *lockArena
}

// NewController creates a new race Controller
func NewController(
	sessions storage.SessionStore,
	races storage.RaceStore,
	validator *timing.Validator,
	clock clock.Clock,
	random random.Random,
	metrics metrics.Recorder,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		sessions:  sessions,
		races:     races,
		validator: validator,
		clock:     clock,
		random:    random,
		metrics:   metrics,
		logger:    logger,
		locks:     newLockArena(),
	}
}

// StartRace begins a new race for the session's identity, replacing any race
// already running.
func (c *Controller) StartRace(ctx context.Context, session *model.Session) (*model.RaceSession, error) {
	if session == nil {
		return nil, model.ErrUnauthorized
	}
	id := session.Identity.ID

	unlock := c.locks.lock(id)
	defer unlock()

	race := &model.RaceSession{
		ID:         model.RaceID(c.random.UUID()),
		IdentityID: id,
		StartedAt:  c.clock.Now(),
	}
	if err := c.sessions.SaveRaceSession(ctx, race); err != nil {
		c.logger.Error("failed to save race session",
			slog.String("identity_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	c.metrics.RecordRaceStarted()
	c.logger.Info("race started",
		slog.String("identity_id", string(id)),
		slog.String("race_id", string(race.ID)),
	)
	return race, nil
}

// FinishRace validates the client time against the server clock and, when it
// agrees, appends the result to the leaderboard and ends the race. A timing
// mismatch leaves the race running so the client may retry.
func (c *Controller) FinishRace(ctx context.Context, session *model.Session, in FinishInput) (*model.RaceRecord, error) {
	if session == nil {
		return nil, model.ErrUnauthorized
	}
	if err := model.RequireParams(
		model.StringParam(ParamRaceID, string(in.RaceID)),
		model.IntParam(ParamRaceTime, in.RaceTime),
		model.StringParam(ParamRaceMap, in.Map),
		model.StringParam(ParamRaceColor, in.Color),
	); err != nil {
		c.metrics.RecordRaceRejected(metrics.ReasonMissingParameter)
		return nil, err
	}
	id := session.Identity.ID

	unlock := c.locks.lock(id)
	defer unlock()

	race, err := c.currentRace(ctx, id, in.RaceID)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	m, err := c.validator.Check(race.StartedAt, now, in.RaceTime)
	c.metrics.RecordTimingDrift(time.Duration(m.DifferenceMs) * time.Millisecond)
	if err != nil {
		c.metrics.RecordRaceRejected(metrics.ReasonTimingMismatch)
		c.logger.Warn("race time mismatch",
			slog.String("identity_id", string(id)),
			slog.String("race_id", string(in.RaceID)),
			slog.Int64("server_ms", m.ServerMs),
			slog.Int64("client_ms", m.ClientMs),
			slog.Int64("difference_ms", m.DifferenceMs),
		)
		return nil, err
	}

	claimed, err := c.claim(ctx, id, in.RaceID)
	if err != nil {
		return nil, err
	}
	claimed.EndedAt = &now

	record := &model.RaceRecord{
		Color:     in.Color,
		Name:      session.Identity.DisplayName,
		Map:       in.Map,
		Time:      in.RaceTime,
		CreatedAt: now,
	}
	if err := c.races.AppendRace(ctx, record); err != nil {
		c.metrics.RecordRaceRejected(metrics.ReasonStorage)
		c.logger.Error("failed to append race",
			slog.String("identity_id", string(id)),
			slog.String("race_id", string(in.RaceID)),
			slog.String("error", err.Error()),
		)
		claimed.EndedAt = nil
		if restoreErr := c.sessions.SaveRaceSession(ctx, claimed); restoreErr != nil {
			c.logger.Error("failed to restore race session",
				slog.String("race_id", string(in.RaceID)),
				slog.String("error", restoreErr.Error()),
			)
		}
		return nil, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}

	c.metrics.RecordRaceFinished()
	c.logger.Info("race finished",
		slog.String("identity_id", string(id)),
		slog.String("race_id", string(in.RaceID)),
		slog.Int64("record_id", record.ID),
		slog.String("map", record.Map),
		slog.Int64("time_ms", record.Time),
	)
	return record, nil
}

// CancelRace ends the identified race without recording a result
func (c *Controller) CancelRace(ctx context.Context, session *model.Session, raceID model.RaceID) error {
	if session == nil {
		return model.ErrUnauthorized
	}
	if err := model.RequireParams(model.StringParam(ParamRaceID, string(raceID))); err != nil {
		c.metrics.RecordRaceRejected(metrics.ReasonMissingParameter)
		return err
	}
	id := session.Identity.ID

	unlock := c.locks.lock(id)
	defer unlock()

	if _, err := c.claim(ctx, id, raceID); err != nil {
		return err
	}

	c.metrics.RecordRaceCancelled()
	c.logger.Info("race cancelled",
		slog.String("identity_id", string(id)),
		slog.String("race_id", string(raceID)),
	)
	return nil
}

// currentRace returns the identity's running race if its ID is raceID
func (c *Controller) currentRace(ctx context.Context, id model.IdentityID, raceID model.RaceID) (*model.RaceSession, error) {
	race, err := c.sessions.GetRaceSession(ctx, id)
	if errors.Is(err, model.ErrRaceNotFound) || (err == nil && race.ID != raceID) {
		c.metrics.RecordRaceRejected(metrics.ReasonNotFound)
		return nil, model.ErrRaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}
	return race, nil
}

func (c *Controller) claim(ctx context.Context, id model.IdentityID, raceID model.RaceID) (*model.RaceSession, error) {
	race, err := c.sessions.ClaimRaceSession(ctx, id, raceID)
	if errors.Is(err, model.ErrRaceNotFound) {
		c.metrics.RecordRaceRejected(metrics.ReasonNotFound)
		return nil, model.ErrRaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrStorage, err)
	}
	return race, nil
}
