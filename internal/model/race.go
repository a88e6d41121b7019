package model

import "time"

// RaceID identifies a single in-flight race
type RaceID string

// RaceSession is the ephemeral timer state for an identity's current race.
// At most one exists per identity.
type RaceSession struct {
	ID         RaceID
	IdentityID IdentityID
	StartedAt  time.Time
	EndedAt    *time.Time // set only on the copy claimed by a finish
}

// ElapsedAt returns the server-measured race duration at the given instant
func (r *RaceSession) ElapsedAt(t time.Time) time.Duration {
	return t.Sub(r.StartedAt)
}

// RaceRecord is an immutable finished race as stored on the leaderboard.
// Name is a snapshot of the display name at finish time.
type RaceRecord struct {
	ID        int64     `json:"id"`
	Color     string    `json:"color"`
	Name      string    `json:"name"`
	Map       string    `json:"map"`
	Time      int64     `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}
