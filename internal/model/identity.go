package model

import "time"

// IdentityID uniquely identifies an anonymous player for the lifetime of a session
type IdentityID string

// Identity is the anonymous principal bound to a client session
type Identity struct {
	ID          IdentityID
	DisplayName string
}

// Session binds an opaque client token to an Identity
type Session struct {
	Token     string
	Identity  Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer usable at the given time
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
