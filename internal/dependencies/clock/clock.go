package clock

import "time"

// Clock is the server's time source. Race timing is measured against it,
// so tests swap in mocks.MockClock to control elapsed durations.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system wall clock in UTC
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time. It carries no monotonic reading, so a
// race measured from a start time kept in memory matches one decoded from redis.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
