// Package timing cross-checks client-reported race durations against the server clock.
package timing

import (
	"math"
	"time"

	"github.com/hamsterrace/raceboard/internal/model"
)

// DefaultTolerance is the largest accepted gap between client and server elapsed time
const DefaultTolerance = time.Second

// Measurement is the outcome of comparing both clocks, in milliseconds
type Measurement struct {
	ServerMs     int64
	ClientMs     int64
	DifferenceMs int64
}

// Validator accepts a client time when it is within Tolerance of the server's
// own measurement. The bound is inclusive.
type Validator struct {
	tolerance time.Duration
}

// NewValidator creates a validator; a non-positive tolerance selects DefaultTolerance
func NewValidator(tolerance time.Duration) *Validator {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Validator{tolerance: tolerance}
}

// Tolerance returns the configured bound
func (v *Validator) Tolerance() time.Duration {
	return v.tolerance
}

// Check measures the race from startedAt to now and compares it with clientMs.
// A negative clientMs is always rejected.
// The measurement is always returned; err is a *model.TimingMismatchError on rejection.
func (v *Validator) Check(startedAt, now time.Time, clientMs int64) (Measurement, error) {
	serverMs := now.Sub(startedAt).Milliseconds()
	diff, ok := absDiff(serverMs, clientMs)

	m := Measurement{ServerMs: serverMs, ClientMs: clientMs, DifferenceMs: diff}
	if !ok || clientMs < 0 || diff > v.tolerance.Milliseconds() {
		return m, &model.TimingMismatchError{
			ServerMs:     serverMs,
			ClientMs:     clientMs,
			DifferenceMs: diff,
		}
	}
	return m, nil
}

// absDiff returns |a-b|. ok is false when the result does not fit in int64,
// in which case the difference saturates at math.MaxInt64.
func absDiff(a, b int64) (int64, bool) {
	if a < b {
		a, b = b, a
	}
	d := a - b
	if d < 0 {
		return math.MaxInt64, false
	}
	return d, true
}
