package model

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used across the application
var (
	// Identity errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidDisplayName = errors.New("invalid display name")
	ErrProfaneDisplayName = errors.New("the provided name contains profanity")

	// Race errors
	ErrRaceNotFound = errors.New("raceId not found")

	// Infrastructure errors
	ErrStorage     = errors.New("storage failure")
	ErrRateLimited = errors.New("too many requests")
)

// MissingParameterError lists every required parameter absent from a request
type MissingParameterError struct {
	Params []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("required parameter (%s) missing", strings.Join(e.Params, ","))
}

// TimingMismatchError reports a finish whose client time disagrees with the server clock
type TimingMismatchError struct {
	ServerMs     int64
	ClientMs     int64
	DifferenceMs int64
}

func (e *TimingMismatchError) Error() string {
	return "raceTime mismatch"
}
