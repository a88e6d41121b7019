package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hamsterrace/raceboard/internal/model"
)

// Result values carried in every envelope
const (
	ResultOK   = "ok"
	ResultFail = "fail"
)

// Messages for failures that are not derived from an error's own text
const (
	MessageInvalidRequest = "invalid request body"
	MessageServerError    = "server error. contact admin"
)

// ErrorResponse is the failure envelope. Timing fields are only set for a
// rejected finish.
type ErrorResponse struct {
	Result     string `json:"result"`
	Message    string `json:"message"`
	ServerTime *int64 `json:"serverTime,omitempty"`
	ClientTime *int64 `json:"clientTime,omitempty"`
	Difference *int64 `json:"difference,omitempty"`
}

// httpError combines an HTTP status code with a failure envelope
type httpError struct {
	status int
	body   ErrorResponse
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.body.Message
}

func fail(status int, message string) *httpError {
	return &httpError{status, ErrorResponse{Result: ResultFail, Message: message}}
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(he.body)
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var missing *model.MissingParameterError
	if errors.As(err, &missing) {
		return fail(http.StatusBadRequest, missing.Error())
	}

	var mismatch *model.TimingMismatchError
	if errors.As(err, &mismatch) {
		he := fail(http.StatusBadRequest, mismatch.Error())
		he.body.ServerTime = &mismatch.ServerMs
		he.body.ClientTime = &mismatch.ClientMs
		he.body.Difference = &mismatch.DifferenceMs
		return he
	}

	switch {
	case errors.Is(err, model.ErrUnauthorized):
		return fail(http.StatusUnauthorized, model.ErrUnauthorized.Error())
	case errors.Is(err, model.ErrSessionNotFound):
		return fail(http.StatusNotFound, model.ErrSessionNotFound.Error())
	case errors.Is(err, model.ErrRaceNotFound):
		return fail(http.StatusNotFound, model.ErrRaceNotFound.Error())
	case errors.Is(err, model.ErrInvalidDisplayName):
		return fail(http.StatusBadRequest, model.ErrInvalidDisplayName.Error())
	case errors.Is(err, model.ErrProfaneDisplayName):
		return fail(http.StatusNotAcceptable, model.ErrProfaneDisplayName.Error())
	case errors.Is(err, model.ErrRateLimited):
		return fail(http.StatusTooManyRequests, model.ErrRateLimited.Error())
	default:
		return fail(http.StatusInternalServerError, MessageServerError)
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return fail(http.StatusBadRequest, message)
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return fail(http.StatusInternalServerError, MessageServerError)
}
