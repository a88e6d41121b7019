package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// ErrInvalidMillis is returned for a raceTime that is neither a number nor a numeric string
var ErrInvalidMillis = errors.New("raceTime must be numeric")

// SetNameRequest is the request body for setting a display name
type SetNameRequest struct {
	UserName string `json:"userName"`
}

// FinishRaceRequest is the request body for finishing a race
type FinishRaceRequest struct {
	RaceID    string `json:"raceId"`
	RaceTime  Millis `json:"raceTime"`
	RaceMap   string `json:"raceMap"`
	RaceColor string `json:"raceColor"`
}

// CancelRaceRequest is the request body for cancelling a race
type CancelRaceRequest struct {
	RaceID string `json:"raceId"`
}

// Millis is a client-reported duration in milliseconds. It accepts a JSON
// number or a string holding one; fractions are truncated. null and "" decode to 0.
type Millis int64

func (m *Millis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*m = 0
			return nil
		}
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*m = Millis(n)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return ErrInvalidMillis
	}
	*m = Millis(math.Trunc(f))
	return nil
}

// Decode reads a JSON body into v. An empty body leaves v at its zero value.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
