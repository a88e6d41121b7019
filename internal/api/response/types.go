package response

import (
	"time"

	"github.com/hamsterrace/raceboard/internal/api/apierr"
	"github.com/hamsterrace/raceboard/internal/model"
)

// Envelope is the body shared by every successful response
type Envelope struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

// OK returns a success envelope with message
func OK(message string) Envelope {
	return Envelope{Result: apierr.ResultOK, Message: message}
}

// Session describes the caller's identity
type Session struct {
	Result   string `json:"result"`
	Message  string `json:"message"`
	UserID   string `json:"userId,omitempty"`
	UserName string `json:"userName,omitempty"`
}

// SessionFromModel builds a Session response
func SessionFromModel(message string, s *model.Session) Session {
	return Session{
		Result:   apierr.ResultOK,
		Message:  message,
		UserID:   string(s.Identity.ID),
		UserName: s.Identity.DisplayName,
	}
}

// RaceStarted is returned when a race begins
type RaceStarted struct {
	Result  string `json:"result"`
	Message string `json:"message"`
	RaceID  string `json:"raceId"`
}

// Race is a leaderboard entry
type Race struct {
	ID        int64     `json:"id"`
	Color     string    `json:"color"`
	Name      string    `json:"name"`
	Map       string    `json:"map"`
	Time      int64     `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// RaceFromModel converts a model.RaceRecord
func RaceFromModel(r model.RaceRecord) Race {
	return Race{
		ID:        r.ID,
		Color:     r.Color,
		Name:      r.Name,
		Map:       r.Map,
		Time:      r.Time,
		CreatedAt: r.CreatedAt,
	}
}

// LeaderboardParams echoes the normalized query
type LeaderboardParams struct {
	Sort   string `json:"sort"`
	Map    string `json:"map"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	SortBy string `json:"sortBy"`
}

// LeaderboardParamsFromModel converts a model.LeaderboardQuery
func LeaderboardParamsFromModel(q model.LeaderboardQuery) LeaderboardParams {
	return LeaderboardParams{
		Sort:   q.Order.String(),
		Map:    q.Map,
		Offset: q.Offset,
		Limit:  q.Limit,
		SortBy: q.SortBy.String(),
	}
}

// Leaderboard is a successful ranking query
type Leaderboard struct {
	Result  string            `json:"result"`
	Params  LeaderboardParams `json:"params"`
	Results []Race            `json:"results"`
}

// LeaderboardFromModel builds a Leaderboard response
func LeaderboardFromModel(q model.LeaderboardQuery, records []model.RaceRecord) Leaderboard {
	results := make([]Race, len(records))
	for i, r := range records {
		results[i] = RaceFromModel(r)
	}
	return Leaderboard{
		Result:  apierr.ResultOK,
		Params:  LeaderboardParamsFromModel(q),
		Results: results,
	}
}

// LeaderboardFailure reports a storage failure. It is sent with status 200.
type LeaderboardFailure struct {
	Result  string            `json:"result"`
	Params  LeaderboardParams `json:"params"`
	Message string            `json:"message"`
}

// LeaderboardFailureFromModel builds a LeaderboardFailure response
func LeaderboardFailureFromModel(q model.LeaderboardQuery) LeaderboardFailure {
	return LeaderboardFailure{
		Result:  apierr.ResultFail,
		Params:  LeaderboardParamsFromModel(q),
		Message: apierr.MessageServerError,
	}
}
