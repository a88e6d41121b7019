package handler

import (
	"net/http"

	"github.com/hamsterrace/raceboard/internal/api/apierr"
	"github.com/hamsterrace/raceboard/internal/api/request"
	"github.com/hamsterrace/raceboard/internal/api/response"
	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/services/leaderboard"
	"github.com/hamsterrace/raceboard/internal/services/race"
)

// RaceHandler handles race lifecycle and leaderboard endpoints
type RaceHandler struct {
	controller  *race.Controller
	leaderboard *leaderboard.Service
}

// NewRaceHandler creates a new race handler
func NewRaceHandler(controller *race.Controller, leaderboardService *leaderboard.Service) *RaceHandler {
	return &RaceHandler{
		controller:  controller,
		leaderboard: leaderboardService,
	}
}

// Start handles POST /race
func (h *RaceHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	started, err := h.controller.StartRace(r.Context(), session)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RaceStarted{
		Result:  apierr.ResultOK,
		Message: "race started",
		RaceID:  string(started.ID),
	})
}

// Finish handles PATCH /race
func (h *RaceHandler) Finish(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req request.FinishRaceRequest
	if err := request.Decode(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	_, err := h.controller.FinishRace(r.Context(), session, race.FinishInput{
		RaceID:   model.RaceID(req.RaceID),
		RaceTime: int64(req.RaceTime),
		Map:      req.RaceMap,
		Color:    req.RaceColor,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("race updated"))
}

// Cancel handles DELETE /race
func (h *RaceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req request.CancelRaceRequest
	if err := request.Decode(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	if err := h.controller.CancelRace(r.Context(), session, model.RaceID(req.RaceID)); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("race interrupted"))
}

// Board handles GET /race. Storage failures are reported with status 200.
func (h *RaceHandler) Board(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q, records, err := h.leaderboard.Query(r.Context(), leaderboard.RawQuery{
		Map:    query.Get("map"),
		Sort:   query.Get("sort"),
		SortBy: query.Get("sortBy"),
		Offset: query.Get("offset"),
		Limit:  query.Get("limit"),
	})
	if err != nil {
		response.JSON(w, http.StatusOK, response.LeaderboardFailureFromModel(q))
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(q, records))
}
