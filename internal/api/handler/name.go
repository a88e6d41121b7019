package handler

import (
	"net/http"

	"github.com/hamsterrace/raceboard/internal/api/request"
	"github.com/hamsterrace/raceboard/internal/api/response"
	"github.com/hamsterrace/raceboard/internal/services/identity"
)

// NameHandler handles display name changes
type NameHandler struct {
	identity *identity.Service
}

// NewNameHandler creates a new name handler
func NewNameHandler(identityService *identity.Service) *NameHandler {
	return &NameHandler{identity: identityService}
}

// Set handles POST /name
func (h *NameHandler) Set(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req request.SetNameRequest
	if err := request.Decode(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	if _, err := h.identity.SetDisplayName(r.Context(), session, req.UserName); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK("name is set"))
}
