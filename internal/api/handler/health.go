package handler

import (
	"net/http"

	"github.com/hamsterrace/raceboard/internal/api/response"
)

// Health handles GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.OK("healthy"))
}
