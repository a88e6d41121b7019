package handler

import (
	"net/http"

	"github.com/hamsterrace/raceboard/internal/api/apierr"
	"github.com/hamsterrace/raceboard/internal/api/middleware"
	"github.com/hamsterrace/raceboard/internal/model"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// writeInvalidBody answers a request whose JSON body could not be decoded
func writeInvalidBody(w http.ResponseWriter) {
	apierr.WriteError(w, apierr.NewInvalidRequestError(apierr.MessageInvalidRequest))
}

// requireSession returns the caller's session or writes 401
func requireSession(w http.ResponseWriter, r *http.Request) (*model.Session, bool) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		WriteError(w, model.ErrUnauthorized)
		return nil, false
	}
	return session, true
}
