package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hamsterrace/raceboard/internal/api/apierr"
	"github.com/hamsterrace/raceboard/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// Logging logs each request with the caller's identity when one is bound.
// It must run inside Session.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger, func(r *http.Request) []slog.Attr {
		if session := GetSession(r.Context()); session != nil {
			return []slog.Attr{slog.String("identity_id", string(session.Identity.ID))}
		}
		return nil
	})
}
