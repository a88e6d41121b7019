package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hamsterrace/raceboard/internal/api/apierr"
	"github.com/hamsterrace/raceboard/internal/model"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	tokenContextKey   contextKey = "token"
)

// SessionResolver looks up a live session by token
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*model.Session, error)
}

// Session resolves the caller's session, if any, from a bearer token or the
// named cookie. Requests without a live session pass through anonymously.
func Session(resolver SessionResolver, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), tokenContextKey, token)
			session, err := resolver.Resolve(ctx, token)
			switch {
			case err == nil:
				ctx = context.WithValue(ctx, sessionContextKey, session)
			case errors.Is(err, model.ErrSessionNotFound):
			default:
				logger.Error("session lookup failed", slog.String("error", err.Error()))
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request, cookieName string) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	// Fall back to cookie
	cookie, err := r.Cookie(cookieName)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetSession returns the caller's session, or nil when anonymous
func GetSession(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey).(*model.Session)
	return session
}

// GetToken returns the token the caller presented, even if it did not resolve
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}
