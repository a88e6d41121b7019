package handler

import (
	"net/http"
	"time"

	"github.com/hamsterrace/raceboard/internal/api/middleware"
	"github.com/hamsterrace/raceboard/internal/api/response"
	"github.com/hamsterrace/raceboard/internal/model"
	"github.com/hamsterrace/raceboard/internal/services/identity"
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// SessionHandler handles identity lifecycle endpoints
type SessionHandler struct {
	identity *identity.Service
	cookie   CookieConfig
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(identityService *identity.Service, cookie CookieConfig) *SessionHandler {
	return &SessionHandler{
		identity: identityService,
		cookie:   cookie,
	}
}

// Get handles GET /session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		WriteError(w, model.ErrSessionNotFound)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionFromModel("session exists", session))
}

// Create handles POST /session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, created, err := h.identity.CreateIdentity(r.Context(), middleware.GetToken(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}

	if !created {
		response.JSON(w, http.StatusOK, response.SessionFromModel("session exists", session))
		return
	}

	http.SetCookie(w, h.sessionCookie(session.Token, int(h.cookie.MaxAge.Seconds())))
	response.JSON(w, http.StatusOK, response.SessionFromModel("session created", session))
}

// Destroy handles DELETE /session
func (h *SessionHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.DestroyIdentity(r.Context(), middleware.GetToken(r.Context())); err != nil {
		WriteError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	response.JSON(w, http.StatusOK, response.OK("session destroyed"))
}

func (h *SessionHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
