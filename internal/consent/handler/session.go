package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionCookieName carries the opaque visitor session id.
	SessionCookieName = "visitor-session"
	sessionCookieAge  = 30 * 24 * time.Hour
)

// sessionFromRequest returns the visitor session id, or "" when the cookie is
// missing or not one we issued.
func sessionFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(sessionCookieAge / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ensureSession returns the request's session id, minting and setting a new
// one when absent. minted reports whether a new id was issued.
func (h *Handler) ensureSession(w http.ResponseWriter, r *http.Request) (sessionID string, minted bool) {
	if id := sessionFromRequest(r); id != "" {
		return id, false
	}
	id := uuid.NewString()
	h.setSessionCookie(w, id)
	return id, true
}
