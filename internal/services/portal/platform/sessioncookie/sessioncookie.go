// Package sessioncookie owns the portal session cookie: one name, one set
// of attributes, shared by the auth middleware and the sign-in handlers.
package sessioncookie

import (
	"net/http"
	"strings"

	"github.com/ashmont/clientdocs/internal/services/portal/platform/requestmeta"
)

// Name is the portal session cookie name.
const Name = "clientdocs_session"

// Read returns the trimmed session cookie value when present.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil || cookie == nil {
		return "", false
	}
	if value := strings.TrimSpace(cookie.Value); value != "" {
		return value, true
	}
	return "", false
}

// Write sets the session cookie on the response.
func Write(w http.ResponseWriter, r *http.Request, sessionID string) {
	set(w, newCookie(r, strings.TrimSpace(sessionID), 0))
}

// Clear expires the session cookie on the response.
func Clear(w http.ResponseWriter, r *http.Request) {
	set(w, newCookie(r, "", -1))
}

func set(w http.ResponseWriter, cookie *http.Cookie) {
	if w == nil {
		return
	}
	http.SetCookie(w, cookie)
}

// newCookie builds the session cookie with the portal's fixed attributes.
// Secure follows the request scheme so plain-HTTP development setups keep
// working.
func newCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	}
}
