// Package authctx provides the portal's authentication seams.
package authctx

import (
	"context"
	"net/http"

	"github.com/ashmont/clientdocs/internal/services/portal/platform/sessioncookie"
)

// IsAuthenticated reports whether the current request should access protected
// routes.
type IsAuthenticated func(*http.Request) bool

// CookieSessionAuth returns a presence-only auth strategy: any non-blank
// session cookie passes. Useful for tests and composition defaults.
func CookieSessionAuth() IsAuthenticated {
	return ValidatedSessionAuth(func(context.Context, string) bool { return true })
}

// ValidatedSessionAuth authenticates requests only through session cookies
// that the validator accepts. Header identities never pass, and a nil
// validator fails closed.
func ValidatedSessionAuth(validate func(context.Context, string) bool) IsAuthenticated {
	return func(r *http.Request) bool {
		if r == nil || validate == nil {
			return false
		}
		sessionID, ok := sessioncookie.Read(r)
		return ok && validate(r.Context(), sessionID)
	}
}
