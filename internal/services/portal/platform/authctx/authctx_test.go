package authctx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashmont/clientdocs/internal/services/portal/platform/sessioncookie"
)

func requestWithSession(value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/app/requests/", nil)
	if value != "" {
		req.AddCookie(&http.Cookie{Name: sessioncookie.Name, Value: value})
	}
	return req
}

func TestCookieSessionAuth(t *testing.T) {
	t.Parallel()

	auth := CookieSessionAuth()

	tests := []struct {
		name string
		req  *http.Request
		want bool
	}{
		{"nil request", nil, false},
		{"no cookie", requestWithSession(""), false},
		{"session cookie", requestWithSession("session-1"), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := auth(tc.req); got != tc.want {
				t.Fatalf("auth = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidatedSessionAuth(t *testing.T) {
	t.Parallel()

	knows := func(_ context.Context, sid string) bool { return sid == "session-1" }
	always := func(context.Context, string) bool { return true }

	headerIdentity := requestWithSession("")
	headerIdentity.Header.Set("X-Portal-User", "staff-1")

	tests := []struct {
		name     string
		validate func(context.Context, string) bool
		req      *http.Request
		want     bool
	}{
		{"known session passes", knows, requestWithSession("session-1"), true},
		{"unknown session is rejected", knows, requestWithSession("missing"), false},
		{"header identity never passes", always, headerIdentity, false},
		{"nil validator fails closed", nil, requestWithSession("session-1"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidatedSessionAuth(tc.validate)(tc.req); got != tc.want {
				t.Fatalf("auth = %v, want %v", got, tc.want)
			}
		})
	}
}
