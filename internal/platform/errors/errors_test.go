package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeRequestTitleEmpty, "title is required")
	if !errors.Is(err, New(CodeRequestTitleEmpty, "other message")) {
		t.Fatal("expected errors with the same code to match")
	}
	if errors.Is(err, New(CodeRequestNotFound, "title is required")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeStorageUnavailable, "write request", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
}

func TestCodeOfUnwrapsChains(t *testing.T) {
	domain := New(CodeClientNotFound, "client not found")
	wrapped := fmt.Errorf("load client: %w", domain)
	if got := CodeOf(wrapped); got != CodeClientNotFound {
		t.Fatalf("code = %q, want %q", got, CodeClientNotFound)
	}
	if got := CodeOf(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("code = %q, want %q", got, CodeUnknown)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeRequestTitleEmpty, http.StatusBadRequest},
		{CodeGrantExpired, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeClientEmailTaken, http.StatusConflict},
		{CodeStaffEmailTaken, http.StatusConflict},
		{CodeRequestNotFound, http.StatusNotFound},
		{CodeMagicLinkUsed, http.StatusGone},
		{CodeStorageUnavailable, http.StatusServiceUnavailable},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("HTTPStatus(%q) = %d, want %d", tc.code, got, tc.want)
		}
	}
}
