// Package httpx carries the small HTTP toolkit shared by portal handlers:
// middleware chaining, request correlation, panic recovery, and typed
// response writers.
package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
)

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "X-Request-ID"

const (
	headerHXRequest  = "HX-Request"
	headerHXRedirect = "HX-Redirect"
)

// Middleware wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps handler so that the first middleware listed is the outermost.
func Chain(handler http.Handler, middleware ...Middleware) http.Handler {
	wrapped := orNotFound(handler)
	for i := len(middleware); i > 0; i-- {
		if mw := middleware[i-1]; mw != nil {
			wrapped = mw(wrapped)
		}
	}
	return wrapped
}

func orNotFound(h http.Handler) http.Handler {
	if h == nil {
		return http.NotFoundHandler()
	}
	return h
}

// MethodNotAllowed replies 405 and advertises the allowed methods.
func MethodNotAllowed(allow string) http.HandlerFunc {
	allow = strings.TrimSpace(allow)
	return func(w http.ResponseWriter, _ *http.Request) {
		if w == nil {
			return
		}
		w.Header().Set("Allow", allow)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// RequireMethod replies 405 to any request whose method differs.
func RequireMethod(method string) Middleware {
	return func(next http.Handler) http.Handler {
		next = orNotFound(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.Header().Set("Allow", method)
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var ridSeq atomic.Uint64

func nextRequestID() string {
	return fmt.Sprintf("portal-%d-%d", time.Now().UnixNano(), ridSeq.Add(1))
}

// RequestID assigns a correlation id to requests that arrive without one and
// echoes the id on the response.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		next = orNotFound(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(RequestIDHeader)
			if rid == "" {
				rid = nextRequestID()
				r.Header.Set(RequestIDHeader, rid)
			}
			w.Header().Set(RequestIDHeader, rid)
			next.ServeHTTP(w, r)
		})
	}
}

// RecoverPanic turns handler panics into 500 responses and logs the stack.
func RecoverPanic() Middleware {
	return func(next http.Handler) http.Handler {
		next = orNotFound(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				logPanic(r, recovered)
				w.WriteHeader(http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func logPanic(r *http.Request, recovered any) {
	method, path, rid := "-", "-", "-"
	if r != nil {
		method = strings.TrimSpace(r.Method)
		path = strings.TrimSpace(r.URL.Path)
		if v := strings.TrimSpace(r.Header.Get(RequestIDHeader)); v != "" {
			rid = v
		}
	}
	log.Printf(
		"panic recovered method=%s path=%s request_id=%s panic=%v stack=%s",
		method,
		path,
		rid,
		recovered,
		strings.TrimSpace(string(debug.Stack())),
	)
}

// RequestContext returns the request context, or context.Background for a
// nil request.
func RequestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}

// IsHTMXRequest reports whether the request was issued by the HTMX runtime.
func IsHTMXRequest(r *http.Request) bool {
	return r != nil && r.Header.Get(headerHXRequest) == "true"
}

// WriteJSON encodes payload as the JSON response body.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return fmt.Errorf("nil response writer")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// WriteJSONError wraps message in the standard JSON error envelope.
func WriteJSONError(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, map[string]any{"error": message})
}

// WriteError replies with the HTTP status mapped from the error code.
func WriteError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Error(w, err.Error(), apperrors.HTTPStatusOf(err))
}

// WriteHTML writes payload as an HTML response body.
func WriteHTML(w http.ResponseWriter, status int, payload string) error {
	if w == nil {
		return fmt.Errorf("nil response writer")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := io.WriteString(w, payload)
	return err
}

// WriteHXRedirect asks the HTMX runtime to navigate to location.
func WriteHXRedirect(w http.ResponseWriter, location string) {
	if w == nil {
		return
	}
	w.Header().Set(headerHXRedirect, location)
	w.WriteHeader(http.StatusOK)
}

// WriteRedirect redirects the browser, using HX-Redirect for HTMX requests
// so the navigation happens client side.
func WriteRedirect(w http.ResponseWriter, r *http.Request, location string) {
	if w == nil {
		return
	}
	switch {
	case IsHTMXRequest(r):
		WriteHXRedirect(w, location)
	case r == nil:
		w.Header().Set("Location", location)
		w.WriteHeader(http.StatusFound)
	default:
		http.Redirect(w, r, location, http.StatusFound)
	}
}
