package httpx

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
)

func traceMiddleware(trace *[]string, name string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*trace = append(*trace, name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChainRunsMiddlewareFirstToLast(t *testing.T) {
	t.Parallel()

	var trace []string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		trace = append(trace, "handler")
		w.WriteHeader(http.StatusNoContent)
	}), traceMiddleware(&trace, "outer"), traceMiddleware(&trace, "inner"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if got := strings.Join(trace, ","); got != "outer,inner,handler" {
		t.Fatalf("call order = %q, want %q", got, "outer,inner,handler")
	}
}

func TestChainWithoutHandlerServesNotFound(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Chain(nil, nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/no-route", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMethodGuards(t *testing.T) {
	t.Parallel()

	t.Run("RequireMethod rejects other methods", func(t *testing.T) {
		h := RequireMethod(http.MethodGet)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("RequireMethod passes matching method", func(t *testing.T) {
		h := RequireMethod(http.MethodGet)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
		}
	})

	t.Run("MethodNotAllowed advertises the allowed method", func(t *testing.T) {
		rr := httptest.NewRecorder()
		MethodNotAllowed(http.MethodPost).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/app/requests/req-1/status", nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
		}
		if got := rr.Header().Get("Allow"); got != http.MethodPost {
			t.Fatalf("Allow = %q, want %q", got, http.MethodPost)
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("mints an id when the caller sends none", func(t *testing.T) {
		h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(RequestIDHeader) == "" {
				t.Error("expected request header to carry a request id")
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if got := rr.Header().Get(RequestIDHeader); !strings.HasPrefix(got, "portal-") {
			t.Fatalf("request id = %q, want portal- prefix", got)
		}
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get(RequestIDHeader); got != "req-123" {
				t.Errorf("request id = %q, want %q", got, "req-123")
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if got := rr.Header().Get(RequestIDHeader); got != "req-123" {
			t.Fatalf("response request id = %q, want %q", got, "req-123")
		}
	})
}

func TestRecoverPanic(t *testing.T) {
	panicking := RecoverPanic()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	t.Run("converts the panic to a 500", func(t *testing.T) {
		rr := httptest.NewRecorder()
		panicking.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
		}
	})

	t.Run("logs method, path and request id", func(t *testing.T) {
		prevWriter := log.Writer()
		defer log.SetOutput(prevWriter)
		var buffer bytes.Buffer
		log.SetOutput(&buffer)

		req := httptest.NewRequest(http.MethodGet, "/panic", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		panicking.ServeHTTP(httptest.NewRecorder(), req)

		logLine := buffer.String()
		for _, marker := range []string{"panic recovered", "path=/panic", "request_id=req-123"} {
			if !strings.Contains(logLine, marker) {
				t.Fatalf("panic log missing marker %q: %q", marker, logLine)
			}
		}
	})
}

func TestBodyWriters(t *testing.T) {
	t.Parallel()

	t.Run("WriteJSON sets content type and encodes the payload", func(t *testing.T) {
		rr := httptest.NewRecorder()
		err := WriteJSON(rr, http.StatusOK, struct {
			Value string `json:"value"`
		}{Value: "ok"})
		if err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
		if got := rr.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
			t.Fatalf("content-type = %q", got)
		}
		if body := rr.Body.String(); !strings.Contains(body, "\"value\":\"ok\"") {
			t.Fatalf("body = %q, want encoded json", body)
		}
	})

	t.Run("WriteJSONError wraps the message in an error envelope", func(t *testing.T) {
		rr := httptest.NewRecorder()
		if err := WriteJSONError(rr, http.StatusBadRequest, "nope"); err != nil {
			t.Fatalf("WriteJSONError() error = %v", err)
		}
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
		if body := rr.Body.String(); !strings.Contains(body, "\"error\":\"nope\"") {
			t.Fatalf("body = %q, want error envelope", body)
		}
	})

	t.Run("WriteHTML sets content type and status", func(t *testing.T) {
		rr := httptest.NewRecorder()
		if err := WriteHTML(rr, http.StatusCreated, "<div>ok</div>"); err != nil {
			t.Fatalf("WriteHTML() error = %v", err)
		}
		if rr.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusCreated)
		}
		if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
			t.Fatalf("content-type = %q", got)
		}
	})
}

func TestWriteErrorStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"typed code maps to its status", apperrors.New(apperrors.CodeSessionExpired, "session expired"), http.StatusUnauthorized},
		{"untyped error maps to 500", errors.New("boom"), http.StatusInternalServerError},
		{"nil error replies 200", nil, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tc.err)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}

func TestRedirects(t *testing.T) {
	t.Parallel()

	t.Run("plain request gets a Location redirect", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteRedirect(rr, httptest.NewRequest(http.MethodPost, "/app/requests/", nil), "/app/requests/")
		if rr.Code != http.StatusFound {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
		}
		if got := rr.Header().Get("Location"); got != "/app/requests/" {
			t.Fatalf("Location = %q", got)
		}
		if got := rr.Header().Get("HX-Redirect"); got != "" {
			t.Fatalf("HX-Redirect = %q, want empty", got)
		}
	})

	t.Run("HTMX request gets an HX-Redirect header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/app/requests/", nil)
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		WriteRedirect(rr, req, "/app/requests/")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
		}
		if got := rr.Header().Get("HX-Redirect"); got != "/app/requests/" {
			t.Fatalf("HX-Redirect = %q", got)
		}
	})

	t.Run("nil request falls back to a Location redirect", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteRedirect(rr, nil, "/app/requests/")
		if rr.Code != http.StatusFound {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
		}
		if got := rr.Header().Get("Location"); got != "/app/requests/" {
			t.Fatalf("Location = %q", got)
		}
	})

	t.Run("WriteHXRedirect always sets the header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteHXRedirect(rr, "/app/requests/")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
		}
		if got := rr.Header().Get("HX-Redirect"); got != "/app/requests/" {
			t.Fatalf("HX-Redirect = %q", got)
		}
	})
}

func TestIsHTMXRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if IsHTMXRequest(req) {
		t.Fatal("expected plain request to be non-HTMX")
	}
	req.Header.Set("HX-Request", "true")
	if !IsHTMXRequest(req) {
		t.Fatal("expected HTMX request to be detected")
	}
	if IsHTMXRequest(nil) {
		t.Fatal("expected nil request to be non-HTMX")
	}
}

func TestRequestContext(t *testing.T) {
	t.Parallel()

	if RequestContext(nil) == nil {
		t.Fatal("expected background context for nil request")
	}

	type traceKey struct{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), traceKey{}, "v"))
	if got := RequestContext(req).Value(traceKey{}); got != "v" {
		t.Fatalf("context value = %v, want %q", got, "v")
	}
}

func TestNilWriterSafety(t *testing.T) {
	t.Parallel()

	if err := WriteJSON(nil, http.StatusOK, map[string]string{"ok": "true"}); err == nil {
		t.Fatal("expected WriteJSON(nil) error")
	}
	if err := WriteHTML(nil, http.StatusOK, "ok"); err == nil {
		t.Fatal("expected WriteHTML(nil) error")
	}
	WriteError(nil, errors.New("ignored"))
	WriteHXRedirect(nil, "/ignored")
	WriteRedirect(nil, nil, "/ignored")
}
