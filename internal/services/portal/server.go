// Package portal hosts the browser-facing document request service.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/ashmont/clientdocs/internal/platform/timeouts"
	docservice "github.com/ashmont/clientdocs/internal/services/documents/service"
	idservice "github.com/ashmont/clientdocs/internal/services/identity/service"
	"github.com/ashmont/clientdocs/internal/services/portal/access"
	"github.com/ashmont/clientdocs/internal/services/portal/app"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/modules"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/observability"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/requestmeta"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
	"github.com/ashmont/clientdocs/internal/services/portal/static"
)

// Config defines startup inputs for the portal service.
type Config struct {
	HTTPAddr string
	Logger   *log.Logger

	Documents *docservice.Service
	Identity  *idservice.Service

	AccessSigner   access.SignerConfig
	AccessVerifier access.VerifierConfig
	Replay         *access.ReplayStore

	// TrustForwardedProto accepts X-Forwarded-Proto when a TLS-terminating
	// proxy fronts the portal.
	TrustForwardedProto bool
}

// Server hosts the portal HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewHandler builds a root handler from the default module registry groups.
func NewHandler(cfg Config) (http.Handler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	principal := newPrincipalResolver(cfg)
	deps := module.Dependencies{
		Documents:       cfg.Documents,
		Identity:        cfg.Identity,
		AccessSigner:    cfg.AccessSigner,
		AccessVerifier:  cfg.AccessVerifier,
		Replay:          cfg.Replay,
		ResolveViewer:   principal.resolveViewer,
		ResolveLanguage: principal.resolveRequestLanguage,
		ResolveStaffID:  principal.resolveRequestStaffID,
		ResolveClientID: principal.resolveRequestClientID,
	}
	h, err := app.BuildRootHandler(app.Config{
		Dependencies:        deps,
		PublicModules:       modules.DefaultPublicModules(deps, logger),
		ProtectedModules:    modules.DefaultProtectedModules(deps),
		RequestSchemePolicy: requestmeta.SchemePolicy{TrustForwardedProto: cfg.TrustForwardedProto},
	}, principal.authRequired())
	if err != nil {
		return nil, err
	}
	rootMux := http.NewServeMux()
	rootMux.Handle(routepath.StaticPrefix, http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(static.FS))))
	rootMux.Handle("/", h)
	return httpx.Chain(rootMux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		withRequestPrincipalState(),
		observability.RequestLogger(logger),
	), nil
}

// withRequestPrincipalState gives each request a mutable principal cache that
// the resolver closures share for the rest of the request.
func withRequestPrincipalState() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r != nil {
				ctx := context.WithValue(r.Context(), requestPrincipalStateKey{}, &requestPrincipalState{})
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func principalStateOf(r *http.Request) *requestPrincipalState {
	if r == nil {
		return nil
	}
	return principalStateFromContext(r.Context())
}

func principalStateFromContext(ctx context.Context) *requestPrincipalState {
	if ctx == nil {
		return nil
	}
	state, _ := ctx.Value(requestPrincipalStateKey{}).(*requestPrincipalState)
	return state
}

// NewServer validates config and constructs a portal server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose portal handler: %w", err)
	}
	srv := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return &Server{httpAddr: httpAddr, httpServer: srv}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.httpAddr
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("portal server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- s.httpServer.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return s.drain()
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve portal http: %w", err)
	}
}

// drain stops the listener under the shared shutdown deadline.
func (s *Server) drain() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown portal http server: %w", err)
	}
	return nil
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
