package app

import (
	"fmt"
	"net/http"
	"strings"

	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/requestmeta"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/sessioncookie"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// ComposeInput carries module groups and shared composition contracts.
type ComposeInput struct {
	AuthRequired        func(*http.Request) bool
	Dependencies        module.Dependencies
	PublicModules       []module.Module
	ProtectedModules    []module.Module
	RequestSchemePolicy requestmeta.SchemePolicy
}

// Compose builds a root HTTP handler from module groups. Public modules
// mount bare; protected modules are wrapped with the auth and same-origin
// guards and must live under the app prefix.
func Compose(input ComposeInput) (http.Handler, error) {
	authenticated := input.AuthRequired
	if authenticated == nil {
		authenticated = func(*http.Request) bool { return false }
	}

	c := &composer{
		root:   http.NewServeMux(),
		deps:   input.Dependencies,
		owners: make(map[string]string),
	}
	for _, feature := range input.PublicModules {
		if feature == nil {
			return nil, fmt.Errorf("public module is nil")
		}
		if err := c.mountPublic(feature); err != nil {
			return nil, err
		}
	}
	guard := protectedWrap(authenticated, input.RequestSchemePolicy)
	for _, feature := range input.ProtectedModules {
		if feature == nil {
			return nil, fmt.Errorf("protected module is nil")
		}
		if err := c.mountProtected(feature, guard); err != nil {
			return nil, err
		}
	}
	return c.root, nil
}

// composer accumulates module mounts and tracks prefix ownership so a
// misconfigured registry fails at startup instead of shadowing routes.
type composer struct {
	root   *http.ServeMux
	deps   module.Dependencies
	owners map[string]string
}

func (c *composer) mountPublic(feature module.Module) error {
	mount, prefix, err := c.resolve(feature)
	if err != nil {
		return err
	}
	if underAppPrefix(prefix) {
		return fmt.Errorf("module %q has protected prefix %q in public group", feature.ID(), prefix)
	}
	return c.handle(feature, prefix, mount.Handler)
}

func (c *composer) mountProtected(feature module.Module, wrap func(http.Handler) http.Handler) error {
	mount, prefix, err := c.resolve(feature)
	if err != nil {
		return err
	}
	if !underAppPrefix(prefix) {
		return fmt.Errorf("module %q must mount under %s, got %q", feature.ID(), routepath.AppPrefix, prefix)
	}
	handler := wrap(mount.Handler)
	if err := c.handle(feature, prefix, handler); err != nil {
		return err
	}
	// The slashless alias keeps bare prefixes inside the auth wrap instead
	// of leaking a pre-auth redirect from the mux.
	if alias := strings.TrimSuffix(prefix, "/"); alias != "" {
		return c.handle(feature, alias, handler)
	}
	return nil
}

func (c *composer) handle(feature module.Module, prefix string, handler http.Handler) error {
	if owner, taken := c.owners[prefix]; taken {
		return fmt.Errorf("module %q duplicates prefix %q owned by module %q", feature.ID(), prefix, owner)
	}
	c.owners[prefix] = feature.ID()
	c.root.Handle(prefix, handler)
	return nil
}

func (c *composer) resolve(feature module.Module) (module.Mount, string, error) {
	mount, err := feature.Mount(c.deps)
	if err != nil {
		return module.Mount{}, "", fmt.Errorf("mount module %q: %w", feature.ID(), err)
	}
	if err := validatePrefix(mount.Prefix); err != nil {
		return module.Mount{}, "", fmt.Errorf("mount module %q has invalid prefix %q: %w", feature.ID(), mount.Prefix, err)
	}
	if mount.Handler == nil {
		return module.Mount{}, "", fmt.Errorf("mount module %q: handler is required", feature.ID())
	}
	return mount, mount.Prefix, nil
}

func underAppPrefix(prefix string) bool {
	return strings.HasPrefix(prefix, routepath.AppPrefix)
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("prefix is required")
	}
	if strings.TrimSpace(prefix) != prefix {
		return fmt.Errorf("prefix must not include surrounding whitespace")
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("prefix must begin with /")
	}
	if !strings.HasSuffix(prefix, "/") {
		return fmt.Errorf("prefix must end with /")
	}
	return nil
}

// protectedWrap layers auth outside the mutation guard; unauthenticated
// requests redirect to login before any origin check runs.
func protectedWrap(authenticated func(*http.Request) bool, policy requestmeta.SchemePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return requireAuth(authenticated, requireSameOriginOnMutation(policy, next))
	}
}

func requireAuth(authenticated func(*http.Request) bool, next http.Handler) http.Handler {
	if next == nil {
		return http.NotFoundHandler()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authenticated(r) {
			httpx.WriteRedirect(w, r, routepath.Login)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSameOriginOnMutation rejects cookie-authenticated mutations that
// carry no same-origin proof.
func requireSameOriginOnMutation(policy requestmeta.SchemePolicy, next http.Handler) http.Handler {
	if next == nil {
		next = http.NotFoundHandler()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if needsOriginProof(r) && !requestmeta.HasSameOriginProofWithPolicy(r, policy) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func needsOriginProof(r *http.Request) bool {
	if r == nil {
		return false
	}
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return false
	}
	_, hasSession := sessioncookie.Read(r)
	return hasSession
}
