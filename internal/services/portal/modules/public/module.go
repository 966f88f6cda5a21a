// Package public serves the unauthenticated surface: the landing page,
// staff magic-link sign-in, client access-grant redemption, sign-out, and
// the health probe.
package public

import (
	"log"
	"net/http"

	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// Module provides the public routes mounted at the site root.
type Module struct {
	gateway AuthGateway
	logger  *log.Logger
}

// New returns a public module without a gateway; sign-in flows fail closed
// until one is supplied.
func New() Module {
	return Module{}
}

// NewWithGateway returns a public module with an explicit gateway
// dependency. A nil logger falls back to the standard logger.
func NewWithGateway(gateway AuthGateway, logger *log.Logger) Module {
	return Module{gateway: gateway, logger: logger}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "public" }

// Mount wires the public route handlers.
func (m Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	gateway := m.gateway
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	h := newHandlers(newService(gateway), deps, m.logger)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.Root, Handler: mux}, nil
}
