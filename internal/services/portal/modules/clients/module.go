// Package clients serves the staff roster: the client directory, client
// registration, and one-time access link issuance.
package clients

import (
	"net/http"

	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// Module provides staff-only client roster routes.
type Module struct {
	gateway ClientGateway
}

// New returns a clients module without a gateway; roster calls fail closed
// until one is supplied.
func New() Module {
	return Module{}
}

// NewWithGateway returns a clients module with an explicit gateway
// dependency.
func NewWithGateway(gateway ClientGateway) Module {
	return Module{gateway: gateway}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "clients" }

// Mount wires client roster route handlers.
func (m Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	gateway := m.gateway
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	h := newHandlers(newService(gateway), deps)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.ClientsPrefix, Handler: mux}, nil
}
