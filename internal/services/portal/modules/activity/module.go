// Package activity serves the staff audit feed plus its live update
// socket.
package activity

import (
	"net/http"

	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// Module provides staff-only audit activity routes.
type Module struct {
	gateway ActivityGateway
}

// New returns an activity module without a gateway; reads fail closed
// until one is supplied.
func New() Module {
	return Module{}
}

// NewWithGateway returns an activity module with an explicit gateway
// dependency.
func NewWithGateway(gateway ActivityGateway) Module {
	return Module{gateway: gateway}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "activity" }

// Mount wires activity route handlers.
func (m Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	gateway := m.gateway
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	h := newHandlers(newService(gateway), deps)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.ActivityPrefix, Handler: mux}, nil
}
