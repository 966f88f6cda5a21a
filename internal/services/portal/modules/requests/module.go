// Package requests serves the document-request pages: listings, the
// new-request form, detail views, status moderation, and fulfilment
// uploads.
package requests

import (
	"net/http"

	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// Module provides authenticated document-request routes.
type Module struct {
	gateway RequestGateway
}

// New returns a requests module without a gateway; requests fail closed
// until one is supplied.
func New() Module {
	return Module{}
}

// NewWithGateway returns a requests module with an explicit gateway
// dependency.
func NewWithGateway(gateway RequestGateway) Module {
	return Module{gateway: gateway}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "requests" }

// Mount wires request route handlers.
func (m Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	gateway := m.gateway
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	h := newHandlers(newService(gateway), deps)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.RequestsPrefix, Handler: mux}, nil
}
