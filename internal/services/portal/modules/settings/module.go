// Package settings serves the shared preferences page: language selection,
// the signed-in profile card, and the staff directory.
package settings

import (
	"net/http"

	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// Module provides authenticated settings routes.
type Module struct {
	gateway SettingsGateway
}

// New returns a settings module without a gateway; directory reads fail
// closed until one is supplied.
func New() Module {
	return Module{}
}

// NewWithGateway returns a settings module with an explicit gateway
// dependency.
func NewWithGateway(gateway SettingsGateway) Module {
	return Module{gateway: gateway}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "settings" }

// Mount wires settings route handlers.
func (m Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	gateway := m.gateway
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	h := newHandlers(newService(gateway), deps)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.SettingsPrefix, Handler: mux}, nil
}
