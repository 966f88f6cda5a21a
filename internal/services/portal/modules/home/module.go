// Package home routes the app root: the index redirects to the requests
// page and unknown app paths render the shared not-found page.
package home

import (
	"net/http"

	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// Module provides the app root routes.
type Module struct{}

// New returns the home module.
func New() Module {
	return Module{}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "home" }

// Mount wires app root route handlers.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(deps))
	return module.Mount{Prefix: routepath.AppPrefix, Handler: mux}, nil
}
