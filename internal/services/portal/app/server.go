// Package app composes portal feature modules into one root handler.
package app

import (
	"net/http"
)

// BuildRootHandler composes a root mux using the configured module groups.
func BuildRootHandler(cfg Config, authRequired func(*http.Request) bool) (http.Handler, error) {
	return Compose(ComposeInput{
		Dependencies:        cfg.Dependencies,
		AuthRequired:        authRequired,
		PublicModules:       cfg.PublicModules,
		ProtectedModules:    cfg.ProtectedModules,
		RequestSchemePolicy: cfg.RequestSchemePolicy,
	})
}
