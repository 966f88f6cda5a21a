package app

import (
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/requestmeta"
)

// Config captures the composition inputs for the portal root handler.
type Config struct {
	Dependencies        module.Dependencies
	PublicModules       []module.Module
	ProtectedModules    []module.Module
	RequestSchemePolicy requestmeta.SchemePolicy
}
