// Package modules registers the concrete portal modules and re-exports the
// module contract types the registry hands out.
package modules

import module "github.com/ashmont/clientdocs/internal/services/portal/module"

// Aliases keep registry call sites free of the nested module import.
type (
	Dependencies = module.Dependencies
	Module       = module.Module
	Mount        = module.Mount
)
