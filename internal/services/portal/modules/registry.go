package modules

import (
	"log"

	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/modules/activity"
	"github.com/ashmont/clientdocs/internal/services/portal/modules/clients"
	"github.com/ashmont/clientdocs/internal/services/portal/modules/home"
	"github.com/ashmont/clientdocs/internal/services/portal/modules/public"
	"github.com/ashmont/clientdocs/internal/services/portal/modules/requests"
	"github.com/ashmont/clientdocs/internal/services/portal/modules/settings"
)

// DefaultPublicModules returns the public portal modules with their
// gateways wired to the shared services in deps.
func DefaultPublicModules(deps module.Dependencies, logger *log.Logger) []Module {
	return []Module{
		public.NewWithGateway(public.NewSignInGateway(deps), logger),
	}
}

// DefaultProtectedModules returns the authenticated portal modules with
// their gateways wired to the shared services in deps.
func DefaultProtectedModules(deps module.Dependencies) []Module {
	return []Module{
		home.New(),
		requests.NewWithGateway(requests.NewDocumentsGateway(deps)),
		clients.NewWithGateway(clients.NewRosterGateway(deps)),
		activity.NewWithGateway(activity.NewAuditGateway(deps)),
		settings.NewWithGateway(settings.NewIdentityGateway(deps)),
	}
}
