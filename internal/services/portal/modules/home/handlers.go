package home

import (
	"net/http"

	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/weberror"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

type handlers struct {
	deps module.Dependencies
}

func newHandlers(deps module.Dependencies) handlers {
	return handlers{deps: deps}
}

// handleIndex sends signed-in visitors to the requests page, the app's
// working surface.
func (h handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	httpx.WriteRedirect(w, r, routepath.RequestsPrefix)
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.WriteAppError(w, r, http.StatusNotFound, h.deps)
}
