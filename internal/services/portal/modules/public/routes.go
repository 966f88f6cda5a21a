package public

import (
	"net/http"

	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}

	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.handleLanding)
	mux.HandleFunc(http.MethodGet+" "+routepath.Health, h.handleHealth)

	mux.HandleFunc(http.MethodGet+" "+routepath.Login, h.handleLoginForm)
	mux.HandleFunc(http.MethodPost+" "+routepath.Login, h.handleLoginSubmit)

	mux.HandleFunc(http.MethodGet+" "+routepath.Magic, h.handleMagic)
	mux.HandleFunc(http.MethodPost+" "+routepath.Magic, httpx.MethodNotAllowed(http.MethodGet))
	mux.HandleFunc(http.MethodGet+" "+routepath.Access, h.handleAccess)
	mux.HandleFunc(http.MethodPost+" "+routepath.Access, httpx.MethodNotAllowed(http.MethodGet))

	mux.HandleFunc(http.MethodPost+" "+routepath.Logout, h.handleLogout)
	mux.HandleFunc(http.MethodGet+" "+routepath.Logout, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{rest...}", h.handleNotFound)
	mux.HandleFunc(http.MethodPost+" "+routepath.Root+"{rest...}", h.handleNotFound)
}
