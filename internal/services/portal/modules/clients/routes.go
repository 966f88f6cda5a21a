package clients

import (
	"net/http"

	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.ClientsPrefix+"{$}", h.handleIndex)
	mux.HandleFunc(http.MethodPost+" "+routepath.ClientsPrefix+"{$}", h.handleCreate)

	mux.HandleFunc(http.MethodPost+" "+routepath.AppClientAccessLinkPattern, h.handleAccessLinkRoute)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppClientAccessLinkPattern, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc(http.MethodGet+" "+routepath.ClientsPrefix+"{clientID}/{rest...}", h.handleNotFound)
	mux.HandleFunc(http.MethodPost+" "+routepath.ClientsPrefix+"{clientID}/{rest...}", h.handleNotFound)
}
