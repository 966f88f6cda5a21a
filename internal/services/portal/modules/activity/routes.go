package activity

import (
	"net/http"

	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.ActivityPrefix+"{$}", h.handleIndex)
	mux.HandleFunc(http.MethodPost+" "+routepath.ActivityPrefix+"{$}", httpx.MethodNotAllowed(http.MethodGet))

	mux.HandleFunc(http.MethodGet+" "+routepath.AppActivityWS, h.handleWS)

	mux.HandleFunc(http.MethodGet+" "+routepath.ActivityPrefix+"{rest...}", h.handleNotFound)
	mux.HandleFunc(http.MethodPost+" "+routepath.ActivityPrefix+"{rest...}", h.handleNotFound)
}
