package home

import (
	"net/http"

	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.AppPrefix+"{$}", h.handleIndex)

	mux.HandleFunc(http.MethodGet+" "+routepath.AppPrefix+"{rest...}", h.handleNotFound)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppPrefix+"{rest...}", h.handleNotFound)
}
