package settings

import (
	"net/http"

	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.SettingsPrefix+"{$}", h.handleIndex)
	mux.HandleFunc(http.MethodPost+" "+routepath.SettingsPrefix+"{$}", httpx.MethodNotAllowed(http.MethodGet))

	mux.HandleFunc(http.MethodPost+" "+routepath.AppSettingsLanguage, h.handleLanguage)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppSettingsLanguage, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc(http.MethodGet+" "+routepath.SettingsPrefix+"{rest...}", h.handleNotFound)
	mux.HandleFunc(http.MethodPost+" "+routepath.SettingsPrefix+"{rest...}", h.handleNotFound)
}
