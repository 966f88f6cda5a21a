package requests

import (
	"net/http"

	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.RequestsPrefix+"{$}", h.handleIndex)
	mux.HandleFunc(http.MethodPost+" "+routepath.RequestsPrefix+"{$}", h.handleCreate)

	mux.HandleFunc(http.MethodGet+" "+routepath.AppRequestsNew, h.handleNewForm)

	mux.HandleFunc(http.MethodGet+" "+routepath.AppRequestPattern, h.handleDetailRoute)

	mux.HandleFunc(http.MethodPost+" "+routepath.AppRequestStatusPattern, h.handleStatusRoute)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppRequestStatusPattern, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc(http.MethodPost+" "+routepath.AppRequestAttachmentPattern, h.handleAttachmentRoute)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppRequestAttachmentPattern, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc(http.MethodGet+" "+routepath.RequestsPrefix+"{requestID}/{rest...}", h.handleNotFound)
	mux.HandleFunc(http.MethodPost+" "+routepath.RequestsPrefix+"{requestID}/{rest...}", h.handleNotFound)
}
