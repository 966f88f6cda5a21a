// Package weberror renders shared app-shell error responses for portal
// modules.
package weberror

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	webi18n "github.com/ashmont/clientdocs/internal/services/portal/platform/i18n"
	"github.com/ashmont/clientdocs/internal/services/portal/templates"
)

// ShouldRenderAppError reports whether status should use app error-page UX.
func ShouldRenderAppError(statusCode int) bool {
	return statusCode == http.StatusNotFound || statusCode >= http.StatusInternalServerError
}

// PublicMessage resolves a user-safe localized error message. Errors
// without a recognized domain code localize as the unknown-error message,
// so internals never leak into responses.
func PublicMessage(lang string, err error) string {
	if err == nil {
		return ""
	}
	if message := strings.TrimSpace(webi18n.LocalizeError(lang, err)); message != "" {
		return message
	}
	statusCode := apperrors.HTTPStatusOf(err)
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	return http.StatusText(statusCode)
}

// WriteAppError writes a localized app-shell error response. HTMX requests
// receive only the main content region.
func WriteAppError(w http.ResponseWriter, r *http.Request, statusCode int, deps module.Dependencies) {
	if w == nil {
		return
	}
	if !ShouldRenderAppError(statusCode) {
		statusCode = http.StatusInternalServerError
	}

	loc, lang := webi18n.ResolveLocalizer(w, r, deps.ResolveLanguage)
	fragment := templates.AppErrorState(statusCode, loc)

	var page templ.Component
	if httpx.IsHTMXRequest(r) {
		page = templates.AppMainContentWithLayout(nil, templates.AppMainLayoutOptions{})
	} else {
		title := templates.AppErrorPageTitle(statusCode, loc)
		page = templates.AppLayoutWithMainHeaderAndLayout(title, deps.ViewerFor(r), nil, templates.AppMainLayoutOptions{}, nil, lang, loc)
	}

	var buf bytes.Buffer
	if err := page.Render(templ.WithChildren(httpx.RequestContext(r), fragment), &buf); err != nil {
		http.Error(w, PublicMessage(lang, err), statusCode)
		return
	}
	_ = httpx.WriteHTML(w, statusCode, buf.String())
}

// WriteModuleError writes a module-safe localized error response. Domain
// errors that map to 404 or 5xx render the app error page; everything else
// gets a plain localized message with the mapped status.
func WriteModuleError(w http.ResponseWriter, r *http.Request, err error, deps module.Dependencies) {
	if w == nil {
		return
	}
	statusCode := apperrors.HTTPStatusOf(err)
	if ShouldRenderAppError(statusCode) {
		WriteAppError(w, r, statusCode, deps)
		return
	}
	_, lang := webi18n.ResolveLocalizer(w, r, deps.ResolveLanguage)
	http.Error(w, PublicMessage(lang, err), statusCode)
}
