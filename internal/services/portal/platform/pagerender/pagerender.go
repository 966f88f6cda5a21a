// Package pagerender centralizes module page rendering behavior.
package pagerender

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	flashnotice "github.com/ashmont/clientdocs/internal/services/portal/platform/flash"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	webi18n "github.com/ashmont/clientdocs/internal/services/portal/platform/i18n"
	"github.com/ashmont/clientdocs/internal/services/portal/templates"
)

// ModulePage describes a module page response for both full-page and HTMX
// fragment flows.
type ModulePage struct {
	Title      string
	StatusCode int
	Header     *templates.AppMainHeader
	Layout     templates.AppMainLayoutOptions
	Fragment   templ.Component
}

// WriteModulePage writes a module page using the shared app-shell
// rendering contract. HTMX requests receive only the main content region
// and leave any pending flash notice in place for the next full render.
func WriteModulePage(w http.ResponseWriter, r *http.Request, deps module.Dependencies, page ModulePage) error {
	if w == nil {
		return nil
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	fragment := page.Fragment
	if fragment == nil {
		fragment = templ.NopComponent
	}

	loc, lang := webi18n.ResolveLocalizer(w, r, deps.ResolveLanguage)
	ctx := httpx.RequestContext(r)

	if httpx.IsHTMXRequest(r) {
		main := templates.AppMainContentWithLayout(page.Header, page.Layout)
		html, err := renderWithChildren(ctx, main, fragment)
		if err != nil {
			return err
		}
		return httpx.WriteHTML(w, statusCode, html)
	}

	toast := resolveFlashToast(w, r, loc)
	shell := templates.AppLayoutWithMainHeaderAndLayout(page.Title, deps.ViewerFor(r), page.Header, page.Layout, toast, lang, loc)
	html, err := renderWithChildren(ctx, shell, fragment)
	if err != nil {
		return err
	}
	return httpx.WriteHTML(w, statusCode, html)
}

func renderWithChildren(ctx context.Context, component, children templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := component.Render(templ.WithChildren(ctx, children), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func resolveFlashToast(w http.ResponseWriter, r *http.Request, loc webi18n.Localizer) *templates.AppToast {
	notice, ok := flashnotice.ReadAndClear(w, r)
	if !ok {
		return nil
	}
	// Notices carry catalog keys; fall back to the raw key so the toast
	// never renders blank when the catalog misses one.
	message := strings.TrimSpace(loc.Sprintf(notice.Key))
	if message == "" {
		if message = strings.TrimSpace(notice.Key); message == "" {
			return nil
		}
	}
	return &templates.AppToast{Kind: string(notice.Kind), Message: message}
}

// WritePublicPage writes a public page using the auth layout.
func WritePublicPage(w http.ResponseWriter, r *http.Request, title, metaDesc, lang string, statusCode int, body templ.Component) {
	if w == nil {
		return
	}
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	if body == nil {
		body = templ.NopComponent
	}

	var path, query string
	if r != nil && r.URL != nil {
		path, query = r.URL.Path, r.URL.RawQuery
	}
	page := templates.AuthLayout(title, metaDesc, lang, path, query)
	html, err := renderWithChildren(httpx.RequestContext(r), page, body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	_ = httpx.WriteHTML(w, statusCode, html)
}
