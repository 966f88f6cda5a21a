package templates

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// AppErrorPageTitle returns the localized document title for an error page.
func AppErrorPageTitle(statusCode int, loc Localizer) string {
	return T(loc, appErrorTitleKey(statusCode))
}

// AppErrorState renders the in-shell error panel shown for broken pages.
func AppErrorState(statusCode int, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div id="app-error-state" class="app-error-state"><h2>`)
		b.WriteString(templ.EscapeString(T(loc, appErrorTitleKey(statusCode))))
		b.WriteString(`</h2><p>`)
		b.WriteString(templ.EscapeString(T(loc, appErrorBodyKey(statusCode))))
		b.WriteString(`</p><a class="btn btn-primary" href="`)
		b.WriteString(routepath.Root)
		b.WriteString(`">`)
		b.WriteString(templ.EscapeString(T(loc, "core.error.back_home")))
		b.WriteString(`</a></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func appErrorTitleKey(statusCode int) string {
	if statusCode == http.StatusNotFound {
		return "core.error.not_found.title"
	}
	return "core.error.server.title"
}

func appErrorBodyKey(statusCode int) string {
	if statusCode == http.StatusNotFound {
		return "core.error.not_found.body"
	}
	return "core.error.server.body"
}
