package templates

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// ClientRow is a single client entry in the staff directory.
type ClientRow struct {
	ID           string
	Name         string
	Email        string
	Locale       string
	OpenRequests int
}

// AccessLinkView shows a freshly issued client access link.
type AccessLinkView struct {
	ClientID  string
	URL       string
	ExpiresAt string
}

// ClientTable renders the staff client directory with per-client actions.
func ClientTable(rows []ClientRow, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		if len(rows) == 0 {
			b.WriteString(`<p class="empty-state">`)
			b.WriteString(templ.EscapeString(T(loc, "portal.clients.empty")))
			b.WriteString(`</p>`)
			_, err := io.WriteString(w, b.String())
			return err
		}
		b.WriteString(`<table class="table client-table"><thead><tr><th>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.clients.field_name")))
		b.WriteString(`</th><th>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.clients.field_email")))
		b.WriteString(`</th><th>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.clients.open_requests")))
		b.WriteString(`</th><th></th></tr></thead><tbody>`)
		for _, row := range rows {
			b.WriteString(`<tr><td>`)
			b.WriteString(templ.EscapeString(clientLabel(row.Name, row.ID)))
			b.WriteString(`</td><td>`)
			b.WriteString(templ.EscapeString(row.Email))
			b.WriteString(`</td><td>`)
			b.WriteString(strconv.Itoa(row.OpenRequests))
			b.WriteString(`</td><td class="client-actions"><a class="btn btn-ghost btn-sm" href="`)
			b.WriteString(templ.EscapeString(newRequestURL(row.ID)))
			b.WriteString(`">`)
			b.WriteString(templ.EscapeString(T(loc, "portal.requests.new")))
			b.WriteString(`</a><form method="post" action="`)
			b.WriteString(templ.EscapeString(routepath.AppClientAccessLink(row.ID)))
			b.WriteString(`"><button type="submit" class="btn btn-sm">`)
			b.WriteString(templ.EscapeString(T(loc, "portal.clients.access_link")))
			b.WriteString(`</button></form></td></tr>`)
		}
		b.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ClientForm renders the staff form that registers a new client.
func ClientForm(loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<form class="client-form" method="post" action="`)
		b.WriteString(routepath.ClientsPrefix)
		b.WriteString(`"><label class="form-field"><span class="form-label">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.clients.field_name")))
		b.WriteString(`</span><input class="input" type="text" name="name" required></label><label class="form-field"><span class="form-label">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.clients.field_email")))
		b.WriteString(`</span><input class="input" type="email" name="email" required></label><label class="form-field"><span class="form-label">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.clients.field_locale")))
		b.WriteString(`</span><select class="select" name="locale">`)
		for _, option := range LanguageOptions("", loc) {
			b.WriteString(`<option value="`)
			b.WriteString(templ.EscapeString(option.Tag))
			b.WriteString(`">`)
			b.WriteString(templ.EscapeString(option.Label))
			b.WriteString(`</option>`)
		}
		b.WriteString(`</select></label><button type="submit" class="btn btn-primary">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.clients.submit")))
		b.WriteString(`</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// AccessLinkPanel shows the one-time sign-in link issued for a client.
// The link is only rendered here; it is never stored in readable form.
func AccessLinkPanel(view AccessLinkView, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="access-link-panel alert alert-success"><p>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.clients.access_link_issued")))
		b.WriteString(`</p><code class="access-link-url">`)
		b.WriteString(templ.EscapeString(view.URL))
		b.WriteString(`</code><p class="access-link-expiry">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.clients.access_link_expires")))
		b.WriteString(` `)
		b.WriteString(templ.EscapeString(view.ExpiresAt))
		b.WriteString(`</p></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func newRequestURL(clientID string) string {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return routepath.AppRequestsNew
	}
	return routepath.AppRequestsNew + "?client=" + url.QueryEscape(clientID)
}
