package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// LandingBody renders the public landing copy with the staff sign-in call
// to action. Clients arrive through emailed access links instead.
func LandingBody(loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="landing"><h1>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.landing.title")))
		b.WriteString(`</h1><p class="landing-body">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.landing.body")))
		b.WriteString(`</p><div class="landing-actions"><a class="btn btn-primary" href="`)
		b.WriteString(routepath.Login)
		b.WriteString(`">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.landing.cta_staff")))
		b.WriteString(`</a><p class="landing-client-hint">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.landing.cta_client")))
		b.WriteString(`</p></div></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// LoginForm renders the staff magic-link sign-in form.
func LoginForm(loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="login"><h1>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.login.heading")))
		b.WriteString(`</h1><form class="login-form" method="post" action="`)
		b.WriteString(routepath.Login)
		b.WriteString(`"><label class="form-field"><span class="form-label">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.login.email")))
		b.WriteString(`</span><input class="input" type="email" name="email" required autocomplete="email"></label><button type="submit" class="btn btn-primary">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.login.submit")))
		b.WriteString(`</button></form></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// MagicLinkSentNotice confirms a sign-in link was issued. The same notice
// renders whether or not the address is registered.
func MagicLinkSentNotice(loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="login-sent alert alert-info" role="status">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.login.link_sent")))
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
