package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	webi18n "github.com/ashmont/clientdocs/internal/services/portal/platform/i18n"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// htmxScriptURL pins the htmx release the portal shell loads.
const htmxScriptURL = "https://unpkg.com/htmx.org@1.9.12/dist/htmx.min.js"

// Viewer carries the signed-in principal's display state for the app shell.
type Viewer struct {
	DisplayName string
	Kind        string
	SignedIn    bool
}

// Viewer kinds recognized by the app shell.
const (
	ViewerKindStaff  = "staff"
	ViewerKindClient = "client"
)

// AppMainHeader describes the heading block rendered above a module page.
type AppMainHeader struct {
	Title    string
	Subtitle string
	Action   templ.Component
}

// AppMainLayoutOptions adjusts how the main content region is framed.
type AppMainLayoutOptions struct {
	Wide      bool
	MainClass string
}

// AppToast is a one-shot notice surfaced after a redirect.
type AppToast struct {
	Kind    string
	Message string
}

// PortalLayout groups the portal's routed pages. It adds no markup of its
// own, so nested content renders byte for byte.
func PortalLayout() templ.Component {
	return passthroughLayout()
}

// ClientsLayout groups client-scoped pages. Like PortalLayout it renders
// its children unchanged.
func ClientsLayout() templ.Component {
	return passthroughLayout()
}

func passthroughLayout() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		if children == nil {
			return nil
		}
		return children.Render(ctx, w)
	})
}

// AppMainContentWithLayout renders the main content region shared by full
// pages and HTMX fragment swaps. Children render after the header block.
func AppMainContentWithLayout(header *AppMainHeader, layout AppMainLayoutOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var open strings.Builder
		open.WriteString(`<section class="`)
		open.WriteString(templ.EscapeString(contentClass(layout)))
		open.WriteString(`">`)
		if header != nil {
			open.WriteString(`<header class="app-main-header"><div class="app-main-heading"><h1>`)
			open.WriteString(templ.EscapeString(header.Title))
			open.WriteString(`</h1>`)
			if subtitle := strings.TrimSpace(header.Subtitle); subtitle != "" {
				open.WriteString(`<p class="app-main-subtitle">`)
				open.WriteString(templ.EscapeString(subtitle))
				open.WriteString(`</p>`)
			}
			open.WriteString(`</div>`)
		}
		if _, err := io.WriteString(w, open.String()); err != nil {
			return err
		}
		if header != nil {
			if header.Action != nil {
				if err := header.Action.Render(ctx, w); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</header>`); err != nil {
				return err
			}
		}
		if children := templ.GetChildren(ctx); children != nil {
			if err := children.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

func contentClass(layout AppMainLayoutOptions) string {
	class := "app-main-content"
	if layout.Wide {
		class += " app-main-content-wide"
	}
	if extra := strings.TrimSpace(layout.MainClass); extra != "" {
		class += " " + extra
	}
	return class
}

// AppLayoutWithMainHeaderAndLayout renders the full signed-in document:
// navigation chrome, optional toast, and the shared main content region
// with the page fragment as children.
func AppLayoutWithMainHeaderAndLayout(title string, viewer Viewer, header *AppMainHeader, layout AppMainLayoutOptions, toast *AppToast, lang string, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var open strings.Builder
		writeDocumentHead(&open, title, "", lang)
		open.WriteString(`<body class="app-shell">`)
		writeAppNav(&open, viewer, loc)
		if toast != nil && strings.TrimSpace(toast.Message) != "" {
			open.WriteString(`<div id="app-toast" class="toast toast-top toast-end"><div class="alert `)
			open.WriteString(toastAlertClass(toast.Kind))
			open.WriteString(`" role="status">`)
			open.WriteString(templ.EscapeString(toast.Message))
			open.WriteString(`</div></div>`)
		}
		open.WriteString(`<main id="portal-main">`)
		if _, err := io.WriteString(w, open.String()); err != nil {
			return err
		}
		if err := AppMainContentWithLayout(header, layout).Render(ctx, w); err != nil {
			return err
		}
		var tail strings.Builder
		tail.WriteString(`</main><footer class="app-footer"><span>`)
		tail.WriteString(templ.EscapeString(T(loc, "core.app.tagline")))
		tail.WriteString(`</span></footer></body></html>`)
		_, err := io.WriteString(w, tail.String())
		return err
	})
}

// AuthLayout renders the public document shell used by unauthenticated
// pages. Children render inside a centered card, and the footer offers
// language switch links that keep the viewer on the current URL.
func AuthLayout(title, metaDesc, lang, path, query string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		tag := webi18n.NormalizeTag(lang)
		loc := webi18n.Printer(tag)
		var open strings.Builder
		writeDocumentHead(&open, title, metaDesc, tag.String())
		open.WriteString(`<body class="auth-shell"><main class="auth-main"><div class="auth-card card">`)
		if _, err := io.WriteString(w, open.String()); err != nil {
			return err
		}
		if children := templ.GetChildren(ctx); children != nil {
			if err := children.Render(ctx, w); err != nil {
				return err
			}
		}
		var tail strings.Builder
		tail.WriteString(`</div></main><footer class="auth-footer"><nav class="auth-languages">`)
		for _, option := range LanguageOptions(tag.String(), loc) {
			if option.Active {
				tail.WriteString(`<span class="auth-language-active">`)
				tail.WriteString(templ.EscapeString(option.Label))
				tail.WriteString(`</span>`)
				continue
			}
			tail.WriteString(`<a class="auth-language" href="`)
			tail.WriteString(templ.EscapeString(LanguageSwitchURL(path, query, option.Tag)))
			tail.WriteString(`">`)
			tail.WriteString(templ.EscapeString(option.Label))
			tail.WriteString(`</a>`)
		}
		tail.WriteString(`</nav></footer></body></html>`)
		_, err := io.WriteString(w, tail.String())
		return err
	})
}

func writeDocumentHead(b *strings.Builder, title, metaDesc, lang string) {
	b.WriteString(`<!doctype html><html lang="`)
	b.WriteString(templ.EscapeString(webi18n.NormalizeTag(lang).String()))
	b.WriteString(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
	if desc := strings.TrimSpace(metaDesc); desc != "" {
		b.WriteString(`<meta name="description" content="`)
		b.WriteString(templ.EscapeString(desc))
		b.WriteString(`">`)
	}
	b.WriteString(`<title>`)
	b.WriteString(templ.EscapeString(title))
	b.WriteString(`</title><link rel="stylesheet" href="`)
	b.WriteString(routepath.StaticPrefix)
	b.WriteString(`portal.css"><script src="`)
	b.WriteString(htmxScriptURL)
	b.WriteString(`" defer></script><script src="`)
	b.WriteString(routepath.StaticPrefix)
	b.WriteString(`app.js" defer></script></head>`)
}

func writeAppNav(b *strings.Builder, viewer Viewer, loc Localizer) {
	b.WriteString(`<header class="navbar app-nav"><div class="navbar-start"><a class="app-brand" href="`)
	b.WriteString(routepath.RequestsPrefix)
	b.WriteString(`">`)
	b.WriteString(templ.EscapeString(T(loc, "core.app.name")))
	b.WriteString(`</a></div><nav class="navbar-center app-nav-links">`)
	writeNavLink(b, routepath.RequestsPrefix, T(loc, "core.nav.requests"))
	if viewer.Kind == ViewerKindStaff {
		writeNavLink(b, routepath.ClientsPrefix, T(loc, "core.nav.clients"))
		writeNavLink(b, routepath.ActivityPrefix, T(loc, "core.nav.activity"))
	}
	writeNavLink(b, routepath.SettingsPrefix, T(loc, "core.nav.settings"))
	b.WriteString(`</nav><div class="navbar-end">`)
	if viewer.SignedIn {
		if name := strings.TrimSpace(viewer.DisplayName); name != "" {
			b.WriteString(`<span class="app-viewer-name">`)
			b.WriteString(templ.EscapeString(name))
			b.WriteString(`</span>`)
		}
		b.WriteString(`<form method="post" action="`)
		b.WriteString(routepath.Logout)
		b.WriteString(`"><button type="submit" class="btn btn-ghost btn-sm">`)
		b.WriteString(templ.EscapeString(T(loc, "core.nav.sign_out")))
		b.WriteString(`</button></form>`)
	} else {
		b.WriteString(`<a class="btn btn-primary btn-sm" href="`)
		b.WriteString(routepath.Login)
		b.WriteString(`">`)
		b.WriteString(templ.EscapeString(T(loc, "core.nav.sign_in")))
		b.WriteString(`</a>`)
	}
	b.WriteString(`</div></header>`)
}

func writeNavLink(b *strings.Builder, href, label string) {
	b.WriteString(`<a class="app-nav-link" href="`)
	b.WriteString(href)
	b.WriteString(`" hx-get="`)
	b.WriteString(href)
	b.WriteString(`" hx-target="#portal-main" hx-push-url="true">`)
	b.WriteString(templ.EscapeString(label))
	b.WriteString(`</a>`)
}

// LinkButton renders a button-styled in-app navigation link, used for main
// header actions.
func LinkButton(href, label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<a class="btn btn-primary btn-sm" href="`)
		b.WriteString(templ.EscapeString(href))
		b.WriteString(`" hx-get="`)
		b.WriteString(templ.EscapeString(href))
		b.WriteString(`" hx-target="#portal-main" hx-push-url="true">`)
		b.WriteString(templ.EscapeString(label))
		b.WriteString(`</a>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func toastAlertClass(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "success":
		return "alert-success"
	case "error":
		return "alert-error"
	default:
		return "alert-info"
	}
}
