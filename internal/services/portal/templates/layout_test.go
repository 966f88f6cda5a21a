package templates

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

func rawComponent(markup string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, markup)
		return err
	})
}

func TestPortalLayoutRendersChildrenUnchanged(t *testing.T) {
	t.Parallel()

	child := `<p data-marker="x">hello &amp; goodbye</p>`
	got := render(t, Wrap(PortalLayout(), rawComponent(child)))
	if got != child {
		t.Fatalf("PortalLayout output = %q, want %q", got, child)
	}
}

func TestClientsLayoutRendersChildrenUnchanged(t *testing.T) {
	t.Parallel()

	child := `<form><input name="title" required></form>`
	got := render(t, Wrap(ClientsLayout(), rawComponent(child)))
	if got != child {
		t.Fatalf("ClientsLayout output = %q, want %q", got, child)
	}
}

func TestNestedLayoutsStayTransparent(t *testing.T) {
	t.Parallel()

	child := render(t, CreateRequestForm("c-123", englishLocalizer()))
	wrapped := render(t, Wrap(PortalLayout(), Wrap(ClientsLayout(), CreateRequestForm("c-123", englishLocalizer()))))
	if wrapped != child {
		t.Fatalf("nested layouts changed output:\n got %q\nwant %q", wrapped, child)
	}
}

func TestPortalLayoutWithoutChildrenRendersNothing(t *testing.T) {
	t.Parallel()

	got := render(t, PortalLayout())
	if got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestAppMainContentRendersHeaderAndChildren(t *testing.T) {
	t.Parallel()

	header := &AppMainHeader{Title: "Document requests", Subtitle: "Everything outstanding"}
	content := Wrap(AppMainContentWithLayout(header, AppMainLayoutOptions{Wide: true}), rawComponent(`<p id="inner">body</p>`))
	got := render(t, content)
	if !strings.Contains(got, `class="app-main-content app-main-content-wide"`) {
		t.Fatalf("expected wide content class, got %q", got)
	}
	if !strings.Contains(got, "<h1>Document requests</h1>") {
		t.Fatalf("expected header title, got %q", got)
	}
	if !strings.Contains(got, "Everything outstanding") {
		t.Fatalf("expected subtitle, got %q", got)
	}
	if !strings.Contains(got, `<p id="inner">body</p>`) {
		t.Fatalf("expected children, got %q", got)
	}
}

func TestAppMainContentRendersHeaderAction(t *testing.T) {
	t.Parallel()

	header := &AppMainHeader{
		Title:  "Clients",
		Action: rawComponent(`<a id="new-client">Add</a>`),
	}
	got := render(t, AppMainContentWithLayout(header, AppMainLayoutOptions{}))
	if !strings.Contains(got, `<a id="new-client">Add</a>`) {
		t.Fatalf("expected header action, got %q", got)
	}
}

func TestAppLayoutNavDependsOnViewerKind(t *testing.T) {
	t.Parallel()

	staff := Viewer{DisplayName: "Dana", Kind: ViewerKindStaff, SignedIn: true}
	got := render(t, Wrap(AppLayoutWithMainHeaderAndLayout("Requests", staff, nil, AppMainLayoutOptions{}, nil, "en-US", englishLocalizer()), rawComponent("<p>x</p>")))
	for _, want := range []string{
		`href="` + routepath.ClientsPrefix + `"`,
		`href="` + routepath.ActivityPrefix + `"`,
		`href="` + routepath.SettingsPrefix + `"`,
		`lang="en-US"`,
		">Dana</span>",
		`action="` + routepath.Logout + `"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("staff shell missing %q in %q", want, got)
		}
	}

	client := Viewer{DisplayName: "Acme Ltd", Kind: ViewerKindClient, SignedIn: true}
	got = render(t, Wrap(AppLayoutWithMainHeaderAndLayout("Requests", client, nil, AppMainLayoutOptions{}, nil, "en-US", englishLocalizer()), rawComponent("<p>x</p>")))
	if strings.Contains(got, `href="`+routepath.ClientsPrefix+`"`) {
		t.Fatalf("client shell must not link the client directory, got %q", got)
	}
	if strings.Contains(got, `href="`+routepath.ActivityPrefix+`"`) {
		t.Fatalf("client shell must not link the activity feed, got %q", got)
	}
}

func TestAppLayoutRendersToast(t *testing.T) {
	t.Parallel()

	toast := &AppToast{Kind: "success", Message: "Document request created."}
	viewer := Viewer{DisplayName: "Dana", Kind: ViewerKindStaff, SignedIn: true}
	got := render(t, Wrap(AppLayoutWithMainHeaderAndLayout("Requests", viewer, nil, AppMainLayoutOptions{}, toast, "en-US", englishLocalizer()), rawComponent("")))
	if !strings.Contains(got, `alert alert-success`) {
		t.Fatalf("expected success toast, got %q", got)
	}
	if !strings.Contains(got, "Document request created.") {
		t.Fatalf("expected toast message, got %q", got)
	}

	got = render(t, Wrap(AppLayoutWithMainHeaderAndLayout("Requests", viewer, nil, AppMainLayoutOptions{}, nil, "en-US", englishLocalizer()), rawComponent("")))
	if strings.Contains(got, "toast") {
		t.Fatalf("expected no toast without a notice, got %q", got)
	}
}

func TestAppLayoutLocalizesChrome(t *testing.T) {
	t.Parallel()

	viewer := Viewer{DisplayName: "Dana", Kind: ViewerKindStaff, SignedIn: true}
	got := render(t, Wrap(AppLayoutWithMainHeaderAndLayout("Solicitações", viewer, nil, AppMainLayoutOptions{}, nil, "pt-BR", localizerFor("pt-BR")), rawComponent("")))
	if !strings.Contains(got, `lang="pt-BR"`) {
		t.Fatalf("expected pt-BR lang attribute, got %q", got)
	}
	if !strings.Contains(got, ">Solicitações</a>") {
		t.Fatalf("expected localized requests nav label, got %q", got)
	}
	if !strings.Contains(got, ">Sair</button>") {
		t.Fatalf("expected localized sign out, got %q", got)
	}
}

func TestAuthLayoutRendersChildrenAndLanguageLinks(t *testing.T) {
	t.Parallel()

	got := render(t, Wrap(AuthLayout("Sign in", "Portal sign in", "en-US", routepath.Login, "next=%2Fapp%2F"), rawComponent(`<p id="login-body">x</p>`)))
	for _, want := range []string{
		`<p id="login-body">x</p>`,
		`<meta name="description" content="Portal sign in">`,
		`<title>Sign in</title>`,
		`<span class="auth-language-active">English</span>`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("auth layout missing %q in %q", want, got)
		}
	}
	if !strings.Contains(got, "Português (Brasil)") {
		t.Fatalf("expected pt-BR switch link, got %q", got)
	}
	if !strings.Contains(got, "lang=pt-BR") {
		t.Fatalf("expected lang param in switch URL, got %q", got)
	}
}

func TestDocumentHeadLoadsStaticAssets(t *testing.T) {
	t.Parallel()

	got := render(t, Wrap(AuthLayout("Sign in", "", "en-US", routepath.Login, ""), rawComponent("")))
	if !strings.Contains(got, `href="`+routepath.StaticPrefix+`portal.css"`) {
		t.Fatalf("expected stylesheet link, got %q", got)
	}
	if !strings.Contains(got, htmxScriptURL) {
		t.Fatalf("expected htmx script, got %q", got)
	}
	if !strings.Contains(got, `src="`+routepath.StaticPrefix+`app.js"`) {
		t.Fatalf("expected app script, got %q", got)
	}
}
