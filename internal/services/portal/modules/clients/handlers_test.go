package clients

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/flash"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

func staffDependencies(staffID string) module.Dependencies {
	return module.Dependencies{
		ResolveStaffID: func(*http.Request) string { return staffID },
	}
}

func clientDependencies(clientID string) module.Dependencies {
	return module.Dependencies{
		ResolveClientID: func(*http.Request) string { return clientID },
	}
}

func postForm(t *testing.T, h handlers, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.handleCreate(rr, req)
	return rr
}

func TestHandleIndexRendersRosterForStaff(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{
		listClients: []Client{{ID: "c-1", Name: "Acme Ltda", Email: "ops@acme.example"}},
		counts:      map[string]int{"c-1": 2},
	}
	h := newHandlers(newService(gateway), staffDependencies("staff-1"))

	req := httptest.NewRequest(http.MethodGet, routepath.ClientsPrefix, nil)
	rr := httptest.NewRecorder()
	h.handleIndex(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Acme Ltda") {
		t.Fatalf("body missing client name: %s", body)
	}
	if !strings.Contains(body, "client-form") {
		t.Fatalf("body missing registration form: %s", body)
	}
	if !strings.Contains(body, routepath.AppClientAccessLink("c-1")) {
		t.Fatalf("body missing access link action: %s", body)
	}
}

func TestHandleIndexRequiresStaff(t *testing.T) {
	t.Parallel()

	h := newHandlers(newService(&recordingGateway{}), clientDependencies("c-1"))

	req := httptest.NewRequest(http.MethodGet, routepath.ClientsPrefix, nil)
	rr := httptest.NewRecorder()
	h.handleIndex(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestHandleCreateForwardsFormToGateway(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{}
	h := newHandlers(newService(gateway), staffDependencies("staff-1"))

	rr := postForm(t, h, routepath.ClientsPrefix, url.Values{
		"name":   {"Acme Ltda"},
		"email":  {"ops@acme.example"},
		"locale": {"pt-BR"},
	})

	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusFound)
	}
	if got := rr.Header().Get("Location"); got != routepath.ClientsPrefix {
		t.Fatalf("Location = %q, want %q", got, routepath.ClientsPrefix)
	}
	if gateway.createInput == nil {
		t.Fatalf("gateway never received the client input")
	}
	want := CreateClientInput{Name: "Acme Ltda", Email: "ops@acme.example", Locale: "pt-BR", CreatedBy: "staff-1"}
	if *gateway.createInput != want {
		t.Fatalf("input = %+v, want %+v", *gateway.createInput, want)
	}
}

func TestHandleCreateSetsFlashNotice(t *testing.T) {
	t.Parallel()

	h := newHandlers(newService(&recordingGateway{}), staffDependencies("staff-1"))

	rr := postForm(t, h, routepath.ClientsPrefix, url.Values{
		"name":  {"Acme Ltda"},
		"email": {"ops@acme.example"},
	})

	var found bool
	for _, header := range rr.Header().Values("Set-Cookie") {
		cookie, err := http.ParseSetCookie(header)
		if err != nil {
			continue
		}
		if cookie.Name == flash.CookieName && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no flash cookie set: %v", rr.Header().Values("Set-Cookie"))
	}
}

func TestHandleCreateRequiresStaff(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{}
	h := newHandlers(newService(gateway), clientDependencies("c-1"))

	rr := postForm(t, h, routepath.ClientsPrefix, url.Values{
		"name":  {"Acme Ltda"},
		"email": {"ops@acme.example"},
	})

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if gateway.createInput != nil {
		t.Fatalf("gateway received input from a non-staff principal")
	}
}

func TestHandleCreateReportsDuplicateEmail(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{
		createErr: apperrors.New(apperrors.CodeClientEmailTaken, "client email ops@acme.example is already registered"),
	}
	h := newHandlers(newService(gateway), staffDependencies("staff-1"))

	rr := postForm(t, h, routepath.ClientsPrefix, url.Values{
		"name":  {"Acme Ltda"},
		"email": {"ops@acme.example"},
	})

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
	if body := rr.Body.String(); !strings.Contains(body, "A client with this email already exists.") {
		t.Fatalf("body = %q, want duplicate email message", body)
	}
}

func TestHandleAccessLinkRendersPanelOnce(t *testing.T) {
	t.Parallel()

	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gateway := &recordingGateway{
		listClients: []Client{{ID: "c-1", Name: "Acme Ltda", Email: "ops@acme.example"}},
		counts:      map[string]int{},
		link:        AccessLink{ClientID: "c-1", URL: "https://portal.example/access?grant=abc.def", ExpiresAt: expires},
	}
	h := newHandlers(newService(gateway), staffDependencies("staff-9"))

	req := httptest.NewRequest(http.MethodPost, routepath.AppClientAccessLink("c-1"), nil)
	req.SetPathValue("clientID", "c-1")
	rr := httptest.NewRecorder()
	h.handleAccessLinkRoute(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if gateway.linkClient != "c-1" || gateway.linkActor != "staff-9" {
		t.Fatalf("gateway saw (%q, %q), want (c-1, staff-9)", gateway.linkClient, gateway.linkActor)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "https://portal.example/access?grant=abc.def") {
		t.Fatalf("body missing issued link: %s", body)
	}
	if !strings.Contains(body, "2026-03-01 12:00") {
		t.Fatalf("body missing expiry: %s", body)
	}
}

func TestHandleAccessLinkRequiresStaff(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{}
	h := newHandlers(newService(gateway), clientDependencies("c-1"))

	req := httptest.NewRequest(http.MethodPost, routepath.AppClientAccessLink("c-1"), nil)
	req.SetPathValue("clientID", "c-1")
	rr := httptest.NewRecorder()
	h.handleAccessLinkRoute(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if gateway.linkClient != "" {
		t.Fatalf("gateway issued a link for a non-staff principal")
	}
}

func TestHandleAccessLinkUnknownClient(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{linkErr: apperrors.New(apperrors.CodeClientNotFound, "client c-404 not found")}
	h := newHandlers(newService(gateway), staffDependencies("staff-1"))

	req := httptest.NewRequest(http.MethodPost, routepath.AppClientAccessLink("c-404"), nil)
	req.SetPathValue("clientID", "c-404")
	rr := httptest.NewRecorder()
	h.handleAccessLinkRoute(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
