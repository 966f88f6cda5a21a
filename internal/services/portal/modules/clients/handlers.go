package clients

import (
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/flash"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	webi18n "github.com/ashmont/clientdocs/internal/services/portal/platform/i18n"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/pagerender"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/weberror"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
	"github.com/ashmont/clientdocs/internal/services/portal/templates"
)

type handlers struct {
	service service
	deps    runtimeDependencies
}

type runtimeDependencies struct {
	resolveLanguage module.ResolveLanguage
	resolveViewer   module.ResolveViewer
	resolveStaffID  module.ResolveStaffID
	resolveClientID module.ResolveClientID
}

func newRuntimeDependencies(deps module.Dependencies) runtimeDependencies {
	return runtimeDependencies{
		resolveLanguage: deps.ResolveLanguage,
		resolveViewer:   deps.ResolveViewer,
		resolveStaffID:  deps.ResolveStaffID,
		resolveClientID: deps.ResolveClientID,
	}
}

func (d runtimeDependencies) moduleDependencies() module.Dependencies {
	return module.Dependencies{
		ResolveViewer:   d.resolveViewer,
		ResolveLanguage: d.resolveLanguage,
		ResolveStaffID:  d.resolveStaffID,
		ResolveClientID: d.resolveClientID,
	}
}

func newHandlers(s service, deps module.Dependencies) handlers {
	return handlers{service: s, deps: newRuntimeDependencies(deps)}
}

func (h handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	loc, _ := h.pageLocalizer(w, r)
	if _, err := h.requireStaff(r); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeRoster(w, r, loc, nil)
}

func (h handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	staffID, err := h.requireStaff(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeInvalidForm, "parse client form"))
		return
	}

	if _, err := h.service.createClient(r.Context(), CreateClientInput{
		Name:      r.PostFormValue("name"),
		Email:     r.PostFormValue("email"),
		Locale:    r.PostFormValue("locale"),
		CreatedBy: staffID,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}

	flash.Write(w, r, flash.NoticeSuccess("portal.clients.created"))
	httpx.WriteRedirect(w, r, routepath.ClientsPrefix)
}

func (h handlers) handleAccessLinkRoute(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(r.PathValue("clientID"))
	if clientID == "" {
		h.handleNotFound(w, r)
		return
	}
	loc, _ := h.pageLocalizer(w, r)
	staffID, err := h.requireStaff(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	link, err := h.service.issueAccessLink(r.Context(), clientID, staffID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// The signed URL is displayed exactly once, on this response. It is
	// too large for the flash cookie and is never stored readable.
	panel := templates.AccessLinkPanel(templates.AccessLinkView{
		ClientID:  link.ClientID,
		URL:       link.URL,
		ExpiresAt: formatTime(link.ExpiresAt),
	}, loc)
	h.writeRoster(w, r, loc, panel)
}

func (h handlers) writeRoster(w http.ResponseWriter, r *http.Request, loc templates.Localizer, panel templ.Component) {
	entries, err := h.service.loadRoster(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rows := make([]templates.ClientRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, templates.ClientRow{
			ID:           entry.client.ID,
			Name:         entry.client.Name,
			Email:        entry.client.Email,
			Locale:       entry.client.Locale,
			OpenRequests: entry.openRequests,
		})
	}

	fragment := templates.Wrap(templates.ClientsLayout(), templates.Fragments(
		panel,
		templates.ClientTable(rows, loc),
		templates.ClientForm(loc),
	))
	header := &templates.AppMainHeader{Title: templates.T(loc, "portal.clients.title")}
	h.writePage(w, r, templates.T(loc, "portal.clients.title"), http.StatusOK, header, fragment)
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.WriteAppError(w, r, http.StatusNotFound, h.deps.moduleDependencies())
}

func (h handlers) writePage(w http.ResponseWriter, r *http.Request, title string, statusCode int, header *templates.AppMainHeader, fragment templ.Component) {
	if err := pagerender.WriteModulePage(w, r, h.deps.moduleDependencies(), pagerender.ModulePage{
		Title:      title,
		StatusCode: statusCode,
		Header:     header,
		Fragment:   fragment,
	}); err != nil {
		h.writeError(w, r, err)
	}
}

func (h handlers) pageLocalizer(w http.ResponseWriter, r *http.Request) (templates.Localizer, string) {
	loc, lang := webi18n.ResolveLocalizer(w, r, h.deps.resolveLanguage)
	return loc, lang
}

func (h handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteModuleError(w, r, err, h.deps.moduleDependencies())
}

func (h handlers) requireStaff(r *http.Request) (string, error) {
	if r == nil || h.deps.resolveStaffID == nil {
		return "", errRosterForbidden()
	}
	staffID := strings.TrimSpace(h.deps.resolveStaffID(r))
	if staffID == "" {
		return "", errRosterForbidden()
	}
	return staffID, nil
}

func errRosterForbidden() error {
	return apperrors.New(apperrors.CodeForbidden, "client roster is staff-only")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
