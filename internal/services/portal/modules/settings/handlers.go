package settings

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
	loc, lang := h.pageLocalizer(w, r)
	staffID := h.requestStaffID(r)
	clientID := h.requestClientID(r)
	if staffID == "" && clientID == "" {
		h.writeError(w, r, errNoPrincipal())
		return
	}

	viewer := h.deps.moduleDependencies().ViewerFor(r)
	parts := []templ.Component{
		templates.ProfileCard(viewer, loc),
		templates.LanguageForm(lang, loc),
	}
	if staffID != "" {
		members, err := h.service.listStaff(r.Context())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		rows := make([]templates.StaffRow, 0, len(members))
		for _, member := range members {
			rows = append(rows, templates.StaffRow{
				Name:     member.Name,
				Email:    member.Email,
				JoinedAt: formatTime(member.JoinedAt),
			})
		}
		parts = append(parts, templates.StaffDirectory(rows, loc))
	}

	header := &templates.AppMainHeader{Title: templates.T(loc, "portal.settings.title")}
	h.writePage(w, r, templates.T(loc, "portal.settings.title"), http.StatusOK, header, templates.Fragments(parts...))
}

func (h handlers) handleLanguage(w http.ResponseWriter, r *http.Request) {
	staffID := h.requestStaffID(r)
	clientID := h.requestClientID(r)
	if staffID == "" && clientID == "" {
		h.writeError(w, r, errNoPrincipal())
		return
	}
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeInvalidForm, "parse language form"))
		return
	}

	// Unknown tags quietly fall back to the default language.
	tag := webi18n.NormalizeTag(r.PostFormValue("lang"))
	webi18n.SetLanguageCookie(w, tag)

	flash.Write(w, r, flash.NoticeSuccess("portal.settings.language_saved"))
	httpx.WriteRedirect(w, r, routepath.SettingsPrefix)
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

func (h handlers) requestStaffID(r *http.Request) string {
	if r == nil || h.deps.resolveStaffID == nil {
		return ""
	}
	return strings.TrimSpace(h.deps.resolveStaffID(r))
}

func (h handlers) requestClientID(r *http.Request) string {
	if r == nil || h.deps.resolveClientID == nil {
		return ""
	}
	return strings.TrimSpace(h.deps.resolveClientID(r))
}

func errNoPrincipal() error {
	return apperrors.New(apperrors.CodeForbidden, "settings require a signed-in principal")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
