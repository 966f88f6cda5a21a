package public

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/httpx"
	webi18n "github.com/ashmont/clientdocs/internal/services/portal/platform/i18n"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/pagerender"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/sessioncookie"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/weberror"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
	"github.com/ashmont/clientdocs/internal/services/portal/templates"
)

type handlers struct {
	service service
	deps    module.Dependencies
	logger  *log.Logger
}

func newHandlers(s service, deps module.Dependencies, logger *log.Logger) handlers {
	if logger == nil {
		logger = log.Default()
	}
	return handlers{service: s, deps: deps, logger: logger}
}

func (h handlers) handleLanding(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.pageLocalizer(w, r)
	title := templates.T(loc, "portal.landing.title")
	meta := templates.T(loc, "portal.landing.body")
	pagerender.WritePublicPage(w, r, title, meta, lang, http.StatusOK, templates.LandingBody(loc))
}

func (h handlers) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.pageLocalizer(w, r)
	title := templates.T(loc, "portal.login.title")
	pagerender.WritePublicPage(w, r, title, "", lang, http.StatusOK, templates.LoginForm(loc))
}

func (h handlers) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.pageLocalizer(w, r)
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.Wrap(apperrors.CodeInvalidForm, "parse login form", err))
		return
	}

	link, err := h.service.startMagicLink(r.Context(), r.PostFormValue("email"))
	if err != nil {
		// Unknown addresses get the same notice as known ones, so the
		// form never confirms which emails hold staff accounts.
		if apperrors.CodeOf(err) == apperrors.CodeStaffNotFound {
			h.writeLinkSent(w, r, loc, lang)
			return
		}
		h.writeError(w, r, err)
		return
	}

	// Mail delivery is out of scope; the sign-in URL lands in the server
	// log for the operator.
	h.logger.Printf("magic link for %s: %s (expires %s)", link.Email, link.URL, link.ExpiresAt.UTC().Format(time.RFC3339))
	h.writeLinkSent(w, r, loc, lang)
}

func (h handlers) handleMagic(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	session, err := h.service.completeMagicLink(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sessioncookie.Write(w, r, session.ID)
	httpx.WriteRedirect(w, r, routepath.RequestsPrefix)
}

func (h handlers) handleAccess(w http.ResponseWriter, r *http.Request) {
	grant := strings.TrimSpace(r.URL.Query().Get("grant"))
	session, err := h.service.redeemAccessGrant(r.Context(), grant)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sessioncookie.Write(w, r, session.ID)
	httpx.WriteRedirect(w, r, routepath.RequestsPrefix)
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	// The cookie clears even when the revoke fails.
	if sessionID, ok := sessioncookie.Read(r); ok {
		if err := h.service.revokeSession(r.Context(), sessionID); err != nil {
			h.logger.Printf("revoke session: %v", err)
		}
	}
	sessioncookie.Clear(w, r)
	httpx.WriteRedirect(w, r, routepath.Root)
}

func (h handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.WriteAppError(w, r, http.StatusNotFound, h.deps)
}

func (h handlers) writeLinkSent(w http.ResponseWriter, r *http.Request, loc templates.Localizer, lang string) {
	title := templates.T(loc, "portal.login.title")
	pagerender.WritePublicPage(w, r, title, "", lang, http.StatusOK, templates.MagicLinkSentNotice(loc))
}

func (h handlers) pageLocalizer(w http.ResponseWriter, r *http.Request) (templates.Localizer, string) {
	return webi18n.ResolveLocalizer(w, r, h.deps.ResolveLanguage)
}

func (h handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteModuleError(w, r, err, h.deps)
}
