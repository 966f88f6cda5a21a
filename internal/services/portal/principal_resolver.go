package portal

import (
	"context"
	"net/http"
	"strings"
	"sync"

	docservice "github.com/ashmont/clientdocs/internal/services/documents/service"
	idservice "github.com/ashmont/clientdocs/internal/services/identity/service"
	idstorage "github.com/ashmont/clientdocs/internal/services/identity/storage"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/authctx"
	webi18n "github.com/ashmont/clientdocs/internal/services/portal/platform/i18n"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/sessioncookie"
	"github.com/ashmont/clientdocs/internal/services/portal/templates"
)

// sessionPrincipal identifies who holds the session cookie. Exactly one of
// staffID or clientID is set for a signed-in request.
type sessionPrincipal struct {
	kind     string
	staffID  string
	clientID string
}

type requestPrincipalState struct {
	principalOnce sync.Once
	principal     sessionPrincipal
	viewerOnce    sync.Once
	viewer        module.Viewer
	languageOnce  sync.Once
	language      string
}

type requestPrincipalStateKey struct{}

type principalResolver struct {
	identity  *idservice.Service
	documents *docservice.Service
}

func newPrincipalResolver(cfg Config) principalResolver {
	return principalResolver{
		identity:  cfg.Identity,
		documents: cfg.Documents,
	}
}

func (r principalResolver) resolveSessionPrincipal(ctx context.Context, sessionID string) (sessionPrincipal, bool) {
	if r.identity == nil {
		return sessionPrincipal{}, false
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return sessionPrincipal{}, false
	}
	session, err := r.identity.ResolveSession(ctx, sessionID)
	if err != nil {
		return sessionPrincipal{}, false
	}
	subjectID := strings.TrimSpace(session.SubjectID)
	if subjectID == "" {
		return sessionPrincipal{}, false
	}
	switch session.Kind {
	case idstorage.PrincipalStaff:
		return sessionPrincipal{kind: session.Kind, staffID: subjectID}, true
	case idstorage.PrincipalClient:
		return sessionPrincipal{kind: session.Kind, clientID: subjectID}, true
	default:
		return sessionPrincipal{}, false
	}
}

func (r principalResolver) resolveRequestPrincipalUncached(req *http.Request) sessionPrincipal {
	if req == nil {
		return sessionPrincipal{}
	}
	sessionID, ok := sessioncookie.Read(req)
	if !ok {
		return sessionPrincipal{}
	}
	principal, ok := r.resolveSessionPrincipal(req.Context(), sessionID)
	if !ok {
		return sessionPrincipal{}
	}
	return principal
}

func (r principalResolver) resolveRequestPrincipal(request *http.Request) sessionPrincipal {
	if state := principalStateOf(request); state != nil {
		state.principalOnce.Do(func() {
			state.principal = r.resolveRequestPrincipalUncached(request)
		})
		return state.principal
	}
	return r.resolveRequestPrincipalUncached(request)
}

func (r principalResolver) resolveRequestStaffID(request *http.Request) string {
	return r.resolveRequestPrincipal(request).staffID
}

func (r principalResolver) resolveRequestClientID(request *http.Request) string {
	return r.resolveRequestPrincipal(request).clientID
}

func (r principalResolver) resolveViewerUncached(request *http.Request) module.Viewer {
	principal := r.resolveRequestPrincipal(request)
	switch principal.kind {
	case idstorage.PrincipalStaff:
		viewer := module.Viewer{
			DisplayName: "Staff",
			Kind:        templates.ViewerKindStaff,
			SignedIn:    true,
		}
		if r.identity == nil {
			return viewer
		}
		staff, err := r.identity.GetStaffUser(request.Context(), principal.staffID)
		if err != nil {
			return viewer
		}
		if name := strings.TrimSpace(staff.Name); name != "" {
			viewer.DisplayName = name
		}
		return viewer
	case idstorage.PrincipalClient:
		viewer := module.Viewer{
			DisplayName: "Client",
			Kind:        templates.ViewerKindClient,
			SignedIn:    true,
		}
		if r.documents == nil {
			return viewer
		}
		client, err := r.documents.GetClient(request.Context(), principal.clientID)
		if err != nil {
			return viewer
		}
		if name := strings.TrimSpace(client.Name); name != "" {
			viewer.DisplayName = name
		}
		return viewer
	default:
		return module.Viewer{}
	}
}

func (r principalResolver) resolveViewer(request *http.Request) module.Viewer {
	if state := principalStateOf(request); state != nil {
		state.viewerOnce.Do(func() {
			state.viewer = r.resolveViewerUncached(request)
		})
		return state.viewer
	}
	return r.resolveViewerUncached(request)
}

func (r principalResolver) resolveRequestLanguageUncached(request *http.Request) string {
	tag, _ := webi18n.ResolveTag(request)
	fallback := tag.String()
	if r.documents == nil {
		return fallback
	}
	principal := r.resolveRequestPrincipal(request)
	if principal.clientID == "" {
		return fallback
	}
	client, err := r.documents.GetClient(request.Context(), principal.clientID)
	if err != nil {
		return fallback
	}
	locale := strings.TrimSpace(client.Locale)
	if locale == "" {
		return fallback
	}
	return webi18n.NormalizeTag(locale).String()
}

func (r principalResolver) resolveRequestLanguage(request *http.Request) string {
	if state := principalStateOf(request); state != nil {
		state.languageOnce.Do(func() {
			state.language = r.resolveRequestLanguageUncached(request)
		})
		return state.language
	}
	return r.resolveRequestLanguageUncached(request)
}

func (r principalResolver) authRequired() func(*http.Request) bool {
	validated := authctx.ValidatedSessionAuth(func(ctx context.Context, sessionID string) bool {
		principal, ok := r.resolveSessionPrincipal(ctx, sessionID)
		if !ok {
			return false
		}
		if state := principalStateFromContext(ctx); state != nil {
			state.principalOnce.Do(func() {
				state.principal = principal
			})
		}
		return true
	})
	return func(request *http.Request) bool {
		return validated(request)
	}
}
