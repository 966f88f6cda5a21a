package activity

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/net/websocket"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	"github.com/ashmont/clientdocs/internal/services/documents/events"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	webi18n "github.com/ashmont/clientdocs/internal/services/portal/platform/i18n"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/pagerender"
	"github.com/ashmont/clientdocs/internal/services/portal/platform/weberror"
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

// liveMessage is the wire envelope for one live feed event.
type liveMessage struct {
	Kind  string              `json:"kind"`
	Event events.RequestEvent `json:"event"`
}

func (h handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	loc, _ := h.pageLocalizer(w, r)
	if _, err := h.requireStaff(r); err != nil {
		h.writeError(w, r, err)
		return
	}

	filter := strings.TrimSpace(r.URL.Query().Get("filter"))
	entries, err := h.service.listActivity(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rows := make([]templates.ActivityEntry, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, templates.ActivityEntry{
			When:   formatTime(entry.Timestamp),
			Action: entry.Action,
			Detail: entryDetail(entry),
		})
	}

	header := &templates.AppMainHeader{Title: templates.T(loc, "portal.activity.title")}
	h.writePage(w, r, templates.T(loc, "portal.activity.title"), http.StatusOK, header, templates.ActivityFeed(rows, loc))
}

// handleWS upgrades the staff live feed socket. The principal check runs
// before the handshake so unauthorized requests never upgrade.
func (h handlers) handleWS(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireStaff(r); err != nil {
		h.writeError(w, r, err)
		return
	}
	websocket.Handler(h.streamEvents).ServeHTTP(w, r)
}

func (h handlers) streamEvents(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	eventsCh, release := h.service.subscribe()
	defer release()

	// The feed is write-only; draining client frames is how the loop
	// learns the peer went away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_, _ = io.Copy(io.Discard, conn)
	}()

	encoder := json.NewEncoder(conn)
	for {
		select {
		case <-closed:
			return
		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			if err := encoder.Encode(liveMessage{Kind: "request_event", Event: event}); err != nil {
				return
			}
		}
	}
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
		return "", errActivityForbidden()
	}
	staffID := strings.TrimSpace(h.deps.resolveStaffID(r))
	if staffID == "" {
		return "", errActivityForbidden()
	}
	return staffID, nil
}

func errActivityForbidden() error {
	return apperrors.New(apperrors.CodeForbidden, "activity feed is staff-only")
}

func entryDetail(entry AuditEntry) string {
	detail := strings.TrimSpace(entry.Detail)
	switch {
	case detail != "" && entry.RequestID != "":
		return detail + " (" + entry.RequestID + ")"
	case detail != "":
		return detail
	case entry.RequestID != "":
		return entry.RequestID
	default:
		return entry.ClientID
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
