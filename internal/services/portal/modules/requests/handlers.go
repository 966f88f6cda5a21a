package requests

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

// listLimit caps one request listing page.
const listLimit = 200

// maxUploadMemory bounds in-memory multipart parsing; larger uploads spill
// to temp files.
const maxUploadMemory = 32 << 20

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
	staffID := h.requestStaffID(r)
	clientID := h.requestClientID(r)

	if staffID == "" && clientID == "" {
		h.writeError(w, r, errNoPrincipal())
		return
	}

	input := ListDocumentRequestsInput{Limit: listLimit}
	filter := ""
	if staffID != "" {
		filter = strings.TrimSpace(r.URL.Query().Get("filter"))
		input.Filter = filter
	} else {
		input.ClientID = clientID
	}

	items, err := h.service.listRequests(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	isStaff := staffID != ""
	rows := make([]templates.RequestRow, 0, len(items))
	var names map[string]string
	if isStaff {
		names, err = h.service.clientNames(r.Context(), items)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	for _, item := range items {
		rows = append(rows, requestRow(item, names))
	}

	fragment := templates.RequestTable(rows, isStaff, loc)
	if isStaff {
		fragment = templates.Fragments(templates.RequestFilterForm(filter, loc), fragment)
	}

	header := &templates.AppMainHeader{Title: templates.T(loc, "portal.requests.title")}
	if isStaff {
		header.Action = newRequestAction(loc)
	}
	h.writePage(w, r, templates.T(loc, "portal.requests.title"), http.StatusOK, header, fragment)
}

func (h handlers) handleNewForm(w http.ResponseWriter, r *http.Request) {
	loc, _ := h.pageLocalizer(w, r)
	staffID := h.requestStaffID(r)
	clientID := h.requestClientID(r)

	// Clients always file for themselves; staff pick the target client on
	// the roster first.
	targetClient := clientID
	if targetClient == "" && staffID != "" {
		targetClient = strings.TrimSpace(r.URL.Query().Get("client"))
		if targetClient == "" {
			httpx.WriteRedirect(w, r, routepath.ClientsPrefix)
			return
		}
	}
	if targetClient == "" {
		h.writeError(w, r, errNoPrincipal())
		return
	}

	header := &templates.AppMainHeader{Title: templates.T(loc, "portal.requests.form_title")}
	h.writePage(w, r, templates.T(loc, "portal.requests.form_title"), http.StatusOK, header,
		templates.Wrap(templates.PortalLayout(), templates.CreateRequestForm(targetClient, loc)))
}

func (h handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeInvalidForm, "parse create request form"))
		return
	}
	// The posted identifiers reach the gateway exactly as submitted.
	clientID := r.PostFormValue("client_id")
	title := r.PostFormValue("title")

	staffID := h.requestStaffID(r)
	principalClient := h.requestClientID(r)
	if staffID == "" && principalClient == "" {
		h.writeError(w, r, errNoPrincipal())
		return
	}
	if principalClient != "" && clientID != principalClient {
		h.writeError(w, r, apperrors.New(apperrors.CodeForbidden, "client may only file requests for itself"))
		return
	}

	createdBy := staffID
	if principalClient != "" {
		createdBy = principalClient
	}

	if _, err := h.service.createRequest(r.Context(), CreateDocumentRequestInput{
		ClientID:  clientID,
		Title:     title,
		CreatedBy: createdBy,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}

	flash.Write(w, r, flash.NoticeSuccess("portal.requests.created"))
	httpx.WriteRedirect(w, r, routepath.RequestsPrefix)
}

func (h handlers) handleDetailRoute(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(r.PathValue("requestID"))
	if requestID == "" {
		h.handleNotFound(w, r)
		return
	}
	h.handleDetail(w, r, requestID)
}

func (h handlers) handleDetail(w http.ResponseWriter, r *http.Request, requestID string) {
	loc, _ := h.pageLocalizer(w, r)
	detail, err := h.service.loadDetail(r.Context(), requestID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	staffID := h.requestStaffID(r)
	clientID := h.requestClientID(r)
	if staffID == "" {
		// Clients only ever learn about their own requests.
		if clientID == "" || detail.request.ClientID != clientID {
			h.handleNotFound(w, r)
			return
		}
	}

	isStaff := staffID != ""
	view := templates.RequestDetailView{
		ID:          detail.request.ID,
		Title:       detail.request.Title,
		ClientID:    detail.request.ClientID,
		ClientName:  detail.clientName,
		Status:      detail.request.Status,
		RequestedBy: detail.request.CreatedBy,
		CreatedAt:   formatTime(detail.request.CreatedAt),
		UpdatedAt:   formatTime(detail.request.UpdatedAt),
		CanModerate: isStaff,
		CanAttach:   isStaff || detail.request.ClientID == clientID,
	}
	for _, attachment := range detail.attachments {
		view.Attachments = append(view.Attachments, templates.AttachmentRow{
			ID:         attachment.ID,
			Filename:   attachment.Filename,
			Pages:      attachment.PageCount,
			UploadedAt: formatTime(attachment.UploadedAt),
		})
	}

	header := &templates.AppMainHeader{
		Title:    detail.request.Title,
		Subtitle: templates.T(loc, "portal.requests.detail_title"),
	}
	h.writePage(w, r, detail.request.Title, http.StatusOK, header, templates.RequestDetail(view, loc))
}

func (h handlers) handleStatusRoute(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(r.PathValue("requestID"))
	if requestID == "" {
		h.handleNotFound(w, r)
		return
	}

	staffID := h.requestStaffID(r)
	if staffID == "" {
		h.writeError(w, r, apperrors.New(apperrors.CodeForbidden, "request moderation is staff-only"))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeInvalidForm, "parse status form"))
		return
	}
	status := strings.TrimSpace(r.PostFormValue("status"))
	if _, err := h.service.setStatus(r.Context(), requestID, status, staffID); err != nil {
		h.writeError(w, r, err)
		return
	}

	flash.Write(w, r, flash.NoticeSuccess("portal.requests.status_updated"))
	httpx.WriteRedirect(w, r, routepath.AppRequest(requestID))
}

func (h handlers) handleAttachmentRoute(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(r.PathValue("requestID"))
	if requestID == "" {
		h.handleNotFound(w, r)
		return
	}

	staffID := h.requestStaffID(r)
	clientID := h.requestClientID(r)
	if staffID == "" && clientID == "" {
		h.writeError(w, r, errNoPrincipal())
		return
	}
	if staffID == "" {
		request, err := h.service.getRequest(r.Context(), requestID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if request.ClientID != clientID {
			h.handleNotFound(w, r)
			return
		}
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeRequestAttachmentMissing, "parse attachment upload"))
		return
	}
	file, fileHeader, err := r.FormFile("document")
	if err != nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeRequestAttachmentMissing, "attachment file is required"))
		return
	}
	defer file.Close()

	actorID := staffID
	if actorID == "" {
		actorID = clientID
	}
	if _, err := h.service.attach(r.Context(), requestID, fileHeader.Filename, file, actorID); err != nil {
		h.writeError(w, r, err)
		return
	}

	flash.Write(w, r, flash.NoticeSuccess("portal.requests.attachment_added"))
	httpx.WriteRedirect(w, r, routepath.AppRequest(requestID))
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
	return apperrors.New(apperrors.CodeForbidden, "request requires a signed-in principal")
}

func requestRow(item DocumentRequest, names map[string]string) templates.RequestRow {
	return templates.RequestRow{
		ID:         item.ID,
		Title:      item.Title,
		ClientID:   item.ClientID,
		ClientName: names[item.ClientID],
		Status:     item.Status,
		UpdatedAt:  formatTime(item.UpdatedAt),
	}
}

func newRequestAction(loc templates.Localizer) templ.Component {
	return templates.LinkButton(routepath.ClientsPrefix, templates.T(loc, "portal.requests.new"))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
