package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// RequestRow is a single document request entry in the list view.
type RequestRow struct {
	ID         string
	Title      string
	ClientID   string
	ClientName string
	Status     string
	UpdatedAt  string
}

// AttachmentRow is a stored fulfilment document on a request.
type AttachmentRow struct {
	ID         string
	Filename   string
	Pages      int
	UploadedAt string
}

// RequestDetailView carries everything the request detail page shows.
type RequestDetailView struct {
	ID          string
	Title       string
	ClientID    string
	ClientName  string
	Status      string
	RequestedBy string
	CreatedAt   string
	UpdatedAt   string
	Attachments []AttachmentRow
	CanModerate bool
	CanAttach   bool
}

// CreateRequestForm renders the form that opens a new document request.
// The target client travels in a hidden field exactly as provided; the
// server validates it against the session principal on submit.
func CreateRequestForm(clientID string, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<form class="request-form" method="post" action="`)
		b.WriteString(routepath.RequestsPrefix)
		b.WriteString(`"><input type="hidden" name="client_id" value="`)
		b.WriteString(templ.EscapeString(clientID))
		b.WriteString(`"><label class="form-field"><span class="form-label">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.field_title")))
		b.WriteString(`</span><input class="input" type="text" name="title" required placeholder="`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.field_title_hint")))
		b.WriteString(`"></label><button type="submit" class="btn btn-primary">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.submit")))
		b.WriteString(`</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// RequestFilterForm renders the staff list filter. The filter expression
// is submitted verbatim and parsed server side.
func RequestFilterForm(filter string, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<form class="request-filter" method="get" action="`)
		b.WriteString(routepath.RequestsPrefix)
		b.WriteString(`"><label class="form-field"><span class="form-label">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.filter_label")))
		b.WriteString(`</span><input class="input" type="text" name="filter" value="`)
		b.WriteString(templ.EscapeString(filter))
		b.WriteString(`" placeholder="`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.filter_placeholder")))
		b.WriteString(`"></label><button type="submit" class="btn btn-sm">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.filter_apply")))
		b.WriteString(`</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// RequestTable renders the request list. The client column only appears
// for staff viewers; clients always see their own requests.
func RequestTable(rows []RequestRow, showClient bool, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		if len(rows) == 0 {
			b.WriteString(`<p class="empty-state">`)
			b.WriteString(templ.EscapeString(T(loc, "portal.requests.empty")))
			b.WriteString(`</p>`)
			_, err := io.WriteString(w, b.String())
			return err
		}
		b.WriteString(`<table class="table request-table"><thead><tr><th>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.column_title")))
		b.WriteString(`</th>`)
		if showClient {
			b.WriteString(`<th>`)
			b.WriteString(templ.EscapeString(T(loc, "portal.requests.column_client")))
			b.WriteString(`</th>`)
		}
		b.WriteString(`<th>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.column_status")))
		b.WriteString(`</th><th>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.column_updated")))
		b.WriteString(`</th></tr></thead><tbody>`)
		for _, row := range rows {
			b.WriteString(`<tr><td><a class="request-link" href="`)
			detailURL := routepath.AppRequest(row.ID)
			b.WriteString(templ.EscapeString(detailURL))
			b.WriteString(`" hx-get="`)
			b.WriteString(templ.EscapeString(detailURL))
			b.WriteString(`" hx-target="#portal-main" hx-push-url="true">`)
			b.WriteString(templ.EscapeString(row.Title))
			b.WriteString(`</a></td>`)
			if showClient {
				b.WriteString(`<td>`)
				b.WriteString(templ.EscapeString(clientLabel(row.ClientName, row.ClientID)))
				b.WriteString(`</td>`)
			}
			b.WriteString(`<td>`)
			writeStatusBadge(&b, row.Status, loc)
			b.WriteString(`</td><td>`)
			b.WriteString(templ.EscapeString(row.UpdatedAt))
			b.WriteString(`</td></tr>`)
		}
		b.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// RequestDetail renders a single request with its status actions and
// attachment list.
func RequestDetail(view RequestDetailView, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<article class="request-detail"><header class="request-detail-header"><h2>`)
		b.WriteString(templ.EscapeString(view.Title))
		b.WriteString(`</h2>`)
		writeStatusBadge(&b, view.Status, loc)
		b.WriteString(`</header><dl class="request-meta"><dt>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.requested_from")))
		b.WriteString(`</dt><dd>`)
		b.WriteString(templ.EscapeString(clientLabel(view.ClientName, view.ClientID)))
		b.WriteString(`</dd><dt>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.requested_by")))
		b.WriteString(`</dt><dd>`)
		b.WriteString(templ.EscapeString(view.RequestedBy))
		b.WriteString(`</dd><dt>`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.column_updated")))
		b.WriteString(`</dt><dd>`)
		b.WriteString(templ.EscapeString(view.UpdatedAt))
		b.WriteString(`</dd></dl>`)
		if view.CanModerate {
			writeStatusActions(&b, view, loc)
		}
		writeAttachmentSection(&b, view, loc)
		b.WriteString(`</article>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeStatusActions(b *strings.Builder, view RequestDetailView, loc Localizer) {
	type action struct {
		status string
		label  string
		class  string
	}
	// Fulfilled and cancelled are terminal, so only open requests offer
	// transitions.
	if view.Status != "open" {
		return
	}
	actions := []action{
		{status: "fulfilled", label: T(loc, "portal.requests.mark_fulfilled"), class: "btn btn-success btn-sm"},
		{status: "cancelled", label: T(loc, "portal.requests.cancel_request"), class: "btn btn-ghost btn-sm"},
	}
	b.WriteString(`<div class="request-actions">`)
	for _, a := range actions {
		b.WriteString(`<form method="post" action="`)
		b.WriteString(templ.EscapeString(routepath.AppRequestStatus(view.ID)))
		b.WriteString(`"><input type="hidden" name="status" value="`)
		b.WriteString(templ.EscapeString(a.status))
		b.WriteString(`"><button type="submit" class="`)
		b.WriteString(templ.EscapeString(a.class))
		b.WriteString(`">`)
		b.WriteString(templ.EscapeString(a.label))
		b.WriteString(`</button></form>`)
	}
	b.WriteString(`</div>`)
}

func writeAttachmentSection(b *strings.Builder, view RequestDetailView, loc Localizer) {
	b.WriteString(`<section class="request-attachments"><h3>`)
	b.WriteString(templ.EscapeString(T(loc, "portal.requests.attachments")))
	b.WriteString(`</h3>`)
	if len(view.Attachments) == 0 {
		b.WriteString(`<p class="empty-state">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.attachments_empty")))
		b.WriteString(`</p>`)
	} else {
		b.WriteString(`<ul class="attachment-list">`)
		for _, attachment := range view.Attachments {
			b.WriteString(`<li><span class="attachment-name">`)
			b.WriteString(templ.EscapeString(attachment.Filename))
			b.WriteString(`</span><span class="attachment-pages">`)
			b.WriteString(strconv.Itoa(attachment.Pages))
			b.WriteString(` `)
			b.WriteString(templ.EscapeString(T(loc, "portal.requests.attachment_pages")))
			b.WriteString(`</span><span class="attachment-date">`)
			b.WriteString(templ.EscapeString(attachment.UploadedAt))
			b.WriteString(`</span></li>`)
		}
		b.WriteString(`</ul>`)
	}
	if view.CanAttach && view.Status == "open" {
		b.WriteString(`<form class="attachment-form" method="post" enctype="multipart/form-data" action="`)
		b.WriteString(templ.EscapeString(routepath.AppRequestAttachment(view.ID)))
		b.WriteString(`"><label class="form-field"><span class="form-label">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.attach_pdf")))
		b.WriteString(`</span><input class="input" type="file" name="document" accept="application/pdf" required></label><button type="submit" class="btn btn-primary btn-sm">`)
		b.WriteString(templ.EscapeString(T(loc, "portal.requests.attach_submit")))
		b.WriteString(`</button></form>`)
	}
	b.WriteString(`</section>`)
}

func writeStatusBadge(b *strings.Builder, status string, loc Localizer) {
	b.WriteString(`<span class="badge `)
	b.WriteString(statusBadgeClass(status))
	b.WriteString(`">`)
	b.WriteString(templ.EscapeString(statusLabel(status, loc)))
	b.WriteString(`</span>`)
}

func statusBadgeClass(status string) string {
	switch status {
	case "open":
		return "badge-info"
	case "fulfilled":
		return "badge-success"
	case "cancelled":
		return "badge-ghost"
	default:
		return "badge-neutral"
	}
}

func statusLabel(status string, loc Localizer) string {
	switch status {
	case "open", "fulfilled", "cancelled":
		return T(loc, "portal.requests.status_"+status)
	default:
		return status
	}
}

func clientLabel(name, id string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return id
}
