package audit

import (
	"context"
	"time"

	"github.com/ashmont/clientdocs/internal/services/documents/storage"
	"go.opentelemetry.io/otel/trace"
)

// Actions recorded by portal operations.
const (
	ActionClientCreated    = "client.created"
	ActionRequestCreated   = "request.created"
	ActionRequestFulfilled = "request.fulfilled"
	ActionRequestCancelled = "request.cancelled"
	ActionAttachmentAdded  = "request.attachment_added"
	ActionAccessLinkIssued = "client.access_link_issued"
	ActionStaffSignedIn    = "staff.signed_in"
	ActionClientSignedIn   = "client.signed_in"
)

// Emitter records portal audit events.
type Emitter struct {
	store storage.AuditStore
	clock func() time.Time
}

// NewEmitter creates a new audit event emitter.
func NewEmitter(store storage.AuditStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records an audit event. It is a no-op when the store is nil.
// When ctx carries a valid span context, the trace and span IDs are
// written onto the event.
func (e *Emitter) Emit(ctx context.Context, evt storage.AuditEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now()
	}
	if spanContext := trace.SpanContextFromContext(ctx); spanContext.IsValid() {
		evt.TraceID = spanContext.TraceID().String()
		evt.SpanID = spanContext.SpanID().String()
	}
	return e.store.AppendAuditEvent(ctx, evt)
}

func (e *Emitter) now() time.Time {
	if e.clock == nil {
		return time.Now().UTC()
	}
	return e.clock().UTC()
}
