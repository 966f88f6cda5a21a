package activity

import (
	"context"

	"github.com/ashmont/clientdocs/internal/services/documents/events"
	docservice "github.com/ashmont/clientdocs/internal/services/documents/service"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
)

// auditGateway adapts the documents audit log and event stream to the
// activity module boundary.
type auditGateway struct {
	docs *docservice.Service
}

// NewAuditGateway wires the module to the in-process documents service.
func NewAuditGateway(deps module.Dependencies) ActivityGateway {
	if deps.Documents == nil {
		return unavailableGateway{}
	}
	return auditGateway{docs: deps.Documents}
}

func (g auditGateway) ListAuditEvents(ctx context.Context, filter string, limit int) ([]AuditEntry, error) {
	records, err := g.docs.ListAuditEvents(ctx, filter, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]AuditEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, AuditEntry{
			Action:    record.Action,
			ActorID:   record.ActorID,
			ClientID:  record.ClientID,
			RequestID: record.RequestID,
			Detail:    record.Detail,
			Timestamp: record.Timestamp,
		})
	}
	return entries, nil
}

func (g auditGateway) Subscribe() (<-chan events.RequestEvent, func()) {
	return g.docs.Subscribe()
}
