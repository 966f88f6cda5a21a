package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ashmont/clientdocs/internal/services/documents/storage"
)

// AppendAuditEvent persists one portal audit event.
func (s *Store) AppendAuditEvent(ctx context.Context, event storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	event.Action = strings.TrimSpace(event.Action)
	if event.Action == "" {
		return fmt.Errorf("action is required")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO audit_events (
	action,
	actor_id,
	client_id,
	request_id,
	detail,
	trace_id,
	span_id,
	timestamp
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		event.Action,
		strings.TrimSpace(event.ActorID),
		strings.TrimSpace(event.ClientID),
		strings.TrimSpace(event.RequestID),
		event.Detail,
		strings.TrimSpace(event.TraceID),
		strings.TrimSpace(event.SpanID),
		toMillis(event.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns newest-first audit events matching the query.
func (s *Store) ListAuditEvents(ctx context.Context, query storage.AuditQuery) ([]storage.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	whereClause := "1 = 1"
	params := []any{}
	if query.FilterClause != "" {
		whereClause += " AND " + query.FilterClause
		params = append(params, query.FilterParams...)
	}
	params = append(params, limit)

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, action, actor_id, client_id, request_id, detail, trace_id, span_id, timestamp
  FROM audit_events
 WHERE `+whereClause+`
 ORDER BY timestamp DESC, id DESC
 LIMIT ?
`, params...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := make([]storage.AuditEvent, 0, limit)
	for rows.Next() {
		var event storage.AuditEvent
		var timestamp int64
		if err := rows.Scan(
			&event.ID,
			&event.Action,
			&event.ActorID,
			&event.ClientID,
			&event.RequestID,
			&event.Detail,
			&event.TraceID,
			&event.SpanID,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("list audit events: %w", err)
		}
		event.Timestamp = fromMillis(timestamp)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}

// GetPortalStatistics returns aggregate counts across portal data.
func (s *Store) GetPortalStatistics(ctx context.Context, since *time.Time) (storage.PortalStatistics, error) {
	if err := ctx.Err(); err != nil {
		return storage.PortalStatistics{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PortalStatistics{}, fmt.Errorf("storage is not configured")
	}

	var sinceValue any
	if since != nil {
		sinceValue = toMillis(*since)
	}

	var stats storage.PortalStatistics
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT
	(SELECT COUNT(*) FROM clients WHERE ? IS NULL OR created_at >= ?),
	(SELECT COUNT(*) FROM document_requests WHERE status = 'open' AND (? IS NULL OR created_at >= ?))
`, sinceValue, sinceValue, sinceValue, sinceValue)
	if err := row.Scan(&stats.ClientCount, &stats.OpenRequestCount); err != nil {
		return storage.PortalStatistics{}, fmt.Errorf("get portal statistics: %w", err)
	}
	return stats, nil
}
