package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashmont/clientdocs/internal/services/documents/storage"
)

// PutRequest inserts or updates one document request record.
func (s *Store) PutRequest(ctx context.Context, request storage.RequestRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	request.ID = strings.TrimSpace(request.ID)
	request.ClientID = strings.TrimSpace(request.ClientID)
	request.Title = strings.TrimSpace(request.Title)
	request.Status = strings.TrimSpace(request.Status)
	request.CreatedBy = strings.TrimSpace(request.CreatedBy)
	if request.ID == "" {
		return fmt.Errorf("request id is required")
	}
	if request.ClientID == "" {
		return fmt.Errorf("client id is required")
	}
	if request.Title == "" {
		return fmt.Errorf("title is required")
	}
	if request.Status == "" {
		return fmt.Errorf("status is required")
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.UpdatedAt.IsZero() {
		request.UpdatedAt = request.CreatedAt
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO document_requests (
	id,
	client_id,
	title,
	status,
	created_by,
	created_at,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	title = excluded.title,
	status = excluded.status,
	updated_at = excluded.updated_at
`,
		request.ID,
		request.ClientID,
		request.Title,
		request.Status,
		request.CreatedBy,
		toMillis(request.CreatedAt),
		toMillis(request.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put request: %w", err)
	}
	return nil
}

// GetRequest returns one document request by ID.
func (s *Store) GetRequest(ctx context.Context, requestID string) (storage.RequestRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RequestRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RequestRecord{}, fmt.Errorf("storage is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return storage.RequestRecord{}, fmt.Errorf("request id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, client_id, title, status, created_by, created_at, updated_at
  FROM document_requests
 WHERE id = ?
`, requestID)

	record, err := scanRequestRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RequestRecord{}, storage.ErrNotFound
		}
		return storage.RequestRecord{}, fmt.Errorf("get request: %w", err)
	}
	return record, nil
}

// ListRequests returns newest-first request records matching the query.
func (s *Store) ListRequests(ctx context.Context, query storage.RequestQuery) ([]storage.RequestRecord, error) {
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
	if clientID := strings.TrimSpace(query.ClientID); clientID != "" {
		whereClause += " AND client_id = ?"
		params = append(params, clientID)
	}
	if status := strings.TrimSpace(query.Status); status != "" {
		whereClause += " AND status = ?"
		params = append(params, status)
	}
	if query.FilterClause != "" {
		whereClause += " AND " + query.FilterClause
		params = append(params, query.FilterParams...)
	}
	params = append(params, limit)

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, client_id, title, status, created_by, created_at, updated_at
  FROM document_requests
 WHERE `+whereClause+`
 ORDER BY created_at DESC, id DESC
 LIMIT ?
`, params...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	records := make([]storage.RequestRecord, 0, limit)
	for rows.Next() {
		record, err := scanRequestRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list requests: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return records, nil
}

// CountRequestsByStatus returns request counts per status, optionally scoped
// to one client.
func (s *Store) CountRequestsByStatus(ctx context.Context, clientID string) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	whereClause := "1 = 1"
	params := []any{}
	if clientID = strings.TrimSpace(clientID); clientID != "" {
		whereClause += " AND client_id = ?"
		params = append(params, clientID)
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT status, COUNT(*)
  FROM document_requests
 WHERE `+whereClause+`
 GROUP BY status
`, params...)
	if err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("count requests by status: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	return counts, nil
}

func scanRequestRow(scan func(dest ...any) error) (storage.RequestRecord, error) {
	var record storage.RequestRecord
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.ClientID,
		&record.Title,
		&record.Status,
		&record.CreatedBy,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.RequestRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
