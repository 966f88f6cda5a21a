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

// PutAttachment inserts one fulfillment attachment record.
func (s *Store) PutAttachment(ctx context.Context, attachment storage.AttachmentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	attachment.ID = strings.TrimSpace(attachment.ID)
	attachment.RequestID = strings.TrimSpace(attachment.RequestID)
	attachment.Filename = strings.TrimSpace(attachment.Filename)
	attachment.SHA256 = strings.TrimSpace(attachment.SHA256)
	attachment.UploadedBy = strings.TrimSpace(attachment.UploadedBy)
	if attachment.ID == "" {
		return fmt.Errorf("attachment id is required")
	}
	if attachment.RequestID == "" {
		return fmt.Errorf("request id is required")
	}
	if attachment.Filename == "" {
		return fmt.Errorf("filename is required")
	}
	if attachment.SHA256 == "" {
		return fmt.Errorf("sha256 is required")
	}
	if attachment.SizeBytes <= 0 {
		return fmt.Errorf("size must be greater than zero")
	}
	if attachment.CreatedAt.IsZero() {
		attachment.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO attachments (
	id,
	request_id,
	filename,
	sha256,
	size_bytes,
	page_count,
	uploaded_by,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		attachment.ID,
		attachment.RequestID,
		attachment.Filename,
		attachment.SHA256,
		attachment.SizeBytes,
		attachment.PageCount,
		attachment.UploadedBy,
		toMillis(attachment.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put attachment: %w", err)
	}
	return nil
}

// GetAttachment returns one attachment by ID.
func (s *Store) GetAttachment(ctx context.Context, attachmentID string) (storage.AttachmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.AttachmentRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AttachmentRecord{}, fmt.Errorf("storage is not configured")
	}
	attachmentID = strings.TrimSpace(attachmentID)
	if attachmentID == "" {
		return storage.AttachmentRecord{}, fmt.Errorf("attachment id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, request_id, filename, sha256, size_bytes, page_count, uploaded_by, created_at
  FROM attachments
 WHERE id = ?
`, attachmentID)

	var record storage.AttachmentRecord
	var createdAt int64
	err := row.Scan(
		&record.ID,
		&record.RequestID,
		&record.Filename,
		&record.SHA256,
		&record.SizeBytes,
		&record.PageCount,
		&record.UploadedBy,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.AttachmentRecord{}, storage.ErrNotFound
		}
		return storage.AttachmentRecord{}, fmt.Errorf("get attachment: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// ListAttachmentsByRequest returns attachments for one request in upload order.
func (s *Store) ListAttachmentsByRequest(ctx context.Context, requestID string) ([]storage.AttachmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, fmt.Errorf("request id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, request_id, filename, sha256, size_bytes, page_count, uploaded_by, created_at
  FROM attachments
 WHERE request_id = ?
 ORDER BY created_at ASC, id ASC
`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var records []storage.AttachmentRecord
	for rows.Next() {
		var record storage.AttachmentRecord
		var createdAt int64
		if err := rows.Scan(
			&record.ID,
			&record.RequestID,
			&record.Filename,
			&record.SHA256,
			&record.SizeBytes,
			&record.PageCount,
			&record.UploadedBy,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list attachments: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return records, nil
}
