package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashmont/clientdocs/internal/services/documents/storage"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// PutClient inserts or updates one client roster record.
func (s *Store) PutClient(ctx context.Context, client storage.ClientRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	client.ID = strings.TrimSpace(client.ID)
	client.Name = strings.TrimSpace(client.Name)
	client.Email = strings.TrimSpace(client.Email)
	client.Locale = strings.TrimSpace(client.Locale)
	if client.ID == "" {
		return fmt.Errorf("client id is required")
	}
	if client.Name == "" {
		return fmt.Errorf("client name is required")
	}
	if client.Email == "" {
		return fmt.Errorf("client email is required")
	}
	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now().UTC()
	}
	if client.UpdatedAt.IsZero() {
		client.UpdatedAt = client.CreatedAt
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO clients (
	id,
	name,
	email,
	locale,
	created_at,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	name = excluded.name,
	email = excluded.email,
	locale = excluded.locale,
	updated_at = excluded.updated_at
`,
		client.ID,
		client.Name,
		client.Email,
		client.Locale,
		toMillis(client.CreatedAt),
		toMillis(client.UpdatedAt),
	)
	if err != nil {
		if isClientEmailUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put client: %w", err)
	}
	return nil
}

// GetClient returns one client by ID.
func (s *Store) GetClient(ctx context.Context, clientID string) (storage.ClientRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ClientRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ClientRecord{}, fmt.Errorf("storage is not configured")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return storage.ClientRecord{}, fmt.Errorf("client id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, email, locale, created_at, updated_at
  FROM clients
 WHERE id = ?
`, clientID)

	var client storage.ClientRecord
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Locale,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ClientRecord{}, storage.ErrNotFound
		}
		return storage.ClientRecord{}, fmt.Errorf("get client: %w", err)
	}
	client.CreatedAt = fromMillis(createdAt)
	client.UpdatedAt = fromMillis(updatedAt)
	return client, nil
}

// ListClients returns one page of client records in ID order. The page token
// is the last ID of the previous page.
func (s *Store) ListClients(ctx context.Context, pageSize int, pageToken string) (storage.ClientPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.ClientPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ClientPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.ClientPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := storage.ClientPage{
		Clients: make([]storage.ClientRecord, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(ctx, `
SELECT id, name, email, locale, created_at, updated_at
  FROM clients
 ORDER BY id ASC
 LIMIT ?
`, pageSize+1)
	} else {
		rows, err = s.sqlDB.QueryContext(ctx, `
SELECT id, name, email, locale, created_at, updated_at
  FROM clients
 WHERE id > ?
 ORDER BY id ASC
 LIMIT ?
`, pageToken, pageSize+1)
	}
	if err != nil {
		return storage.ClientPage{}, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var client storage.ClientRecord
		var createdAt int64
		var updatedAt int64
		if err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.Email,
			&client.Locale,
			&createdAt,
			&updatedAt,
		); err != nil {
			return storage.ClientPage{}, fmt.Errorf("list clients: %w", err)
		}
		client.CreatedAt = fromMillis(createdAt)
		client.UpdatedAt = fromMillis(updatedAt)
		page.Clients = append(page.Clients, client)
	}
	if err := rows.Err(); err != nil {
		return storage.ClientPage{}, fmt.Errorf("list clients: %w", err)
	}
	if len(page.Clients) > pageSize {
		page.NextPageToken = page.Clients[pageSize-1].ID
		page.Clients = page.Clients[:pageSize]
	}

	return page, nil
}

func isClientEmailUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "clients.email")
}
