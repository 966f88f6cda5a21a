package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashmont/clientdocs/internal/services/identity/storage"
)

// PutMagicLink stores one single-use sign-in token.
func (s *Store) PutMagicLink(ctx context.Context, link storage.MagicLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	link.Token = strings.TrimSpace(link.Token)
	link.StaffID = strings.TrimSpace(link.StaffID)
	link.Email = strings.TrimSpace(link.Email)
	if link.Token == "" {
		return fmt.Errorf("magic link token is required")
	}
	if link.StaffID == "" {
		return fmt.Errorf("magic link staff id is required")
	}
	if link.ExpiresAt.IsZero() {
		return fmt.Errorf("magic link expiry is required")
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	var usedAt any
	if link.UsedAt != nil {
		usedAt = toMillis(*link.UsedAt)
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO magic_links (
	token,
	staff_id,
	email,
	created_at,
	expires_at,
	used_at
) VALUES (?, ?, ?, ?, ?, ?)
`,
		link.Token,
		link.StaffID,
		link.Email,
		toMillis(link.CreatedAt),
		toMillis(link.ExpiresAt),
		usedAt,
	)
	if err != nil {
		return fmt.Errorf("put magic link: %w", err)
	}
	return nil
}

// GetMagicLink returns one sign-in token record.
func (s *Store) GetMagicLink(ctx context.Context, token string) (storage.MagicLink, error) {
	if err := ctx.Err(); err != nil {
		return storage.MagicLink{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.MagicLink{}, fmt.Errorf("storage is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return storage.MagicLink{}, fmt.Errorf("magic link token is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT token, staff_id, email, created_at, expires_at, used_at
  FROM magic_links
 WHERE token = ?
`, token)

	var link storage.MagicLink
	var createdAt int64
	var expiresAt int64
	var usedAt sql.NullInt64
	err := row.Scan(
		&link.Token,
		&link.StaffID,
		&link.Email,
		&createdAt,
		&expiresAt,
		&usedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.MagicLink{}, storage.ErrNotFound
		}
		return storage.MagicLink{}, fmt.Errorf("get magic link: %w", err)
	}
	link.CreatedAt = fromMillis(createdAt)
	link.ExpiresAt = fromMillis(expiresAt)
	if usedAt.Valid {
		used := fromMillis(usedAt.Int64)
		link.UsedAt = &used
	}
	return link, nil
}

// MarkMagicLinkUsed stamps the consume time on an unused token.
func (s *Store) MarkMagicLinkUsed(ctx context.Context, token string, usedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("magic link token is required")
	}
	if usedAt.IsZero() {
		usedAt = time.Now().UTC()
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE magic_links
   SET used_at = ?
 WHERE token = ?
   AND used_at IS NULL
`, toMillis(usedAt), token)
	if err != nil {
		return fmt.Errorf("mark magic link used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark magic link used: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteExpiredMagicLinks removes tokens that are past expiry or already used.
func (s *Store) DeleteExpiredMagicLinks(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM magic_links
 WHERE expires_at <= ?
    OR used_at IS NOT NULL
`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired magic links: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired magic links: %w", err)
	}
	return affected, nil
}
