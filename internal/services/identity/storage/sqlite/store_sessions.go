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

// PutSession stores one portal session.
func (s *Store) PutSession(ctx context.Context, session storage.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	session.ID = strings.TrimSpace(session.ID)
	session.Kind = strings.TrimSpace(session.Kind)
	session.SubjectID = strings.TrimSpace(session.SubjectID)
	if session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if session.Kind != storage.PrincipalStaff && session.Kind != storage.PrincipalClient {
		return fmt.Errorf("session kind %q is not recognized", session.Kind)
	}
	if session.SubjectID == "" {
		return fmt.Errorf("session subject id is required")
	}
	if session.ExpiresAt.IsZero() {
		return fmt.Errorf("session expiry is required")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	var revokedAt any
	if session.RevokedAt != nil {
		revokedAt = toMillis(*session.RevokedAt)
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO sessions (
	id,
	kind,
	subject_id,
	created_at,
	expires_at,
	revoked_at
) VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	expires_at = excluded.expires_at,
	revoked_at = excluded.revoked_at
`,
		session.ID,
		session.Kind,
		session.SubjectID,
		toMillis(session.CreatedAt),
		toMillis(session.ExpiresAt),
		revokedAt,
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetSession returns one session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return storage.Session{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Session{}, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return storage.Session{}, fmt.Errorf("session id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, kind, subject_id, created_at, expires_at, revoked_at
  FROM sessions
 WHERE id = ?
`, sessionID)

	var session storage.Session
	var createdAt int64
	var expiresAt int64
	var revokedAt sql.NullInt64
	err := row.Scan(
		&session.ID,
		&session.Kind,
		&session.SubjectID,
		&createdAt,
		&expiresAt,
		&revokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Session{}, storage.ErrNotFound
		}
		return storage.Session{}, fmt.Errorf("get session: %w", err)
	}
	session.CreatedAt = fromMillis(createdAt)
	session.ExpiresAt = fromMillis(expiresAt)
	if revokedAt.Valid {
		revoked := fromMillis(revokedAt.Int64)
		session.RevokedAt = &revoked
	}
	return session, nil
}

// RevokeSession stamps the revoke time on an active session.
func (s *Store) RevokeSession(ctx context.Context, sessionID string, revokedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if revokedAt.IsZero() {
		revokedAt = time.Now().UTC()
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE sessions
   SET revoked_at = ?
 WHERE id = ?
   AND revoked_at IS NULL
`, toMillis(revokedAt), sessionID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteExpiredSessions removes sessions that are past expiry or revoked.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
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
DELETE FROM sessions
 WHERE expires_at <= ?
    OR revoked_at IS NOT NULL
`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return affected, nil
}
