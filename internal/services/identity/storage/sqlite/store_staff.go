package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashmont/clientdocs/internal/services/identity/storage"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// PutStaffUser inserts or updates one staff account.
func (s *Store) PutStaffUser(ctx context.Context, staff storage.StaffUser) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	staff.ID = strings.TrimSpace(staff.ID)
	staff.Name = strings.TrimSpace(staff.Name)
	staff.Email = strings.TrimSpace(staff.Email)
	if staff.ID == "" {
		return fmt.Errorf("staff id is required")
	}
	if staff.Email == "" {
		return fmt.Errorf("staff email is required")
	}
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now().UTC()
	}
	if staff.UpdatedAt.IsZero() {
		staff.UpdatedAt = staff.CreatedAt
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO staff_users (
	id,
	name,
	email,
	created_at,
	updated_at
) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	name = excluded.name,
	email = excluded.email,
	updated_at = excluded.updated_at
`,
		staff.ID,
		staff.Name,
		staff.Email,
		toMillis(staff.CreatedAt),
		toMillis(staff.UpdatedAt),
	)
	if err != nil {
		if isStaffEmailUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put staff user: %w", err)
	}
	return nil
}

// GetStaffUser returns one staff account by ID.
func (s *Store) GetStaffUser(ctx context.Context, staffID string) (storage.StaffUser, error) {
	if err := ctx.Err(); err != nil {
		return storage.StaffUser{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.StaffUser{}, fmt.Errorf("storage is not configured")
	}
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return storage.StaffUser{}, fmt.Errorf("staff id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, email, created_at, updated_at
  FROM staff_users
 WHERE id = ?
`, staffID)

	staff, err := scanStaffRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.StaffUser{}, storage.ErrNotFound
		}
		return storage.StaffUser{}, fmt.Errorf("get staff user: %w", err)
	}
	return staff, nil
}

// GetStaffUserByEmail returns one staff account by normalized email.
func (s *Store) GetStaffUserByEmail(ctx context.Context, email string) (storage.StaffUser, error) {
	if err := ctx.Err(); err != nil {
		return storage.StaffUser{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.StaffUser{}, fmt.Errorf("storage is not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return storage.StaffUser{}, fmt.Errorf("staff email is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, email, created_at, updated_at
  FROM staff_users
 WHERE email = ?
`, email)

	staff, err := scanStaffRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.StaffUser{}, storage.ErrNotFound
		}
		return storage.StaffUser{}, fmt.Errorf("get staff user by email: %w", err)
	}
	return staff, nil
}

// ListStaffUsers returns one page of staff accounts.
func (s *Store) ListStaffUsers(ctx context.Context, pageSize int, pageToken string) (storage.StaffPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.StaffPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.StaffPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.StaffPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := storage.StaffPage{
		Staff: make([]storage.StaffUser, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(ctx, `
SELECT id, name, email, created_at, updated_at
  FROM staff_users
 ORDER BY id ASC
 LIMIT ?
`, pageSize+1)
	} else {
		rows, err = s.sqlDB.QueryContext(ctx, `
SELECT id, name, email, created_at, updated_at
  FROM staff_users
 WHERE id > ?
 ORDER BY id ASC
 LIMIT ?
`, pageToken, pageSize+1)
	}
	if err != nil {
		return storage.StaffPage{}, fmt.Errorf("list staff users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		staff, err := scanStaffRow(rows.Scan)
		if err != nil {
			return storage.StaffPage{}, fmt.Errorf("list staff users: %w", err)
		}
		page.Staff = append(page.Staff, staff)
	}
	if err := rows.Err(); err != nil {
		return storage.StaffPage{}, fmt.Errorf("list staff users: %w", err)
	}
	if len(page.Staff) > pageSize {
		page.NextPageToken = page.Staff[pageSize-1].ID
		page.Staff = page.Staff[:pageSize]
	}

	return page, nil
}

func scanStaffRow(scan func(dest ...any) error) (storage.StaffUser, error) {
	var staff storage.StaffUser
	var createdAt int64
	var updatedAt int64
	err := scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.StaffUser{}, err
	}
	staff.CreatedAt = fromMillis(createdAt)
	staff.UpdatedAt = fromMillis(updatedAt)
	return staff, nil
}

func isStaffEmailUniqueViolation(err error) bool {
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
		strings.Contains(message, "staff_users.email")
}
