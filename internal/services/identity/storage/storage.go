package storage

import (
	"context"
	"time"

	"github.com/ashmont/clientdocs/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ErrAlreadyExists indicates a uniqueness conflict on write.
var ErrAlreadyExists = errors.New(errors.CodeStaffEmailTaken, "record already exists")

// Principal kinds carried by portal sessions.
const (
	// PrincipalStaff marks a session held by a firm staff member.
	PrincipalStaff = "staff"
	// PrincipalClient marks a session held by a client who signed in
	// through an access grant.
	PrincipalClient = "client"
)

// StaffUser represents one firm staff account.
type StaffUser struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StaffPage describes a page of staff records.
type StaffPage struct {
	Staff         []StaffUser
	NextPageToken string
}

// StaffStore persists staff accounts.
type StaffStore interface {
	PutStaffUser(ctx context.Context, staff StaffUser) error
	GetStaffUser(ctx context.Context, staffID string) (StaffUser, error)
	GetStaffUserByEmail(ctx context.Context, email string) (StaffUser, error)
	ListStaffUsers(ctx context.Context, pageSize int, pageToken string) (StaffPage, error)
}

// MagicLink represents a single-use staff sign-in token.
type MagicLink struct {
	Token     string
	StaffID   string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// MagicLinkStore persists magic link tokens.
type MagicLinkStore interface {
	PutMagicLink(ctx context.Context, link MagicLink) error
	GetMagicLink(ctx context.Context, token string) (MagicLink, error)
	MarkMagicLinkUsed(ctx context.Context, token string, usedAt time.Time) error
	DeleteExpiredMagicLinks(ctx context.Context, now time.Time) (int64, error)
}

// Session represents one durable portal session.
type Session struct {
	ID string
	// Kind is PrincipalStaff or PrincipalClient.
	Kind string
	// SubjectID is the staff ID or client ID behind the session.
	SubjectID string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// SessionStore persists portal sessions.
type SessionStore interface {
	PutSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, sessionID string) (Session, error)
	RevokeSession(ctx context.Context, sessionID string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
