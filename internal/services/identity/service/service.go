// Package service implements staff sign-in, session issuance, and session
// resolution for the portal.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	"github.com/ashmont/clientdocs/internal/platform/id"
	"github.com/ashmont/clientdocs/internal/services/identity/magiclink"
	"github.com/ashmont/clientdocs/internal/services/identity/storage"
)

// defaultSessionTTL bounds portal sessions when the caller does not set one.
const defaultSessionTTL = 30 * 24 * time.Hour

// Service implements the portal sign-in use-cases.
type Service struct {
	staff      storage.StaffStore
	magicLinks storage.MagicLinkStore
	sessions   storage.SessionStore
	links      magiclink.Config
	clock      func() time.Time
	newID      func() (string, error)
}

// Config wires service dependencies. Clock and NewID default to the
// production implementations when nil.
type Config struct {
	Staff      storage.StaffStore
	MagicLinks storage.MagicLinkStore
	Sessions   storage.SessionStore
	Links      magiclink.Config
	Clock      func() time.Time
	NewID      func() (string, error)
}

// New constructs the identity service.
func New(cfg Config) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		staff:      cfg.Staff,
		magicLinks: cfg.MagicLinks,
		sessions:   cfg.Sessions,
		links:      cfg.Links,
		clock:      clock,
		newID:      newID,
	}
}

// RegisterStaff creates one staff account with a normalized email.
func (s *Service) RegisterStaff(ctx context.Context, name, email string) (storage.StaffUser, error) {
	if s == nil || s.staff == nil {
		return storage.StaffUser{}, apperrors.New(apperrors.CodeStorageUnavailable, "staff storage is not configured")
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return storage.StaffUser{}, err
	}

	staffID, err := s.newID()
	if err != nil {
		return storage.StaffUser{}, fmt.Errorf("generate staff id: %w", err)
	}
	now := s.clock().UTC()
	staff := storage.StaffUser{
		ID:        staffID,
		Name:      strings.TrimSpace(name),
		Email:     normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.staff.PutStaffUser(ctx, staff); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return storage.StaffUser{}, apperrors.New(apperrors.CodeStaffEmailTaken, fmt.Sprintf("staff email %s is already registered", normalized))
		}
		return storage.StaffUser{}, fmt.Errorf("store staff user: %w", err)
	}
	return staff, nil
}

// GetStaffUser returns one staff account by ID.
func (s *Service) GetStaffUser(ctx context.Context, staffID string) (storage.StaffUser, error) {
	if s == nil || s.staff == nil {
		return storage.StaffUser{}, apperrors.New(apperrors.CodeStorageUnavailable, "staff storage is not configured")
	}
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return storage.StaffUser{}, apperrors.New(apperrors.CodeStaffNotFound, "staff member not found")
	}
	staff, err := s.staff.GetStaffUser(ctx, staffID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.StaffUser{}, apperrors.New(apperrors.CodeStaffNotFound, fmt.Sprintf("staff member %s not found", staffID))
		}
		return storage.StaffUser{}, fmt.Errorf("load staff user: %w", err)
	}
	return staff, nil
}

// ListStaffUsers returns one page of staff accounts.
func (s *Service) ListStaffUsers(ctx context.Context, pageSize int, pageToken string) (storage.StaffPage, error) {
	if s == nil || s.staff == nil {
		return storage.StaffPage{}, apperrors.New(apperrors.CodeStorageUnavailable, "staff storage is not configured")
	}
	page, err := s.staff.ListStaffUsers(ctx, pageSize, pageToken)
	if err != nil {
		return storage.StaffPage{}, fmt.Errorf("list staff users: %w", err)
	}
	return page, nil
}

// MagicLinkIssue describes one minted sign-in link.
type MagicLinkIssue struct {
	URL       string
	Staff     storage.StaffUser
	ExpiresAt time.Time
}

// StartMagicLink mints a single-use sign-in token for a staff email.
func (s *Service) StartMagicLink(ctx context.Context, email string) (MagicLinkIssue, error) {
	if s == nil || s.staff == nil || s.magicLinks == nil {
		return MagicLinkIssue{}, apperrors.New(apperrors.CodeStorageUnavailable, "magic link storage is not configured")
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return MagicLinkIssue{}, err
	}

	staff, err := s.staff.GetStaffUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return MagicLinkIssue{}, apperrors.New(apperrors.CodeStaffNotFound, fmt.Sprintf("no staff member with email %s", normalized))
		}
		return MagicLinkIssue{}, fmt.Errorf("load staff user: %w", err)
	}

	token, err := s.newID()
	if err != nil {
		return MagicLinkIssue{}, fmt.Errorf("generate magic link token: %w", err)
	}
	now := s.clock().UTC()
	expiresAt := now.Add(s.links.TTL)
	if err := s.magicLinks.PutMagicLink(ctx, storage.MagicLink{
		Token:     token,
		StaffID:   staff.ID,
		Email:     normalized,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}); err != nil {
		return MagicLinkIssue{}, fmt.Errorf("store magic link: %w", err)
	}

	magicURL, err := buildMagicLinkURL(s.links.BaseURL, token)
	if err != nil {
		return MagicLinkIssue{}, fmt.Errorf("build magic link url: %w", err)
	}
	return MagicLinkIssue{URL: magicURL, Staff: staff, ExpiresAt: expiresAt}, nil
}

// ConsumeMagicLink redeems a sign-in token once and returns its staff account.
func (s *Service) ConsumeMagicLink(ctx context.Context, token string) (storage.StaffUser, error) {
	if s == nil || s.staff == nil || s.magicLinks == nil {
		return storage.StaffUser{}, apperrors.New(apperrors.CodeStorageUnavailable, "magic link storage is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return storage.StaffUser{}, apperrors.New(apperrors.CodeMagicLinkNotFound, "magic link token is required")
	}

	link, err := s.magicLinks.GetMagicLink(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.StaffUser{}, apperrors.New(apperrors.CodeMagicLinkNotFound, "magic link not found")
		}
		return storage.StaffUser{}, fmt.Errorf("load magic link: %w", err)
	}

	now := s.clock().UTC()
	if link.UsedAt != nil {
		return storage.StaffUser{}, apperrors.New(apperrors.CodeMagicLinkUsed, "magic link already used")
	}
	if now.After(link.ExpiresAt) {
		return storage.StaffUser{}, apperrors.New(apperrors.CodeMagicLinkExpired, "magic link expired")
	}

	if err := s.magicLinks.MarkMagicLinkUsed(ctx, token, now); err != nil {
		return storage.StaffUser{}, fmt.Errorf("mark magic link used: %w", err)
	}
	return s.GetStaffUser(ctx, link.StaffID)
}

// CreateSession issues one durable portal session for a principal.
func (s *Service) CreateSession(ctx context.Context, kind, subjectID string, ttl time.Duration) (storage.Session, error) {
	if s == nil || s.sessions == nil {
		return storage.Session{}, apperrors.New(apperrors.CodeStorageUnavailable, "session storage is not configured")
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return storage.Session{}, fmt.Errorf("session subject id is required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	sessionID, err := s.newID()
	if err != nil {
		return storage.Session{}, fmt.Errorf("generate session id: %w", err)
	}
	now := s.clock().UTC()
	session := storage.Session{
		ID:        sessionID,
		Kind:      kind,
		SubjectID: subjectID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.sessions.PutSession(ctx, session); err != nil {
		return storage.Session{}, fmt.Errorf("put session: %w", err)
	}
	return session, nil
}

// ResolveSession returns the active session behind a cookie value. Revoked and
// expired sessions resolve to an error.
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (storage.Session, error) {
	if s == nil || s.sessions == nil {
		return storage.Session{}, apperrors.New(apperrors.CodeStorageUnavailable, "session storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return storage.Session{}, apperrors.New(apperrors.CodeSessionNotFound, "session not found")
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Session{}, apperrors.New(apperrors.CodeSessionNotFound, "session not found")
		}
		return storage.Session{}, fmt.Errorf("get session: %w", err)
	}
	now := s.clock().UTC()
	if session.RevokedAt != nil || !session.ExpiresAt.After(now) {
		return storage.Session{}, apperrors.New(apperrors.CodeSessionExpired, "session expired")
	}
	return session, nil
}

// RevokeSession tears down one session. Missing sessions are not an error.
func (s *Service) RevokeSession(ctx context.Context, sessionID string) error {
	if s == nil || s.sessions == nil {
		return apperrors.New(apperrors.CodeStorageUnavailable, "session storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.RevokeSession(ctx, sessionID, s.clock().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeResult reports how many dead records a purge removed.
type PurgeResult struct {
	SessionsDeleted   int64
	MagicLinksDeleted int64
}

// PurgeExpired removes expired or consumed sessions and magic links.
func (s *Service) PurgeExpired(ctx context.Context) (PurgeResult, error) {
	if s == nil || s.sessions == nil || s.magicLinks == nil {
		return PurgeResult{}, apperrors.New(apperrors.CodeStorageUnavailable, "session storage is not configured")
	}
	now := s.clock().UTC()

	var result PurgeResult
	deletedSessions, err := s.sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		return result, fmt.Errorf("delete expired sessions: %w", err)
	}
	result.SessionsDeleted = deletedSessions

	deletedLinks, err := s.magicLinks.DeleteExpiredMagicLinks(ctx, now)
	if err != nil {
		return result, fmt.Errorf("delete expired magic links: %w", err)
	}
	result.MagicLinksDeleted = deletedLinks
	return result, nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperrors.New(apperrors.CodeStaffEmailInvalid, "staff email is required")
	}
	parsed, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStaffEmailInvalid, "staff email is invalid", err)
	}
	return strings.ToLower(parsed.Address), nil
}

func buildMagicLinkURL(base string, token string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
