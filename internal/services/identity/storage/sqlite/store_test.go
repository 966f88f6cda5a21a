package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashmont/clientdocs/internal/services/identity/storage"
)

func TestPutAndGetStaffUser(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	staff := storage.StaffUser{
		ID:        "staff-1",
		Name:      "Dana Flores",
		Email:     "dana@firm.example",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.PutStaffUser(context.Background(), staff); err != nil {
		t.Fatalf("put staff: %v", err)
	}

	got, err := store.GetStaffUser(context.Background(), "staff-1")
	if err != nil {
		t.Fatalf("get staff: %v", err)
	}
	if got.Email != "dana@firm.example" {
		t.Fatalf("email = %q, want %q", got.Email, "dana@firm.example")
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, now)
	}

	// Upsert replaces mutable fields and keeps the creation time.
	staff.Name = "Dana Flores-Reyes"
	staff.UpdatedAt = now.Add(time.Hour)
	if err := store.PutStaffUser(context.Background(), staff); err != nil {
		t.Fatalf("update staff: %v", err)
	}
	got, err = store.GetStaffUser(context.Background(), "staff-1")
	if err != nil {
		t.Fatalf("get updated staff: %v", err)
	}
	if got.Name != "Dana Flores-Reyes" {
		t.Fatalf("updated name = %q, want %q", got.Name, "Dana Flores-Reyes")
	}

	if _, err := store.GetStaffUser(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing staff error = %v, want ErrNotFound", err)
	}
}

func TestGetStaffUserByEmail(t *testing.T) {
	store := openTempStore(t)
	seedStaff(t, store, "staff-1", "dana@firm.example")

	got, err := store.GetStaffUserByEmail(context.Background(), "dana@firm.example")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != "staff-1" {
		t.Fatalf("staff ID = %q, want staff-1", got.ID)
	}

	if _, err := store.GetStaffUserByEmail(context.Background(), "nobody@firm.example"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("unknown email error = %v, want ErrNotFound", err)
	}
}

func TestPutStaffUserRejectsDuplicateEmail(t *testing.T) {
	store := openTempStore(t)
	seedStaff(t, store, "staff-1", "dana@firm.example")

	err := store.PutStaffUser(context.Background(), storage.StaffUser{
		ID:    "staff-2",
		Name:  "Other",
		Email: "dana@firm.example",
	})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate email error = %v, want ErrAlreadyExists", err)
	}
}

func TestListStaffUsersPaging(t *testing.T) {
	store := openTempStore(t)
	seedStaff(t, store, "staff-1", "a@firm.example")
	seedStaff(t, store, "staff-2", "b@firm.example")
	seedStaff(t, store, "staff-3", "c@firm.example")

	first, err := store.ListStaffUsers(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(first.Staff) != 2 {
		t.Fatalf("first page = %d staff, want 2", len(first.Staff))
	}
	if first.NextPageToken == "" {
		t.Fatal("expected next page token")
	}

	second, err := store.ListStaffUsers(context.Background(), 2, first.NextPageToken)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second.Staff) != 1 {
		t.Fatalf("second page = %d staff, want 1", len(second.Staff))
	}
	if second.NextPageToken != "" {
		t.Fatalf("next page token = %q, want empty", second.NextPageToken)
	}
}

func TestMagicLinkConsumeFlow(t *testing.T) {
	store := openTempStore(t)
	seedStaff(t, store, "staff-1", "dana@firm.example")
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	link := storage.MagicLink{
		Token:     "tok-1",
		StaffID:   "staff-1",
		Email:     "dana@firm.example",
		CreatedAt: now,
		ExpiresAt: now.Add(15 * time.Minute),
	}
	if err := store.PutMagicLink(context.Background(), link); err != nil {
		t.Fatalf("put magic link: %v", err)
	}

	got, err := store.GetMagicLink(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("get magic link: %v", err)
	}
	if got.UsedAt != nil {
		t.Fatal("fresh link must not be marked used")
	}
	if !got.ExpiresAt.Equal(link.ExpiresAt) {
		t.Fatalf("expires at = %v, want %v", got.ExpiresAt, link.ExpiresAt)
	}

	usedAt := now.Add(time.Minute)
	if err := store.MarkMagicLinkUsed(context.Background(), "tok-1", usedAt); err != nil {
		t.Fatalf("mark used: %v", err)
	}
	got, err = store.GetMagicLink(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("get consumed link: %v", err)
	}
	if got.UsedAt == nil || !got.UsedAt.Equal(usedAt) {
		t.Fatalf("used at = %v, want %v", got.UsedAt, usedAt)
	}

	// A second consume attempt finds no unused row.
	if err := store.MarkMagicLinkUsed(context.Background(), "tok-1", usedAt.Add(time.Minute)); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second consume error = %v, want ErrNotFound", err)
	}

	if _, err := store.GetMagicLink(context.Background(), "tok-missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing link error = %v, want ErrNotFound", err)
	}
}

func TestDeleteExpiredMagicLinks(t *testing.T) {
	store := openTempStore(t)
	seedStaff(t, store, "staff-1", "dana@firm.example")
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	used := now.Add(-time.Minute)

	links := []storage.MagicLink{
		{Token: "tok-live", StaffID: "staff-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		{Token: "tok-expired", StaffID: "staff-1", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
		{Token: "tok-used", StaffID: "staff-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour), UsedAt: &used},
	}
	for _, link := range links {
		if err := store.PutMagicLink(context.Background(), link); err != nil {
			t.Fatalf("put %s: %v", link.Token, err)
		}
	}

	deleted, err := store.DeleteExpiredMagicLinks(context.Background(), now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}

	if _, err := store.GetMagicLink(context.Background(), "tok-live"); err != nil {
		t.Fatalf("live link removed: %v", err)
	}
	if _, err := store.GetMagicLink(context.Background(), "tok-expired"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expired link error = %v, want ErrNotFound", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	session := storage.Session{
		ID:        "sess-1",
		Kind:      storage.PrincipalStaff,
		SubjectID: "staff-1",
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	if err := store.PutSession(context.Background(), session); err != nil {
		t.Fatalf("put session: %v", err)
	}

	got, err := store.GetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Kind != storage.PrincipalStaff || got.SubjectID != "staff-1" {
		t.Fatalf("session = %+v, want staff/staff-1", got)
	}
	if got.RevokedAt != nil {
		t.Fatal("fresh session must not be revoked")
	}

	revokedAt := now.Add(time.Hour)
	if err := store.RevokeSession(context.Background(), "sess-1", revokedAt); err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	got, err = store.GetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get revoked session: %v", err)
	}
	if got.RevokedAt == nil || !got.RevokedAt.Equal(revokedAt) {
		t.Fatalf("revoked at = %v, want %v", got.RevokedAt, revokedAt)
	}

	if err := store.RevokeSession(context.Background(), "sess-1", revokedAt.Add(time.Minute)); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second revoke error = %v, want ErrNotFound", err)
	}

	if err := store.PutSession(context.Background(), storage.Session{
		ID:        "sess-bad",
		Kind:      "robot",
		SubjectID: "x",
		ExpiresAt: now,
	}); err == nil {
		t.Fatal("expected error for unrecognized session kind")
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	revoked := now.Add(-time.Minute)

	sessions := []storage.Session{
		{ID: "sess-live", Kind: storage.PrincipalStaff, SubjectID: "staff-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		{ID: "sess-expired", Kind: storage.PrincipalClient, SubjectID: "c-123", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
		{ID: "sess-revoked", Kind: storage.PrincipalStaff, SubjectID: "staff-2", CreatedAt: now, ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked},
	}
	for _, session := range sessions {
		if err := store.PutSession(context.Background(), session); err != nil {
			t.Fatalf("put %s: %v", session.ID, err)
		}
	}

	deleted, err := store.DeleteExpiredSessions(context.Background(), now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}
	if _, err := store.GetSession(context.Background(), "sess-live"); err != nil {
		t.Fatalf("live session removed: %v", err)
	}
}

func seedStaff(t *testing.T, store *Store, staffID, email string) {
	t.Helper()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	err := store.PutStaffUser(context.Background(), storage.StaffUser{
		ID:        staffID,
		Name:      "Seeded Staff",
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed staff %s: %v", staffID, err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "identity.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
