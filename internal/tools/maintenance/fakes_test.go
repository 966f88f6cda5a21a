package maintenance

import (
	"context"
	"time"

	"github.com/ashmont/clientdocs/internal/services/documents/attachments"
)

// fakeIdentityPurger implements identityPurger with canned counts.
type fakeIdentityPurger struct {
	links       int64
	sessions    int64
	linkErr     error
	sessionErr  error
	closed      bool
	closeErr    error
	lastPurgeAt time.Time
}

func (f *fakeIdentityPurger) DeleteExpiredMagicLinks(_ context.Context, now time.Time) (int64, error) {
	f.lastPurgeAt = now
	if f.linkErr != nil {
		return 0, f.linkErr
	}
	return f.links, nil
}

func (f *fakeIdentityPurger) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.lastPurgeAt = now
	if f.sessionErr != nil {
		return 0, f.sessionErr
	}
	return f.sessions, nil
}

func (f *fakeIdentityPurger) Close() error {
	f.closed = true
	return f.closeErr
}

// fakeGrantPurger implements grantPurger with canned counts.
type fakeGrantPurger struct {
	purged   int
	err      error
	closed   bool
	closeErr error
}

func (f *fakeGrantPurger) PurgeExpired(_ context.Context, _ time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.purged, nil
}

func (f *fakeGrantPurger) Close() error {
	f.closed = true
	return f.closeErr
}

// fakeBlobVerifier implements blobVerifier with canned issues.
type fakeBlobVerifier struct {
	issues     []attachments.Issue
	err        error
	gotWorkers int
}

func (f *fakeBlobVerifier) VerifyAll(_ context.Context, workers int) ([]attachments.Issue, error) {
	f.gotWorkers = workers
	if f.err != nil {
		return nil, f.err
	}
	return f.issues, nil
}
