package maintenance

import (
	"context"
	"time"

	"github.com/ashmont/clientdocs/internal/services/documents/attachments"
)

// identityPurger removes expired sign-in artifacts and owns its store handle.
type identityPurger interface {
	DeleteExpiredMagicLinks(ctx context.Context, now time.Time) (int64, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	Close() error
}

// grantPurger removes consumed grant IDs past their expiry.
type grantPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
	Close() error
}

// blobVerifier re-checks stored attachment blobs.
type blobVerifier interface {
	VerifyAll(ctx context.Context, workers int) ([]attachments.Issue, error)
}
