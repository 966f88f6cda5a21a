package public

import (
	"context"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
)

// MagicLink describes an issued staff sign-in link.
type MagicLink struct {
	Email     string
	URL       string
	ExpiresAt time.Time
}

// Session identifies a freshly minted portal session.
type Session struct {
	ID        string
	ExpiresAt time.Time
}

// AuthGateway is the boundary the public surface calls for sign-in and
// sign-out flows.
type AuthGateway interface {
	// StartMagicLink mints a single-use staff sign-in link for an email.
	StartMagicLink(ctx context.Context, email string) (MagicLink, error)
	// CompleteMagicLink consumes a sign-in token and opens a staff session.
	CompleteMagicLink(ctx context.Context, token string) (Session, error)
	// RedeemAccessGrant consumes a signed client grant and opens a client
	// session. A grant signs in exactly once.
	RedeemAccessGrant(ctx context.Context, grant string) (Session, error)
	// RevokeSession ends a session by id.
	RevokeSession(ctx context.Context, sessionID string) error
}

const signInUnavailableMessage = "sign-in service is not configured"

func errSignInUnavailable() error {
	return apperrors.New(apperrors.CodeStorageUnavailable, signInUnavailableMessage)
}

// unavailableGateway fails every operation closed when no gateway is wired.
type unavailableGateway struct{}

func (unavailableGateway) StartMagicLink(context.Context, string) (MagicLink, error) {
	return MagicLink{}, errSignInUnavailable()
}

func (unavailableGateway) CompleteMagicLink(context.Context, string) (Session, error) {
	return Session{}, errSignInUnavailable()
}

func (unavailableGateway) RedeemAccessGrant(context.Context, string) (Session, error) {
	return Session{}, errSignInUnavailable()
}

func (unavailableGateway) RevokeSession(context.Context, string) error {
	return errSignInUnavailable()
}

type service struct {
	gateway AuthGateway
}

func newService(gateway AuthGateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

func (s service) startMagicLink(ctx context.Context, email string) (MagicLink, error) {
	return s.gateway.StartMagicLink(ctx, email)
}

func (s service) completeMagicLink(ctx context.Context, token string) (Session, error) {
	return s.gateway.CompleteMagicLink(ctx, token)
}

func (s service) redeemAccessGrant(ctx context.Context, grant string) (Session, error) {
	return s.gateway.RedeemAccessGrant(ctx, grant)
}

func (s service) revokeSession(ctx context.Context, sessionID string) error {
	return s.gateway.RevokeSession(ctx, sessionID)
}
