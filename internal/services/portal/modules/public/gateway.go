package public

import (
	"context"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	"github.com/ashmont/clientdocs/internal/services/documents/audit"
	docservice "github.com/ashmont/clientdocs/internal/services/documents/service"
	idservice "github.com/ashmont/clientdocs/internal/services/identity/service"
	idstorage "github.com/ashmont/clientdocs/internal/services/identity/storage"
	"github.com/ashmont/clientdocs/internal/services/portal/access"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
)

// signInGateway adapts the identity service, the documents service, and the
// grant verifier to the public module boundary.
type signInGateway struct {
	identity *idservice.Service
	docs     *docservice.Service
	verifier access.VerifierConfig
	replay   *access.ReplayStore
}

// NewSignInGateway wires the module to the in-process identity and documents
// services plus the access grant verifier.
func NewSignInGateway(deps module.Dependencies) AuthGateway {
	if deps.Identity == nil || deps.Documents == nil {
		return unavailableGateway{}
	}
	return signInGateway{
		identity: deps.Identity,
		docs:     deps.Documents,
		verifier: deps.AccessVerifier,
		replay:   deps.Replay,
	}
}

func (g signInGateway) StartMagicLink(ctx context.Context, email string) (MagicLink, error) {
	issue, err := g.identity.StartMagicLink(ctx, email)
	if err != nil {
		return MagicLink{}, err
	}
	return MagicLink{Email: issue.Staff.Email, URL: issue.URL, ExpiresAt: issue.ExpiresAt}, nil
}

func (g signInGateway) CompleteMagicLink(ctx context.Context, token string) (Session, error) {
	staff, err := g.identity.ConsumeMagicLink(ctx, token)
	if err != nil {
		return Session{}, err
	}
	session, err := g.identity.CreateSession(ctx, idstorage.PrincipalStaff, staff.ID, 0)
	if err != nil {
		return Session{}, err
	}
	g.docs.RecordSignIn(ctx, audit.ActionStaffSignedIn, staff.ID, "")
	return Session{ID: session.ID, ExpiresAt: session.ExpiresAt}, nil
}

func (g signInGateway) RedeemAccessGrant(ctx context.Context, grant string) (Session, error) {
	claims, err := access.ValidateGrant(grant, g.verifier)
	if err != nil {
		return Session{}, err
	}
	client, err := g.docs.GetClient(ctx, claims.ClientID)
	if err != nil {
		// A signed grant whose roster entry is gone reads as invalid
		// instead of disclosing roster state.
		if apperrors.CodeOf(err) == apperrors.CodeClientNotFound {
			return Session{}, apperrors.New(apperrors.CodeGrantInvalid, "access grant subject is unknown")
		}
		return Session{}, err
	}
	// Consume runs right before the session mint so a storage failure
	// earlier in the flow cannot burn an unused grant.
	if err := g.replay.Consume(ctx, claims.JWTID, claims.ExpiresAt); err != nil {
		return Session{}, err
	}
	session, err := g.identity.CreateSession(ctx, idstorage.PrincipalClient, client.ID, 0)
	if err != nil {
		return Session{}, err
	}
	g.docs.RecordSignIn(ctx, audit.ActionClientSignedIn, client.ID, client.ID)
	return Session{ID: session.ID, ExpiresAt: session.ExpiresAt}, nil
}

func (g signInGateway) RevokeSession(ctx context.Context, sessionID string) error {
	return g.identity.RevokeSession(ctx, sessionID)
}
