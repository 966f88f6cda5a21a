package clients

import (
	"context"
	"strings"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	"github.com/ashmont/clientdocs/internal/services/documents/domain"
	docservice "github.com/ashmont/clientdocs/internal/services/documents/service"
	"github.com/ashmont/clientdocs/internal/services/portal/access"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
)

// rosterGateway adapts the documents service and the grant signer to the
// clients module boundary.
type rosterGateway struct {
	docs   *docservice.Service
	signer access.SignerConfig
}

// NewRosterGateway wires the module to the in-process documents service and
// the access grant signer.
func NewRosterGateway(deps module.Dependencies) ClientGateway {
	if deps.Documents == nil {
		return unavailableGateway{}
	}
	return rosterGateway{docs: deps.Documents, signer: deps.AccessSigner}
}

func (g rosterGateway) ListClients(ctx context.Context, limit int) ([]Client, error) {
	page, err := g.docs.ListClients(ctx, limit, "")
	if err != nil {
		return nil, err
	}
	clients := make([]Client, 0, len(page.Clients))
	for _, client := range page.Clients {
		clients = append(clients, toClient(client))
	}
	return clients, nil
}

func (g rosterGateway) OpenRequestCounts(ctx context.Context, clientIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(clientIDs))
	for _, clientID := range clientIDs {
		clientID = strings.TrimSpace(clientID)
		if clientID == "" {
			continue
		}
		byStatus, err := g.docs.RequestStatusCounts(ctx, clientID)
		if err != nil {
			return nil, err
		}
		counts[clientID] = int(byStatus[string(domain.RequestStatusOpen)])
	}
	return counts, nil
}

func (g rosterGateway) CreateClient(ctx context.Context, input CreateClientInput) (Client, error) {
	created, err := g.docs.CreateClient(ctx, domain.CreateClientInput{
		Name:   input.Name,
		Email:  input.Email,
		Locale: input.Locale,
	}, input.CreatedBy)
	if err != nil {
		return Client{}, err
	}
	return toClient(created), nil
}

func (g rosterGateway) IssueAccessLink(ctx context.Context, clientID, actorID string) (AccessLink, error) {
	if len(g.signer.Key) == 0 {
		return AccessLink{}, apperrors.New(apperrors.CodeStorageUnavailable, "access grant signer is not configured")
	}
	client, err := g.docs.GetClient(ctx, clientID)
	if err != nil {
		return AccessLink{}, err
	}
	issued, err := access.IssueGrant(g.signer, client.ID, client.Email, nil)
	if err != nil {
		return AccessLink{}, err
	}
	g.docs.RecordAccessLinkIssued(ctx, actorID, client.ID)
	return AccessLink{
		ClientID:  client.ID,
		Email:     client.Email,
		URL:       issued.URL,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

func toClient(client domain.Client) Client {
	return Client{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Locale:    client.Locale,
		CreatedAt: client.CreatedAt,
	}
}
