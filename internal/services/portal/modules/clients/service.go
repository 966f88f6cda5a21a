package clients

import (
	"context"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
)

// rosterLimit caps the staff directory listing.
const rosterLimit = 200

// Client is the roster projection shown on the staff directory.
type Client struct {
	ID        string
	Name      string
	Email     string
	Locale    string
	CreatedAt time.Time
}

// CreateClientInput carries the staff form fields for a new roster entry.
type CreateClientInput struct {
	Name      string
	Email     string
	Locale    string
	CreatedBy string
}

// AccessLink is one freshly minted client sign-in link.
type AccessLink struct {
	ClientID  string
	Email     string
	URL       string
	ExpiresAt time.Time
}

// ClientGateway is the boundary the clients module calls for roster state
// and access link issuance.
type ClientGateway interface {
	ListClients(ctx context.Context, limit int) ([]Client, error)
	OpenRequestCounts(ctx context.Context, clientIDs []string) (map[string]int, error)
	CreateClient(ctx context.Context, input CreateClientInput) (Client, error)
	IssueAccessLink(ctx context.Context, clientID, actorID string) (AccessLink, error)
}

const rosterUnavailableMessage = "client roster service is not configured"

func errRosterUnavailable() error {
	return apperrors.New(apperrors.CodeStorageUnavailable, rosterUnavailableMessage)
}

// unavailableGateway fails every roster call when no gateway was wired.
type unavailableGateway struct{}

func (unavailableGateway) ListClients(context.Context, int) ([]Client, error) {
	return nil, errRosterUnavailable()
}

func (unavailableGateway) OpenRequestCounts(context.Context, []string) (map[string]int, error) {
	return nil, errRosterUnavailable()
}

func (unavailableGateway) CreateClient(context.Context, CreateClientInput) (Client, error) {
	return Client{}, errRosterUnavailable()
}

func (unavailableGateway) IssueAccessLink(context.Context, string, string) (AccessLink, error) {
	return AccessLink{}, errRosterUnavailable()
}

type service struct {
	gateway ClientGateway
}

func newService(gateway ClientGateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

func (s service) createClient(ctx context.Context, input CreateClientInput) (Client, error) {
	return s.gateway.CreateClient(ctx, input)
}

func (s service) issueAccessLink(ctx context.Context, clientID, actorID string) (AccessLink, error) {
	return s.gateway.IssueAccessLink(ctx, clientID, actorID)
}

// rosterEntry pairs a client with its open request count for the directory.
type rosterEntry struct {
	client       Client
	openRequests int
}

func (s service) loadRoster(ctx context.Context) ([]rosterEntry, error) {
	clients, err := s.gateway.ListClients(ctx, rosterLimit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(clients))
	for _, client := range clients {
		ids = append(ids, client.ID)
	}
	counts, err := s.gateway.OpenRequestCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries := make([]rosterEntry, 0, len(clients))
	for _, client := range clients {
		entries = append(entries, rosterEntry{client: client, openRequests: counts[client.ID]})
	}
	return entries, nil
}
