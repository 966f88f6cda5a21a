package activity

import (
	"context"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	"github.com/ashmont/clientdocs/internal/services/documents/events"
)

// feedLimit caps one activity feed page.
const feedLimit = 100

// AuditEntry is one audited portal action shown on the feed.
type AuditEntry struct {
	Action    string
	ActorID   string
	ClientID  string
	RequestID string
	Detail    string
	Timestamp time.Time
}

// ActivityGateway is the boundary the activity module reads audit state
// through. Subscribe returns a live request event channel plus a release
// function; the channel closes on release.
type ActivityGateway interface {
	ListAuditEvents(ctx context.Context, filter string, limit int) ([]AuditEntry, error)
	Subscribe() (<-chan events.RequestEvent, func())
}

const activityUnavailableMessage = "audit log service is not configured"

func errActivityUnavailable() error {
	return apperrors.New(apperrors.CodeStorageUnavailable, activityUnavailableMessage)
}

// unavailableGateway fails reads and hands out pre-closed event channels
// when no gateway was wired.
type unavailableGateway struct{}

func (unavailableGateway) ListAuditEvents(context.Context, string, int) ([]AuditEntry, error) {
	return nil, errActivityUnavailable()
}

func (unavailableGateway) Subscribe() (<-chan events.RequestEvent, func()) {
	ch := make(chan events.RequestEvent)
	close(ch)
	return ch, func() {}
}

type service struct {
	gateway ActivityGateway
}

func newService(gateway ActivityGateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

func (s service) listActivity(ctx context.Context, filter string) ([]AuditEntry, error) {
	return s.gateway.ListAuditEvents(ctx, filter, feedLimit)
}

func (s service) subscribe() (<-chan events.RequestEvent, func()) {
	return s.gateway.Subscribe()
}
