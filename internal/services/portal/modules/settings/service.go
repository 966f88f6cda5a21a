package settings

import (
	"context"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
)

// directoryLimit caps the staff directory listing.
const directoryLimit = 100

// StaffMember is one staff directory entry.
type StaffMember struct {
	ID       string
	Name     string
	Email    string
	JoinedAt time.Time
}

// SettingsGateway is the boundary the settings module reads directory
// state through.
type SettingsGateway interface {
	ListStaffMembers(ctx context.Context, limit int) ([]StaffMember, error)
}

const identityUnavailableMessage = "identity service is not configured"

// unavailableGateway fails directory reads when no gateway was wired.
type unavailableGateway struct{}

func (unavailableGateway) ListStaffMembers(context.Context, int) ([]StaffMember, error) {
	return nil, apperrors.New(apperrors.CodeStorageUnavailable, identityUnavailableMessage)
}

type service struct {
	gateway SettingsGateway
}

func newService(gateway SettingsGateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

func (s service) listStaff(ctx context.Context) ([]StaffMember, error) {
	return s.gateway.ListStaffMembers(ctx, directoryLimit)
}
