package settings

import (
	"context"

	idservice "github.com/ashmont/clientdocs/internal/services/identity/service"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
)

// identityGateway adapts the identity service to the settings module
// boundary.
type identityGateway struct {
	identity *idservice.Service
}

// NewIdentityGateway wires the module to the in-process identity service.
func NewIdentityGateway(deps module.Dependencies) SettingsGateway {
	if deps.Identity == nil {
		return unavailableGateway{}
	}
	return identityGateway{identity: deps.Identity}
}

func (g identityGateway) ListStaffMembers(ctx context.Context, limit int) ([]StaffMember, error) {
	page, err := g.identity.ListStaffUsers(ctx, limit, "")
	if err != nil {
		return nil, err
	}
	members := make([]StaffMember, 0, len(page.Staff))
	for _, staff := range page.Staff {
		members = append(members, StaffMember{
			ID:       staff.ID,
			Name:     staff.Name,
			Email:    staff.Email,
			JoinedAt: staff.CreatedAt,
		})
	}
	return members, nil
}
