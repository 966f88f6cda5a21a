package settings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	module "github.com/ashmont/clientdocs/internal/services/portal/module"
	"github.com/ashmont/clientdocs/internal/services/portal/routepath"
)

// staticGateway replays one fixed directory for route-contract tests.
type staticGateway struct{}

func (staticGateway) ListStaffMembers(context.Context, int) ([]StaffMember, error) {
	return []StaffMember{{ID: "staff-1", Name: "Dana Silva", Email: "dana@ashmont.example"}}, nil
}

func TestRegisterRoutesHandlesNilMux(t *testing.T) {
	t.Parallel()

	registerRoutes(nil, newHandlers(newService(staticGateway{}), module.Dependencies{}))
}

func TestRegisterRoutesPathAndMethodContracts(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(newService(staticGateway{}), staffDependencies("staff-1")))

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "settings index", method: http.MethodGet, path: routepath.SettingsPrefix, wantStatus: http.StatusOK},
		{name: "settings head", method: http.MethodHead, path: routepath.SettingsPrefix, wantStatus: http.StatusOK},
		{name: "settings post rejected", method: http.MethodPost, path: routepath.SettingsPrefix, wantStatus: http.StatusMethodNotAllowed},
		{name: "language save", method: http.MethodPost, path: routepath.AppSettingsLanguage, wantStatus: http.StatusFound},
		{name: "language get rejected", method: http.MethodGet, path: routepath.AppSettingsLanguage, wantStatus: http.StatusMethodNotAllowed},
		{name: "unknown subpath", method: http.MethodGet, path: routepath.SettingsPrefix + "bogus", wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}

func TestModuleMountServesSettingsPrefix(t *testing.T) {
	t.Parallel()

	mount, err := NewWithGateway(staticGateway{}).Mount(staffDependencies("staff-1"))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if mount.Prefix != routepath.SettingsPrefix {
		t.Fatalf("Prefix = %q, want %q", mount.Prefix, routepath.SettingsPrefix)
	}

	req := httptest.NewRequest(http.MethodGet, routepath.SettingsPrefix, nil)
	rr := httptest.NewRecorder()
	mount.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestMountWithoutGatewayFailsClosedForStaff(t *testing.T) {
	t.Parallel()

	mount, err := New().Mount(staffDependencies("staff-1"))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, routepath.SettingsPrefix, nil)
	rr := httptest.NewRecorder()
	mount.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}
