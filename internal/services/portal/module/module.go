// Package module defines the feature contract used by portal composition.
package module

import (
	"net/http"

	docservice "github.com/ashmont/clientdocs/internal/services/documents/service"
	idservice "github.com/ashmont/clientdocs/internal/services/identity/service"
	"github.com/ashmont/clientdocs/internal/services/portal/access"
	"github.com/ashmont/clientdocs/internal/services/portal/templates"
)

// Viewer carries chrome state for authenticated app pages. It is the
// template viewer so modules and pages share one shape.
type Viewer = templates.Viewer

// ResolveViewer resolves app chrome viewer state for a request.
type ResolveViewer func(*http.Request) Viewer

// ResolveLanguage returns the effective request language.
type ResolveLanguage func(*http.Request) string

// ResolveStaffID resolves the signed-in staff user id. It returns "" for
// client sessions and anonymous requests.
type ResolveStaffID func(*http.Request) string

// ResolveClientID resolves the signed-in client id. It returns "" for
// staff sessions and anonymous requests.
type ResolveClientID func(*http.Request) string

// Dependencies carries shared services and request resolvers handed to
// every module at mount time.
type Dependencies struct {
	Documents      *docservice.Service
	Identity       *idservice.Service
	AccessSigner   access.SignerConfig
	AccessVerifier access.VerifierConfig
	Replay         *access.ReplayStore

	ResolveViewer   ResolveViewer
	ResolveLanguage ResolveLanguage
	ResolveStaffID  ResolveStaffID
	ResolveClientID ResolveClientID
}

// ViewerFor resolves the request viewer, tolerating a missing resolver.
func (d Dependencies) ViewerFor(r *http.Request) Viewer {
	if d.ResolveViewer == nil {
		return Viewer{}
	}
	return d.ResolveViewer(r)
}

// LanguageFor resolves the request language, tolerating a missing resolver.
func (d Dependencies) LanguageFor(r *http.Request) string {
	if d.ResolveLanguage == nil {
		return ""
	}
	return d.ResolveLanguage(r)
}

// StaffIDFor resolves the staff id, tolerating a missing resolver.
func (d Dependencies) StaffIDFor(r *http.Request) string {
	if d.ResolveStaffID == nil {
		return ""
	}
	return d.ResolveStaffID(r)
}

// ClientIDFor resolves the client id, tolerating a missing resolver.
func (d Dependencies) ClientIDFor(r *http.Request) string {
	if d.ResolveClientID == nil {
		return ""
	}
	return d.ResolveClientID(r)
}

// Mount describes a module route mount.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Module declares the minimum contract required by portal composition.
type Module interface {
	ID() string
	Mount(Dependencies) (Mount, error)
}

// HealthReporter is an optional interface for modules that can report
// their operational availability.
type HealthReporter interface {
	Healthy() bool
}
