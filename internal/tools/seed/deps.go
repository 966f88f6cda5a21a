package seed

import (
	"context"

	"github.com/ashmont/clientdocs/internal/services/documents/domain"
	docservice "github.com/ashmont/clientdocs/internal/services/documents/service"
	idstorage "github.com/ashmont/clientdocs/internal/services/identity/storage"
)

// staffRegistrar abstracts staff account creation so tests can inject fakes.
type staffRegistrar interface {
	RegisterStaff(ctx context.Context, name, email string) (idstorage.StaffUser, error)
}

// clientCreator abstracts roster writes.
type clientCreator interface {
	CreateClient(ctx context.Context, input domain.CreateClientInput, actorID string) (domain.Client, error)
}

// requestSeeder abstracts document request writes.
type requestSeeder interface {
	CreateDocumentRequest(ctx context.Context, input docservice.CreateDocumentRequestInput) (domain.DocumentRequest, error)
	SetDocumentRequestStatus(ctx context.Context, requestID, status, actorID string) (domain.DocumentRequest, error)
}

// seedDeps bundles the service surfaces a checklist run writes through.
type seedDeps struct {
	staff    staffRegistrar
	clients  clientCreator
	requests requestSeeder
}
