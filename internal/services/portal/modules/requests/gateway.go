package requests

import (
	"context"
	"io"
	"strings"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	"github.com/ashmont/clientdocs/internal/services/documents/domain"
	docservice "github.com/ashmont/clientdocs/internal/services/documents/service"
	module "github.com/ashmont/clientdocs/internal/services/portal/module"
)

// documentsGateway backs RequestGateway with the in-process documents
// service.
type documentsGateway struct {
	docs *docservice.Service
}

// NewDocumentsGateway adapts the composed documents service to the module
// gateway. A missing service yields a gateway that fails closed.
func NewDocumentsGateway(deps module.Dependencies) RequestGateway {
	if deps.Documents == nil {
		return unavailableGateway{}
	}
	return documentsGateway{docs: deps.Documents}
}

func (g documentsGateway) CreateDocumentRequest(ctx context.Context, input CreateDocumentRequestInput) (DocumentRequest, error) {
	created, err := g.docs.CreateDocumentRequest(ctx, docservice.CreateDocumentRequestInput{
		ClientID:  input.ClientID,
		Title:     input.Title,
		CreatedBy: input.CreatedBy,
	})
	if err != nil {
		return DocumentRequest{}, err
	}
	return toDocumentRequest(created), nil
}

func (g documentsGateway) GetDocumentRequest(ctx context.Context, requestID string) (DocumentRequest, error) {
	found, err := g.docs.GetDocumentRequest(ctx, requestID)
	if err != nil {
		return DocumentRequest{}, err
	}
	return toDocumentRequest(found), nil
}

func (g documentsGateway) ListDocumentRequests(ctx context.Context, input ListDocumentRequestsInput) ([]DocumentRequest, error) {
	items, err := g.docs.ListDocumentRequests(ctx, docservice.ListDocumentRequestsInput{
		ClientID: input.ClientID,
		Filter:   input.Filter,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]DocumentRequest, 0, len(items))
	for _, item := range items {
		out = append(out, toDocumentRequest(item))
	}
	return out, nil
}

func (g documentsGateway) SetDocumentRequestStatus(ctx context.Context, requestID, status, actorID string) (DocumentRequest, error) {
	updated, err := g.docs.SetDocumentRequestStatus(ctx, requestID, status, actorID)
	if err != nil {
		return DocumentRequest{}, err
	}
	return toDocumentRequest(updated), nil
}

func (g documentsGateway) AttachFulfillment(ctx context.Context, requestID, filename string, content io.Reader, actorID string) (DocumentRequest, error) {
	updated, err := g.docs.AttachFulfillment(ctx, requestID, filename, content, actorID)
	if err != nil {
		return DocumentRequest{}, err
	}
	return toDocumentRequest(updated), nil
}

func (g documentsGateway) ListAttachments(ctx context.Context, requestID string) ([]Attachment, error) {
	records, err := g.docs.ListAttachments(ctx, requestID)
	if err != nil {
		return nil, err
	}
	out := make([]Attachment, 0, len(records))
	for _, record := range records {
		out = append(out, Attachment{
			ID:         record.ID,
			Filename:   record.Filename,
			PageCount:  record.PageCount,
			UploadedAt: record.CreatedAt,
		})
	}
	return out, nil
}

func (g documentsGateway) ClientNames(ctx context.Context, clientIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(clientIDs))
	seen := make(map[string]bool, len(clientIDs))
	for _, clientID := range clientIDs {
		if strings.TrimSpace(clientID) == "" || seen[clientID] {
			continue
		}
		seen[clientID] = true
		client, err := g.docs.GetClient(ctx, clientID)
		if err != nil {
			if apperrors.CodeOf(err) == apperrors.CodeClientNotFound {
				continue
			}
			return nil, err
		}
		names[clientID] = client.Name
	}
	return names, nil
}

func toDocumentRequest(request domain.DocumentRequest) DocumentRequest {
	return DocumentRequest{
		ID:        request.ID,
		ClientID:  request.ClientID,
		Title:     request.Title,
		Status:    string(request.Status),
		CreatedBy: request.CreatedBy,
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
}
