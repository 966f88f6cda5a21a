package requests

import (
	"context"
	"io"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
)

// DocumentRequest is a transport-safe view of one document request.
type DocumentRequest struct {
	ID        string
	ClientID  string
	Title     string
	Status    string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attachment is a transport-safe view of one stored fulfilment file.
type Attachment struct {
	ID         string
	Filename   string
	PageCount  int
	UploadedAt time.Time
}

// CreateDocumentRequestInput carries posted form values to the gateway.
// ClientID and Title travel exactly as submitted; validation lives behind
// the gateway.
type CreateDocumentRequestInput struct {
	ClientID  string
	Title     string
	CreatedBy string
}

// ListDocumentRequestsInput narrows a request listing.
type ListDocumentRequestsInput struct {
	// ClientID scopes the listing to one client when non-empty.
	ClientID string
	// Filter is an optional AIP-160 expression (staff listings).
	Filter string
	// Limit caps the number of requests returned.
	Limit int
}

// RequestGateway is the action boundary request handlers post through.
// Handlers depend only on this interface; composition supplies the
// documents-service implementation.
type RequestGateway interface {
	CreateDocumentRequest(ctx context.Context, input CreateDocumentRequestInput) (DocumentRequest, error)
	GetDocumentRequest(ctx context.Context, requestID string) (DocumentRequest, error)
	ListDocumentRequests(ctx context.Context, input ListDocumentRequestsInput) ([]DocumentRequest, error)
	SetDocumentRequestStatus(ctx context.Context, requestID, status, actorID string) (DocumentRequest, error)
	AttachFulfillment(ctx context.Context, requestID, filename string, content io.Reader, actorID string) (DocumentRequest, error)
	ListAttachments(ctx context.Context, requestID string) ([]Attachment, error)
	// ClientNames resolves display names for the given client ids. Unknown
	// ids are simply absent from the result.
	ClientNames(ctx context.Context, clientIDs []string) (map[string]string, error)
}

const documentsUnavailableMessage = "documents service is not configured"

type unavailableGateway struct{}

func errDocumentsUnavailable() error {
	return apperrors.New(apperrors.CodeStorageUnavailable, documentsUnavailableMessage)
}

func (unavailableGateway) CreateDocumentRequest(context.Context, CreateDocumentRequestInput) (DocumentRequest, error) {
	return DocumentRequest{}, errDocumentsUnavailable()
}

func (unavailableGateway) GetDocumentRequest(context.Context, string) (DocumentRequest, error) {
	return DocumentRequest{}, errDocumentsUnavailable()
}

func (unavailableGateway) ListDocumentRequests(context.Context, ListDocumentRequestsInput) ([]DocumentRequest, error) {
	return nil, errDocumentsUnavailable()
}

func (unavailableGateway) SetDocumentRequestStatus(context.Context, string, string, string) (DocumentRequest, error) {
	return DocumentRequest{}, errDocumentsUnavailable()
}

func (unavailableGateway) AttachFulfillment(context.Context, string, string, io.Reader, string) (DocumentRequest, error) {
	return DocumentRequest{}, errDocumentsUnavailable()
}

func (unavailableGateway) ListAttachments(context.Context, string) ([]Attachment, error) {
	return nil, errDocumentsUnavailable()
}

func (unavailableGateway) ClientNames(context.Context, []string) (map[string]string, error) {
	return nil, errDocumentsUnavailable()
}

type service struct {
	gateway RequestGateway
}

func newService(gateway RequestGateway) service {
	if gateway == nil {
		gateway = unavailableGateway{}
	}
	return service{gateway: gateway}
}

// createRequest forwards the posted values to the gateway unmodified.
func (s service) createRequest(ctx context.Context, input CreateDocumentRequestInput) (DocumentRequest, error) {
	return s.gateway.CreateDocumentRequest(ctx, input)
}

func (s service) getRequest(ctx context.Context, requestID string) (DocumentRequest, error) {
	return s.gateway.GetDocumentRequest(ctx, requestID)
}

func (s service) listRequests(ctx context.Context, input ListDocumentRequestsInput) ([]DocumentRequest, error) {
	return s.gateway.ListDocumentRequests(ctx, input)
}

func (s service) clientNames(ctx context.Context, items []DocumentRequest) (map[string]string, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ClientID)
	}
	return s.gateway.ClientNames(ctx, ids)
}

func (s service) setStatus(ctx context.Context, requestID, status, actorID string) (DocumentRequest, error) {
	return s.gateway.SetDocumentRequestStatus(ctx, requestID, status, actorID)
}

func (s service) attach(ctx context.Context, requestID, filename string, content io.Reader, actorID string) (DocumentRequest, error) {
	return s.gateway.AttachFulfillment(ctx, requestID, filename, content, actorID)
}

// requestDetail is the fully resolved state behind one detail page.
type requestDetail struct {
	request     DocumentRequest
	clientName  string
	attachments []Attachment
}

func (s service) loadDetail(ctx context.Context, requestID string) (requestDetail, error) {
	request, err := s.gateway.GetDocumentRequest(ctx, requestID)
	if err != nil {
		return requestDetail{}, err
	}
	attachments, err := s.gateway.ListAttachments(ctx, request.ID)
	if err != nil {
		return requestDetail{}, err
	}
	names, err := s.gateway.ClientNames(ctx, []string{request.ClientID})
	if err != nil {
		return requestDetail{}, err
	}
	return requestDetail{
		request:     request,
		clientName:  names[request.ClientID],
		attachments: attachments,
	}, nil
}
