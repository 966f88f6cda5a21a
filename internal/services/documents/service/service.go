package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	"github.com/ashmont/clientdocs/internal/platform/id"
	"github.com/ashmont/clientdocs/internal/services/documents/attachments"
	"github.com/ashmont/clientdocs/internal/services/documents/audit"
	"github.com/ashmont/clientdocs/internal/services/documents/domain"
	"github.com/ashmont/clientdocs/internal/services/documents/events"
	"github.com/ashmont/clientdocs/internal/services/documents/filter"
	"github.com/ashmont/clientdocs/internal/services/documents/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies spans produced by the documents service.
const tracerName = "clientdocs/documents"

// Service orchestrates client roster and document request use-cases.
type Service struct {
	clients     storage.ClientStore
	requests    storage.RequestStore
	attachments storage.AttachmentStore
	auditLog    storage.AuditStore
	statistics  storage.StatisticsStore
	blobs       *attachments.Store
	audit       *audit.Emitter
	events      *events.Broadcaster
	clock       func() time.Time
	newID       func() (string, error)
	tracer      trace.Tracer
}

// Config wires service dependencies. Clock and NewID default to the
// production implementations when nil.
type Config struct {
	Clients     storage.ClientStore
	Requests    storage.RequestStore
	Attachments storage.AttachmentStore
	AuditLog    storage.AuditStore
	Statistics  storage.StatisticsStore
	Blobs       *attachments.Store
	Events      *events.Broadcaster
	Clock       func() time.Time
	NewID       func() (string, error)
}

// New constructs the documents service.
func New(cfg Config) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		clients:     cfg.Clients,
		requests:    cfg.Requests,
		attachments: cfg.Attachments,
		auditLog:    cfg.AuditLog,
		statistics:  cfg.Statistics,
		blobs:       cfg.Blobs,
		audit:       audit.NewEmitter(cfg.AuditLog),
		events:      cfg.Events,
		clock:       clock,
		newID:       newID,
		tracer:      otel.Tracer(tracerName),
	}
}

// CreateDocumentRequestInput carries the submitted form fields for a new
// document request. ClientID and Title arrive exactly as posted.
type CreateDocumentRequestInput struct {
	ClientID  string
	Title     string
	CreatedBy string
}

// CreateDocumentRequest validates and persists one new open request.
func (s *Service) CreateDocumentRequest(ctx context.Context, input CreateDocumentRequestInput) (domain.DocumentRequest, error) {
	if s == nil || s.requests == nil || s.clients == nil {
		return domain.DocumentRequest{}, apperrors.New(apperrors.CodeStorageUnavailable, "request storage is not configured")
	}
	ctx, span := s.tracer.Start(ctx, "documents.CreateDocumentRequest")
	defer span.End()

	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		return domain.DocumentRequest{}, domain.ErrEmptyClientID
	}
	if _, err := s.clients.GetClient(ctx, clientID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.DocumentRequest{}, apperrors.New(apperrors.CodeClientNotFound, fmt.Sprintf("client %s not found", clientID))
		}
		return domain.DocumentRequest{}, fmt.Errorf("load client: %w", err)
	}

	request, err := domain.CreateRequest(domain.CreateRequestInput{
		ClientID:  clientID,
		Title:     input.Title,
		CreatedBy: input.CreatedBy,
	}, s.clock, s.newID)
	if err != nil {
		return domain.DocumentRequest{}, err
	}

	if err := s.requests.PutRequest(ctx, requestToRecord(request)); err != nil {
		return domain.DocumentRequest{}, fmt.Errorf("store request: %w", err)
	}

	s.recordAudit(ctx, storage.AuditEvent{
		Action:    audit.ActionRequestCreated,
		ActorID:   request.CreatedBy,
		ClientID:  request.ClientID,
		RequestID: request.ID,
		Detail:    request.Title,
	})
	s.publish(audit.ActionRequestCreated, request)
	return request, nil
}

// GetDocumentRequest returns one request by ID.
func (s *Service) GetDocumentRequest(ctx context.Context, requestID string) (domain.DocumentRequest, error) {
	if s == nil || s.requests == nil {
		return domain.DocumentRequest{}, apperrors.New(apperrors.CodeStorageUnavailable, "request storage is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return domain.DocumentRequest{}, apperrors.New(apperrors.CodeRequestNotFound, "request not found")
	}
	record, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.DocumentRequest{}, apperrors.New(apperrors.CodeRequestNotFound, fmt.Sprintf("request %s not found", requestID))
		}
		return domain.DocumentRequest{}, fmt.Errorf("load request: %w", err)
	}
	return recordToRequest(record), nil
}

// ListDocumentRequestsInput narrows a request listing.
type ListDocumentRequestsInput struct {
	// ClientID scopes the listing to one client when non-empty.
	ClientID string
	// Status scopes the listing to one status when non-empty.
	Status string
	// Filter is an optional AIP-160 expression over client_id, status,
	// title, created_by, and created.
	Filter string
	// Limit caps the number of requests returned.
	Limit int
}

// ListDocumentRequests returns newest-first requests matching the input.
func (s *Service) ListDocumentRequests(ctx context.Context, input ListDocumentRequestsInput) ([]domain.DocumentRequest, error) {
	if s == nil || s.requests == nil {
		return nil, apperrors.New(apperrors.CodeStorageUnavailable, "request storage is not configured")
	}
	ctx, span := s.tracer.Start(ctx, "documents.ListDocumentRequests")
	defer span.End()

	query := storage.RequestQuery{
		ClientID: strings.TrimSpace(input.ClientID),
		Status:   strings.TrimSpace(input.Status),
		Limit:    input.Limit,
	}
	if filterStr := strings.TrimSpace(input.Filter); filterStr != "" {
		cond, err := filter.ParseRequestFilter(filterStr)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeRequestFilterInvalid, "request filter is invalid", err)
		}
		query.FilterClause = cond.Clause
		query.FilterParams = cond.Params
	}

	records, err := s.requests.ListRequests(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	requests := make([]domain.DocumentRequest, 0, len(records))
	for _, record := range records {
		requests = append(requests, recordToRequest(record))
	}
	return requests, nil
}

// SetDocumentRequestStatus applies a lifecycle transition to one request.
func (s *Service) SetDocumentRequestStatus(ctx context.Context, requestID, status, actorID string) (domain.DocumentRequest, error) {
	if s == nil || s.requests == nil {
		return domain.DocumentRequest{}, apperrors.New(apperrors.CodeStorageUnavailable, "request storage is not configured")
	}
	ctx, span := s.tracer.Start(ctx, "documents.SetDocumentRequestStatus")
	defer span.End()

	target, err := domain.ParseRequestStatus(status)
	if err != nil {
		return domain.DocumentRequest{}, err
	}
	request, err := s.GetDocumentRequest(ctx, requestID)
	if err != nil {
		return domain.DocumentRequest{}, err
	}

	updated, err := domain.TransitionRequestStatus(request, target, s.clock)
	if err != nil {
		return domain.DocumentRequest{}, err
	}
	if err := s.requests.PutRequest(ctx, requestToRecord(updated)); err != nil {
		return domain.DocumentRequest{}, fmt.Errorf("store request: %w", err)
	}

	action := audit.ActionRequestCancelled
	if target == domain.RequestStatusFulfilled {
		action = audit.ActionRequestFulfilled
	}
	s.recordAudit(ctx, storage.AuditEvent{
		Action:    action,
		ActorID:   strings.TrimSpace(actorID),
		ClientID:  updated.ClientID,
		RequestID: updated.ID,
		Detail:    updated.Title,
	})
	s.publish(action, updated)
	return updated, nil
}

// AttachFulfillment stores a verified PDF for one open request and marks the
// request fulfilled.
func (s *Service) AttachFulfillment(ctx context.Context, requestID, filename string, content io.Reader, actorID string) (domain.DocumentRequest, error) {
	if s == nil || s.requests == nil || s.attachments == nil || s.blobs == nil {
		return domain.DocumentRequest{}, apperrors.New(apperrors.CodeStorageUnavailable, "attachment storage is not configured")
	}
	ctx, span := s.tracer.Start(ctx, "documents.AttachFulfillment")
	defer span.End()

	if content == nil {
		return domain.DocumentRequest{}, apperrors.New(apperrors.CodeRequestAttachmentMissing, "attachment file is required")
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return domain.DocumentRequest{}, apperrors.New(apperrors.CodeRequestAttachmentMissing, "attachment filename is required")
	}

	request, err := s.GetDocumentRequest(ctx, requestID)
	if err != nil {
		return domain.DocumentRequest{}, err
	}

	blob, err := s.blobs.Save(content)
	if err != nil {
		return domain.DocumentRequest{}, apperrors.Wrap(apperrors.CodeRequestAttachmentInvalid, "attachment could not be stored", err)
	}
	pageCount, err := s.blobs.Inspect(blob.SHA256)
	if err != nil {
		if removeErr := s.blobs.Remove(blob.SHA256); removeErr != nil {
			log.Printf("remove rejected attachment %s: %v", blob.SHA256, removeErr)
		}
		return domain.DocumentRequest{}, apperrors.Wrap(apperrors.CodeRequestAttachmentInvalid, "attachment is not a valid PDF", err)
	}

	updated, err := domain.TransitionRequestStatus(request, domain.RequestStatusFulfilled, s.clock)
	if err != nil {
		return domain.DocumentRequest{}, err
	}

	attachmentID, err := s.newID()
	if err != nil {
		return domain.DocumentRequest{}, fmt.Errorf("generate attachment id: %w", err)
	}
	record := storage.AttachmentRecord{
		ID:         attachmentID,
		RequestID:  updated.ID,
		Filename:   filename,
		SHA256:     blob.SHA256,
		SizeBytes:  blob.SizeBytes,
		PageCount:  pageCount,
		UploadedBy: strings.TrimSpace(actorID),
		CreatedAt:  s.clock().UTC(),
	}
	if err := s.attachments.PutAttachment(ctx, record); err != nil {
		return domain.DocumentRequest{}, fmt.Errorf("store attachment: %w", err)
	}
	if err := s.requests.PutRequest(ctx, requestToRecord(updated)); err != nil {
		return domain.DocumentRequest{}, fmt.Errorf("store request: %w", err)
	}

	s.recordAudit(ctx, storage.AuditEvent{
		Action:    audit.ActionAttachmentAdded,
		ActorID:   strings.TrimSpace(actorID),
		ClientID:  updated.ClientID,
		RequestID: updated.ID,
		Detail:    fmt.Sprintf("%s (%d pages)", filename, pageCount),
	})
	s.publish(audit.ActionRequestFulfilled, updated)
	return updated, nil
}

// ListAttachments returns the stored attachments for one request.
func (s *Service) ListAttachments(ctx context.Context, requestID string) ([]storage.AttachmentRecord, error) {
	if s == nil || s.attachments == nil {
		return nil, apperrors.New(apperrors.CodeStorageUnavailable, "attachment storage is not configured")
	}
	return s.attachments.ListAttachmentsByRequest(ctx, strings.TrimSpace(requestID))
}

// CreateClient registers one client on the roster. actorID identifies the
// staff member performing the registration for the audit trail.
func (s *Service) CreateClient(ctx context.Context, input domain.CreateClientInput, actorID string) (domain.Client, error) {
	if s == nil || s.clients == nil {
		return domain.Client{}, apperrors.New(apperrors.CodeStorageUnavailable, "client storage is not configured")
	}
	ctx, span := s.tracer.Start(ctx, "documents.CreateClient")
	defer span.End()

	client, err := domain.CreateClient(input, s.clock, s.newID)
	if err != nil {
		return domain.Client{}, err
	}
	if err := s.clients.PutClient(ctx, clientToRecord(client)); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return domain.Client{}, apperrors.New(apperrors.CodeClientEmailTaken, fmt.Sprintf("client email %s is already registered", client.Email))
		}
		return domain.Client{}, fmt.Errorf("store client: %w", err)
	}

	s.recordAudit(ctx, storage.AuditEvent{
		Action:   audit.ActionClientCreated,
		ActorID:  strings.TrimSpace(actorID),
		ClientID: client.ID,
		Detail:   client.Name,
	})
	return client, nil
}

// GetClient returns one roster client by ID.
func (s *Service) GetClient(ctx context.Context, clientID string) (domain.Client, error) {
	if s == nil || s.clients == nil {
		return domain.Client{}, apperrors.New(apperrors.CodeStorageUnavailable, "client storage is not configured")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return domain.Client{}, apperrors.New(apperrors.CodeClientNotFound, "client not found")
	}
	record, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Client{}, apperrors.New(apperrors.CodeClientNotFound, fmt.Sprintf("client %s not found", clientID))
		}
		return domain.Client{}, fmt.Errorf("load client: %w", err)
	}
	return recordToClient(record), nil
}

// ClientPage describes one page of roster clients.
type ClientPage struct {
	Clients       []domain.Client
	NextPageToken string
}

// ListClients returns one page of roster clients.
func (s *Service) ListClients(ctx context.Context, pageSize int, pageToken string) (ClientPage, error) {
	if s == nil || s.clients == nil {
		return ClientPage{}, apperrors.New(apperrors.CodeStorageUnavailable, "client storage is not configured")
	}
	page, err := s.clients.ListClients(ctx, pageSize, pageToken)
	if err != nil {
		return ClientPage{}, fmt.Errorf("list clients: %w", err)
	}
	result := ClientPage{
		Clients:       make([]domain.Client, 0, len(page.Clients)),
		NextPageToken: page.NextPageToken,
	}
	for _, record := range page.Clients {
		result.Clients = append(result.Clients, recordToClient(record))
	}
	return result, nil
}

// RequestStatusCounts returns request counts per status, optionally scoped to
// one client.
func (s *Service) RequestStatusCounts(ctx context.Context, clientID string) (map[string]int64, error) {
	if s == nil || s.requests == nil {
		return nil, apperrors.New(apperrors.CodeStorageUnavailable, "request storage is not configured")
	}
	return s.requests.CountRequestsByStatus(ctx, strings.TrimSpace(clientID))
}

// PortalStatistics reports roster and open request counts, optionally limited
// to records created since a point in time.
func (s *Service) PortalStatistics(ctx context.Context, since *time.Time) (storage.PortalStatistics, error) {
	if s == nil || s.statistics == nil {
		return storage.PortalStatistics{}, apperrors.New(apperrors.CodeStorageUnavailable, "statistics storage is not configured")
	}
	return s.statistics.GetPortalStatistics(ctx, since)
}

// ListAuditEvents returns newest-first audit events, optionally narrowed by
// an AIP-160 filter over action, actor_id, client_id, request_id, and ts.
func (s *Service) ListAuditEvents(ctx context.Context, filterStr string, limit int) ([]storage.AuditEvent, error) {
	if s == nil || s.auditLog == nil {
		return nil, apperrors.New(apperrors.CodeStorageUnavailable, "audit storage is not configured")
	}
	query := storage.AuditQuery{Limit: limit}
	if filterStr = strings.TrimSpace(filterStr); filterStr != "" {
		cond, err := filter.ParseAuditFilter(filterStr)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeRequestFilterInvalid, "audit filter is invalid", err)
		}
		query.FilterClause = cond.Clause
		query.FilterParams = cond.Params
	}
	return s.auditLog.ListAuditEvents(ctx, query)
}

// Subscribe registers a live feed subscriber for request lifecycle events.
// The second return value releases the subscription.
func (s *Service) Subscribe() (<-chan events.RequestEvent, func()) {
	if s == nil || s.events == nil {
		ch := make(chan events.RequestEvent)
		close(ch)
		return ch, func() {}
	}
	return s.events.Subscribe()
}

// RecordSignIn writes an audit row for a portal sign-in.
func (s *Service) RecordSignIn(ctx context.Context, action, actorID, clientID string) {
	s.recordAudit(ctx, storage.AuditEvent{
		Action:   action,
		ActorID:  strings.TrimSpace(actorID),
		ClientID: strings.TrimSpace(clientID),
	})
}

// RecordAccessLinkIssued writes an audit row for an issued client access link.
func (s *Service) RecordAccessLinkIssued(ctx context.Context, actorID, clientID string) {
	s.recordAudit(ctx, storage.AuditEvent{
		Action:   audit.ActionAccessLinkIssued,
		ActorID:  strings.TrimSpace(actorID),
		ClientID: strings.TrimSpace(clientID),
	})
}

func (s *Service) recordAudit(ctx context.Context, event storage.AuditEvent) {
	if s == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		log.Printf("audit emit %s: %v", event.Action, err)
	}
}

func (s *Service) publish(action string, request domain.DocumentRequest) {
	if s == nil {
		return
	}
	s.events.Publish(events.RequestEvent{
		Action:     action,
		RequestID:  request.ID,
		ClientID:   request.ClientID,
		Title:      request.Title,
		Status:     string(request.Status),
		OccurredAt: request.UpdatedAt,
	})
}

func requestToRecord(request domain.DocumentRequest) storage.RequestRecord {
	return storage.RequestRecord{
		ID:        request.ID,
		ClientID:  request.ClientID,
		Title:     request.Title,
		Status:    string(request.Status),
		CreatedBy: request.CreatedBy,
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
}

func recordToRequest(record storage.RequestRecord) domain.DocumentRequest {
	return domain.DocumentRequest{
		ID:        record.ID,
		ClientID:  record.ClientID,
		Title:     record.Title,
		Status:    domain.RequestStatus(record.Status),
		CreatedBy: record.CreatedBy,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func clientToRecord(client domain.Client) storage.ClientRecord {
	return storage.ClientRecord{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Locale:    client.Locale,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

func recordToClient(record storage.ClientRecord) domain.Client {
	return domain.Client{
		ID:        record.ID,
		Name:      record.Name,
		Email:     record.Email,
		Locale:    record.Locale,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
