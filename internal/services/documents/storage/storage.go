package storage

import (
	"context"
	"time"

	"github.com/ashmont/clientdocs/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ErrAlreadyExists indicates a uniqueness conflict with an existing record.
var ErrAlreadyExists = errors.New(errors.CodeClientEmailTaken, "record already exists")

// ClientRecord is a durable client roster entry.
type ClientRecord struct {
	ID        string
	Name      string
	Email     string
	Locale    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientPage describes a page of client records.
type ClientPage struct {
	Clients       []ClientRecord
	NextPageToken string
}

// ClientStore persists client roster records.
type ClientStore interface {
	PutClient(ctx context.Context, client ClientRecord) error
	GetClient(ctx context.Context, clientID string) (ClientRecord, error)
	ListClients(ctx context.Context, pageSize int, pageToken string) (ClientPage, error)
}

// RequestRecord is a durable document request entry.
type RequestRecord struct {
	ID        string
	ClientID  string
	Title     string
	Status    string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RequestQuery narrows and pages a request listing.
type RequestQuery struct {
	// ClientID scopes the listing to a single client when non-empty.
	ClientID string
	// Status scopes the listing to a single status when non-empty.
	Status string
	// FilterClause is an optional SQL WHERE clause fragment produced by
	// the filter package.
	FilterClause string
	// FilterParams are the positional parameters for the filter clause.
	FilterParams []any
	// Limit caps the number of records returned. Zero means the store
	// default.
	Limit int
}

// RequestStore persists document request records.
type RequestStore interface {
	PutRequest(ctx context.Context, request RequestRecord) error
	GetRequest(ctx context.Context, requestID string) (RequestRecord, error)
	ListRequests(ctx context.Context, query RequestQuery) ([]RequestRecord, error)
	CountRequestsByStatus(ctx context.Context, clientID string) (map[string]int64, error)
}

// AttachmentRecord is a durable fulfillment document entry.
type AttachmentRecord struct {
	ID         string
	RequestID  string
	Filename   string
	SHA256     string
	SizeBytes  int64
	PageCount  int
	UploadedBy string
	CreatedAt  time.Time
}

// AttachmentStore persists fulfillment attachments.
type AttachmentStore interface {
	PutAttachment(ctx context.Context, attachment AttachmentRecord) error
	GetAttachment(ctx context.Context, attachmentID string) (AttachmentRecord, error)
	ListAttachmentsByRequest(ctx context.Context, requestID string) ([]AttachmentRecord, error)
}

// AuditEvent records one portal action for the activity feed.
type AuditEvent struct {
	ID        int64
	Action    string
	ActorID   string
	ClientID  string
	RequestID string
	Detail    string
	TraceID   string
	SpanID    string
	Timestamp time.Time
}

// AuditQuery narrows and pages an audit listing.
type AuditQuery struct {
	// FilterClause is an optional SQL WHERE clause fragment produced by
	// the filter package.
	FilterClause string
	// FilterParams are the positional parameters for the filter clause.
	FilterParams []any
	// Limit caps the number of events returned. Zero means the store
	// default.
	Limit int
}

// AuditStore persists portal audit events.
type AuditStore interface {
	AppendAuditEvent(ctx context.Context, event AuditEvent) error
	ListAuditEvents(ctx context.Context, query AuditQuery) ([]AuditEvent, error)
}

// PortalStatistics contains aggregate counts across portal data.
type PortalStatistics struct {
	ClientCount      int64
	OpenRequestCount int64
}

// StatisticsStore provides aggregate portal statistics.
type StatisticsStore interface {
	// GetPortalStatistics returns aggregate counts.
	// When since is nil, counts are for all time.
	GetPortalStatistics(ctx context.Context, since *time.Time) (PortalStatistics, error)
}
