package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	"github.com/ashmont/clientdocs/internal/platform/id"
)

// RequestStatus describes the lifecycle of a document request.
type RequestStatus string

const (
	// RequestStatusOpen indicates the request is awaiting fulfillment.
	RequestStatusOpen RequestStatus = "open"
	// RequestStatusFulfilled indicates a document was attached.
	RequestStatusFulfilled RequestStatus = "fulfilled"
	// RequestStatusCancelled indicates the request was withdrawn.
	RequestStatusCancelled RequestStatus = "cancelled"
)

var (
	// ErrEmptyTitle indicates a missing request title.
	ErrEmptyTitle = apperrors.New(apperrors.CodeRequestTitleEmpty, "request title is required")
	// ErrEmptyClientID indicates a missing client identifier.
	ErrEmptyClientID = apperrors.New(apperrors.CodeRequestClientIDEmpty, "client id is required")
	// ErrInvalidStatus indicates an unrecognized request status value.
	ErrInvalidStatus = apperrors.New(apperrors.CodeRequestInvalidStatus, "request status is invalid")
)

// DocumentRequest represents one document asked of a client.
type DocumentRequest struct {
	ID       string
	ClientID string
	// Title is the free-text description of the requested document.
	Title  string
	Status RequestStatus
	// CreatedBy records the principal that submitted the request.
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateRequestInput describes the fields needed to open a request.
type CreateRequestInput struct {
	ClientID  string
	Title     string
	CreatedBy string
}

// CreateRequest creates a new open request with a generated ID and timestamps.
func CreateRequest(input CreateRequestInput, now func() time.Time, idGenerator func() (string, error)) (DocumentRequest, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		return DocumentRequest{}, ErrEmptyClientID
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return DocumentRequest{}, ErrEmptyTitle
	}

	requestID, err := idGenerator()
	if err != nil {
		return DocumentRequest{}, fmt.Errorf("generate request id: %w", err)
	}

	createdAt := now().UTC()
	return DocumentRequest{
		ID:        requestID,
		ClientID:  clientID,
		Title:     title,
		Status:    RequestStatusOpen,
		CreatedBy: strings.TrimSpace(input.CreatedBy),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// ParseRequestStatus parses a stored or submitted status value.
func ParseRequestStatus(value string) (RequestStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(RequestStatusOpen):
		return RequestStatusOpen, nil
	case string(RequestStatusFulfilled):
		return RequestStatusFulfilled, nil
	case string(RequestStatusCancelled):
		return RequestStatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// TransitionRequestStatus applies a status change and updates timestamps.
func TransitionRequestStatus(request DocumentRequest, target RequestStatus, now func() time.Time) (DocumentRequest, error) {
	if now == nil {
		now = time.Now
	}
	if !isRequestStatusTransitionAllowed(request.Status, target) {
		return DocumentRequest{}, apperrors.WithMetadata(
			apperrors.CodeRequestInvalidStatusTransition,
			fmt.Sprintf("request status transition not allowed: %s -> %s", request.Status, target),
			map[string]string{"from": string(request.Status), "to": string(target)},
		)
	}

	updated := request
	updated.Status = target
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// isRequestStatusTransitionAllowed reports whether a status change is permitted.
// Fulfilled and cancelled are terminal.
func isRequestStatusTransitionAllowed(from, to RequestStatus) bool {
	switch from {
	case RequestStatusOpen:
		return to == RequestStatusFulfilled || to == RequestStatusCancelled
	default:
		return false
	}
}
