package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	"github.com/ashmont/clientdocs/internal/platform/id"
)

var (
	// ErrEmptyClientName indicates a missing client name.
	ErrEmptyClientName = apperrors.New(apperrors.CodeClientNameEmpty, "client name is required")
	// ErrInvalidClientEmail indicates an unparseable client email address.
	ErrInvalidClientEmail = apperrors.New(apperrors.CodeClientEmailInvalid, "client email is invalid")
)

// Client represents one client record the firm requests documents from.
type Client struct {
	ID   string
	Name string
	// Email receives access links for the client portal.
	Email string
	// Locale is the preferred display language tag, empty for the default.
	Locale    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateClientInput describes the fields needed to register a client.
type CreateClientInput struct {
	Name   string
	Email  string
	Locale string
}

// CreateClient creates a new client with a generated ID and timestamps.
func CreateClient(input CreateClientInput, now func() time.Time, idGenerator func() (string, error)) (Client, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Client{}, ErrEmptyClientName
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return Client{}, err
	}

	clientID, err := idGenerator()
	if err != nil {
		return Client{}, fmt.Errorf("generate client id: %w", err)
	}

	createdAt := now().UTC()
	return Client{
		ID:        clientID,
		Name:      name,
		Email:     email,
		Locale:    strings.TrimSpace(input.Locale),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidClientEmail
	}
	parsed, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeClientEmailInvalid, "client email is invalid", err)
	}
	return strings.ToLower(parsed.Address), nil
}
