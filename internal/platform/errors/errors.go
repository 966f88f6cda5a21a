package errors

import "errors"

// Error carries a portal error code plus the context needed to log it and to
// render a localized message for the user.
type Error struct {
	Code     Code              // stable code, see codes.go
	Message  string            // internal text for logs, never shown to users
	Metadata map[string]string // values interpolated into catalog templates
	Cause    error             // wrapped underlying error
}

// New creates a domain error with a code and an internal message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a domain error carrying template metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates a domain error around an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, so two errors with the same code compare equal
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// CodeOf extracts the domain code from an error chain. Unrecognized errors
// report CodeUnknown.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}

// MetadataOf extracts templating metadata from an error chain, or nil.
func MetadataOf(err error) map[string]string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Metadata
	}
	return nil
}

// HTTPStatusOf resolves the HTTP status for an error chain.
func HTTPStatusOf(err error) int {
	return CodeOf(err).HTTPStatus()
}
