// Package errors provides structured error handling for portal domain code.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Client errors
	CodeClientNameEmpty    Code = "CLIENT_NAME_EMPTY"
	CodeClientEmailInvalid Code = "CLIENT_EMAIL_INVALID"
	CodeClientEmailTaken   Code = "CLIENT_EMAIL_TAKEN"
	CodeClientNotFound     Code = "CLIENT_NOT_FOUND"

	// Document request errors
	CodeRequestTitleEmpty               Code = "REQUEST_TITLE_EMPTY"
	CodeRequestClientIDEmpty            Code = "REQUEST_CLIENT_ID_EMPTY"
	CodeRequestNotFound                 Code = "REQUEST_NOT_FOUND"
	CodeRequestInvalidStatus            Code = "REQUEST_INVALID_STATUS"
	CodeRequestInvalidStatusTransition  Code = "REQUEST_INVALID_STATUS_TRANSITION"
	CodeRequestAttachmentMissing        Code = "REQUEST_ATTACHMENT_MISSING"
	CodeRequestAttachmentInvalid        Code = "REQUEST_ATTACHMENT_INVALID"
	CodeRequestFilterInvalid            Code = "REQUEST_FILTER_INVALID"

	// Access grant errors
	CodeGrantInvalid  Code = "GRANT_INVALID"
	CodeGrantExpired  Code = "GRANT_EXPIRED"
	CodeGrantUsed     Code = "GRANT_USED"
	CodeGrantMismatch Code = "GRANT_MISMATCH"

	// CodeForbidden rejects an authenticated principal that is not allowed
	// to act on the target resource.
	CodeForbidden Code = "FORBIDDEN"

	// CodeInvalidForm rejects a request body that could not be parsed as a
	// form submission.
	CodeInvalidForm Code = "INVALID_FORM"

	// Staff sign-in errors
	CodeStaffNotFound      Code = "STAFF_NOT_FOUND"
	CodeStaffEmailInvalid  Code = "STAFF_EMAIL_INVALID"
	CodeStaffEmailTaken    Code = "STAFF_EMAIL_TAKEN"
	CodeMagicLinkNotFound  Code = "MAGIC_LINK_NOT_FOUND"
	CodeMagicLinkExpired   Code = "MAGIC_LINK_EXPIRED"
	CodeMagicLinkUsed      Code = "MAGIC_LINK_USED"

	// Session errors
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"
	CodeSessionExpired  Code = "SESSION_EXPIRED"

	// Storage errors
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	CodeNotFound           Code = "NOT_FOUND"
)

// HTTPStatus maps an error code to an HTTP status code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeClientNameEmpty, CodeClientEmailInvalid,
		CodeRequestTitleEmpty, CodeRequestClientIDEmpty,
		CodeRequestInvalidStatus, CodeRequestInvalidStatusTransition,
		CodeRequestAttachmentMissing, CodeRequestAttachmentInvalid,
		CodeRequestFilterInvalid, CodeStaffEmailInvalid, CodeInvalidForm:
		return http.StatusBadRequest
	case CodeGrantInvalid, CodeGrantExpired, CodeGrantUsed, CodeGrantMismatch,
		CodeSessionNotFound, CodeSessionExpired:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeClientEmailTaken, CodeStaffEmailTaken:
		return http.StatusConflict
	case CodeClientNotFound, CodeRequestNotFound, CodeStaffNotFound,
		CodeMagicLinkNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeMagicLinkExpired, CodeMagicLinkUsed:
		return http.StatusGone
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
