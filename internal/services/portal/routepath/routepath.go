// Package routepath centralizes portal URL paths so handlers, templates, and
// tests never spell routes by hand.
package routepath

import (
	"net/url"
	"strings"
)

// Top-level public routes.
const (
	Root   = "/"
	Login  = "/login"
	Logout = "/logout"
	Magic  = "/magic"
	Access = "/access"
	Health = "/up"

	StaticPrefix = "/static/"
)

// AppPrefix is the mount root for session-protected modules.
const AppPrefix = "/app/"

// Protected module prefixes and fixed routes.
const (
	RequestsPrefix = "/app/requests/"
	AppRequestsNew = "/app/requests/new"

	ClientsPrefix = "/app/clients/"

	ActivityPrefix = "/app/activity/"
	AppActivityWS  = "/app/activity/ws"

	SettingsPrefix      = "/app/settings/"
	AppSettingsLanguage = "/app/settings/language"
)

// ServeMux patterns for routes with path parameters.
const (
	AppRequestPattern           = "/app/requests/{requestID}"
	AppRequestStatusPattern     = "/app/requests/{requestID}/status"
	AppRequestAttachmentPattern = "/app/requests/{requestID}/attachment"
	AppClientAccessLinkPattern  = "/app/clients/{clientID}/access-link"
)

// AppRequest returns the detail path for one document request.
func AppRequest(requestID string) string {
	return RequestsPrefix + escapeSegment(requestID)
}

// AppRequestStatus returns the status-update path for one document request.
func AppRequestStatus(requestID string) string {
	return AppRequest(requestID) + "/status"
}

// AppRequestAttachment returns the attachment-upload path for one document
// request.
func AppRequestAttachment(requestID string) string {
	return AppRequest(requestID) + "/attachment"
}

// AppClientAccessLink returns the access-link issue path for one client.
func AppClientAccessLink(clientID string) string {
	return ClientsPrefix + escapeSegment(clientID) + "/access-link"
}

func escapeSegment(segment string) string {
	return url.PathEscape(strings.TrimSpace(segment))
}
