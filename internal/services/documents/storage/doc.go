// Package storage defines persistence interfaces for the documents service.
//
// Interfaces are grouped by record area (clients, requests, attachments,
// audit events) so callers depend only on the stores they use. The sqlite
// subpackage provides the production implementation.
package storage
