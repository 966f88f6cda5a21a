// Package domain provides the document-request aggregate and the client
// records it hangs off.
//
// A document request is the unit of work in the portal: a client (or a staff
// member acting for one) asks for a document by title, and the request moves
// through a small lifecycle until it is fulfilled with an attachment or
// cancelled. Requests reference clients by opaque ID; the domain never
// inspects or normalizes client identifiers beyond trimming whitespace.
package domain
