// Package audit contains durable in-product audit writes for portal operations.
//
// This package owns persisted audit events used for the staff activity feed and
// incident analysis. Events emitted inside an active trace carry the trace and
// span IDs so feed rows can be correlated with exported spans.
package audit
