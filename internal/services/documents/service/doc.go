// Package service orchestrates document request lifecycle behavior behind
// the portal's request gateway boundary.
//
// It validates input through the domain package, persists through the
// storage interfaces, emits audit events, and fans lifecycle changes out to
// live feed subscribers.
package service
