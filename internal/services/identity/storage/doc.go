// Package storage defines persistence contracts for portal identity assets.
//
// These interfaces exist so sign-in logic can depend on stable semantics
// without coupling to SQLite schema details.
package storage
