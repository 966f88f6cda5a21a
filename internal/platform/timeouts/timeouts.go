// Package timeouts defines shared timeout constants used across the portal.
// Centralizing these values prevents drift between components and makes the
// durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// StorageOp caps a single storage operation issued by a CLI tool so a
// wedged database file cannot hang maintenance runs.
const StorageOp = 5 * time.Second
