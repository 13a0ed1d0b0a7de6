// Package timeouts defines shared timeout constants used across the
// server. Centralizing these values prevents drift and makes the
// durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// StoreOpen caps the wait for the database to open and migrate at
// startup.
const StoreOpen = 10 * time.Second
