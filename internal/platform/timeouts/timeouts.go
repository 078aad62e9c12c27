// Package timeouts defines shared timeout constants used across binaries.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Request caps the handler time for a single API request.
const Request = 15 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// Dashboard caps the parallel reads behind a dashboard response.
const Dashboard = 5 * time.Second

// ObjectStore caps a single image upload or delete.
const ObjectStore = 20 * time.Second
