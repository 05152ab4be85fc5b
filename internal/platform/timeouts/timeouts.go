// Package timeouts defines shared timeout constants used across commands.
// Centralizing these values prevents drift between process boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// RemoteFetch caps one request to the remote member registry.
const RemoteFetch = 30 * time.Second

// Shutdown limits how long the daemon waits for in-flight work during
// graceful shutdown.
const Shutdown = 5 * time.Second
