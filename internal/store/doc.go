// Package store holds the in-memory per-plane state of the monitor. It
// provides a thread-safe snapshot store with TTL eviction so render surfaces
// never display stale planes as live.
package store
