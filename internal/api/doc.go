// Package api implements the HTTP REST API of the alignprobe daemon.
//
// New(store) returns an http.Handler that serves:
//
//	GET /api/v1/health       — plane counts, overall state
//	GET /api/v1/planes       — all live planes ([]PlaneResponse)
//	GET /api/v1/planes/{id}  — single plane; 404 if unknown or stale
//	GET /api/v1/snapshot     — full JSON dump: all live planes + generated_at
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//   - Read live entries from the store (stale entries excluded from lists)
//
// Non-finite strain values are omitted from the JSON (null via pointer
// fields) rather than breaking the encoder; the degraded flag tells the UI
// why. JSON types are defined in types.go. No external HTTP framework is
// used.
package api
