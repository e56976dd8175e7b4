// Package device provides gauge frame sources for the acquisition loop.
// Each source delivers Frames — one timestamped set of per-channel strain
// values — behind the common Source interface. The monitor engine drains
// pending frames each poll and displays only the newest one.
//
// Implemented sources:
//   - prom (prom.go): scrapes a device bridge that exposes the gauge
//     channels in Prometheus text exposition format
//   - replay (replay.go): replays a CSV recording, for offline analysis and
//     deterministic tests
//   - sim (sim.go): synthetic rotating bending vector, for demos
//
// Factory: New(device, channels) returns the Source matching the config.
// The serial transport of the physical device is deliberately not part of
// this package; a bridge process owns the wire protocol and re-exposes the
// channels over HTTP.
package device
