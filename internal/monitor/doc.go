// Package monitor runs the acquisition loop: it drains pending gauge frames
// from a device source, maps section-map channels to per-plane quads,
// decomposes them into axial/bending strain and classifies the result
// against the current tolerance table.
//
// Engine.Process accepts an injectable time.Time so tests are deterministic.
// The tolerance table is swapped atomically on config hot reload; a
// classification never observes a partially updated table.
//
// Glitch policy follows the live viewer's behaviour: a non-finite bending
// vector falls back to the plane's last-known-good vector for display, and
// the sample classifies as out of class with Degraded set.
package monitor
