// Package strain decomposes four-gauge strain readings into axial and
// bending components.
//
// strain.go provides the pure Decompose function for a circumferential
// four-gauge layout (gauges at 0°, 90°, 180°, 270° around one cross-section).
// Opposite-pair averages isolate the axial strain, opposite-pair differences
// isolate the bending vector along each axis.
//
// The result is total over finite inputs: no panics, no NaN for finite
// readings. Non-finite readings propagate arithmetically into the output so
// callers can decide whether to discard the sample.
package strain
