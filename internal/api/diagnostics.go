package api

import (
	"fmt"
	"math"

	"github.com/alignprobe/alignprobe/internal/monitor"
)

// nearZeroAxial is the axial strain magnitude below which percent bending is
// dominated by the epsMin floor and should not be trusted.
const nearZeroAxial = 1e-3

// DiagnosticHint is one human-readable insight about a plane's state.
// The UI displays these as chips next to the plane card.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label shown on the chip.
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
}

// computeDiagnostics derives hints from a plane snapshot.
// Diagnostics are ordered: critical first, then warnings, then info.
func computeDiagnostics(s monitor.Snapshot) []DiagnosticHint {
	var hints []DiagnosticHint

	if s.Degraded {
		hints = append(hints, DiagnosticHint{
			Key:   "glitch",
			Level: "critical",
			Title: "Sensor glitch",
			Detail: "The latest sample carried a non-finite gauge reading, so no valid " +
				"classification exists for it. The displayed bending point is the last " +
				"valid one. If this persists, check the gauge wiring and the bridge " +
				"connection to the measurement device.",
		})
		return hints // further numbers are not meaningful for this sample
	}

	if s.OutOfClass {
		hints = append(hints, DiagnosticHint{
			Key:   "out_of_class",
			Level: "critical",
			Title: "Out of class",
			Detail: fmt.Sprintf(
				"The bending on this plane exceeds every configured tolerance band "+
					"(|ε_b| = %.4g, %.2f%% bending). The specimen alignment does not meet "+
					"the standard; re-align the load train before testing.",
				s.Magnitude, s.PercentBending,
			),
		})
	}

	if math.Abs(s.Axial) < nearZeroAxial {
		hints = append(hints, DiagnosticHint{
			Key:   "near_zero_axial",
			Level: "info",
			Title: "No axial load",
			Detail: fmt.Sprintf(
				"Axial strain is near zero (ε_ax = %.4g), so percent bending is "+
					"normalised against the configured floor and reads very large. "+
					"Apply the axial preload before judging the percent figure; the "+
					"absolute bending magnitude is still valid.",
				s.Axial,
			),
		})
	}

	if len(hints) == 0 {
		hints = append(hints, DiagnosticHint{
			Key:    "in_class",
			Level:  "ok",
			Title:  s.Class,
			Detail: fmt.Sprintf("Plane %s is within the %q tolerance band.", s.Plane, s.Class),
		})
	}
	return hints
}
