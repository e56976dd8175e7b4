package diagram

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/alignprobe/alignprobe/internal/monitor"
)

// trendHeight is the character height of the magnitude sparkline.
const trendHeight = 8

// Summary renders a one-block text summary of a plane snapshot, matching the
// live viewer's info panel.
func Summary(s monitor.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Plane %s\n", s.Plane)
	fmt.Fprintf(&sb, "  class        = %s", s.Class)
	if s.Degraded {
		sb.WriteString("  (degraded: non-finite sample)")
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  axial strain = %.6g\n", s.Axial)
	fmt.Fprintf(&sb, "  |eps_b|      = %.6g\n", s.Magnitude)
	fmt.Fprintf(&sb, "  phi          = %.1f deg\n", s.AngleRad*180/math.Pi)
	fmt.Fprintf(&sb, "  %%bending     = %.2f%%\n", s.PercentBending)
	return sb.String()
}

// Trend renders an ascii sparkline of a plane's bending magnitude history.
// Non-finite samples are plotted as zero so glitches show as dips rather
// than breaking the graph.
func Trend(plane string, magnitudes []float64) string {
	if len(magnitudes) < 2 {
		return ""
	}
	clean := make([]float64, len(magnitudes))
	for i, m := range magnitudes {
		if finite(m) {
			clean[i] = m
		}
	}
	graph := asciigraph.Plot(clean,
		asciigraph.Height(trendHeight),
		asciigraph.Caption(fmt.Sprintf("plane %s bending magnitude", plane)),
	)
	return graph + "\n"
}
