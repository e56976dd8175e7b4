package diagram

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/alignprobe/alignprobe/internal/align"
	"github.com/alignprobe/alignprobe/internal/monitor"
)

// circleSegments controls how smooth the tolerance circles render.
const circleSegments = 120

// PlaneViewData holds everything needed to draw one plane's bending view.
type PlaneViewData struct {
	Snapshot monitor.Snapshot

	// Table provides the tolerance circles (SmallAxial limits as radii).
	Table *align.Table

	// Radius is the view radius. Zero means auto: 1.2× the largest of the
	// bending magnitude and the outermost tolerance circle.
	Radius float64
}

// ExportPlanePNG renders the bending view of one plane to an image file.
// The format follows the file extension (.png, .svg, .pdf); anything else
// gets ".png" appended.
func ExportPlanePNG(data PlaneViewData, filename string) error {
	s := data.Snapshot

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Plane %s: %s", s.Plane, s.Class)
	p.X.Label.Text = "bending x"
	p.Y.Label.Text = "bending y"

	radius := data.Radius
	if radius <= 0 {
		radius = autoRadius(data)
	}

	// Cross axes through the origin.
	for _, axis := range []plotter.XYs{
		{{X: -radius, Y: 0}, {X: radius, Y: 0}},
		{{X: 0, Y: -radius}, {X: 0, Y: radius}},
	} {
		line, err := plotter.NewLine(axis)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(0.5)
		line.LineStyle.Color = color.Gray{Y: 128}
		p.Add(line)
	}

	// One circle per tolerance band, drawn in the band's color.
	if data.Table != nil {
		for _, c := range data.Table.SmallAxial {
			circ, err := plotter.NewLine(circlePoints(c.Limit))
			if err != nil {
				return err
			}
			circ.LineStyle.Width = vg.Points(1.5)
			circ.LineStyle.Color = rgba(c.Color)
			circ.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			p.Add(circ)
			p.Legend.Add(fmt.Sprintf("%s ≤ %g", c.Name, c.Limit), circ)
		}
	}

	// Current bending point, colored by its classification.
	if finite(s.BendingX) && finite(s.BendingY) {
		point, err := plotter.NewScatter(plotter.XYs{{X: s.BendingX, Y: s.BendingY}})
		if err != nil {
			return err
		}
		point.GlyphStyle.Color = rgba(s.Color)
		point.GlyphStyle.Radius = vg.Points(5)
		point.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(point)
	}

	// Annotation block in the upper-left corner.
	label, err := plotter.NewLabels(plotter.XYLabels{
		XYs: []plotter.XY{{X: -radius * 0.95, Y: radius * 0.9}},
		Labels: []string{fmt.Sprintf(
			"class = %s\naxial = %.6g\n|eps_b| = %.6g\nphi = %.1f°\n%%bending = %.2f%%",
			s.Class, s.Axial, s.Magnitude, s.AngleRad*180/math.Pi, s.PercentBending,
		)},
	})
	if err != nil {
		return err
	}
	p.Add(label)

	p.X.Min, p.X.Max = -radius*1.05, radius*1.05
	p.Y.Min, p.Y.Max = -radius*1.05, radius*1.05

	// Create directory if needed.
	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		os.MkdirAll(dir, 0o755) //nolint:errcheck
	}

	if ext := filepath.Ext(filename); ext == "" {
		filename += ".png"
	}
	return p.Save(6*vg.Inch, 6*vg.Inch, filename)
}

// autoRadius picks a view radius that keeps both the point and the outermost
// tolerance circle visible.
func autoRadius(data PlaneViewData) float64 {
	r := 1e-6
	if data.Table != nil && len(data.Table.SmallAxial) > 0 {
		r = data.Table.SmallAxial[len(data.Table.SmallAxial)-1].Limit
	}
	if m := data.Snapshot.Magnitude; finite(m) && m > r {
		r = m
	}
	return r * 1.2
}

// circlePoints approximates a circle of the given radius as a closed line.
func circlePoints(radius float64) plotter.XYs {
	pts := make(plotter.XYs, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = plotter.XY{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return pts
}

func rgba(c align.Color) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
