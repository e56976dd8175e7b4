package monitor

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/alignprobe/alignprobe/internal/align"
	"github.com/alignprobe/alignprobe/internal/config"
	"github.com/alignprobe/alignprobe/internal/device"
	"github.com/alignprobe/alignprobe/internal/strain"
)

// Snapshot is the fully-derived state of one plane for one sample, ready for
// the store, the REST API and the WebSocket hub.
type Snapshot struct {
	Plane string
	At    time.Time

	// Decomposition outputs. BendingX/BendingY may come from the
	// last-known-good vector when the current sample was non-finite.
	Axial          float64
	BendingX       float64
	BendingY       float64
	Magnitude      float64
	AngleRad       float64
	PercentBending float64

	// Classification of the current sample.
	Class      string
	Color      align.Color
	OutOfClass bool

	// Degraded is true when the sample carried non-finite readings and the
	// displayed vector is the last-known-good one.
	Degraded bool
}

// Engine derives per-plane snapshots from raw device frames. All exported
// methods are safe for concurrent use with SetTable; Process itself is
// called from a single acquisition goroutine.
type Engine struct {
	sectionMap map[string]config.PlaneChannels
	planes     []string
	epsMin     float64

	table atomic.Pointer[align.Table]

	// last-known-good bending vector per plane
	lastGood map[string][2]float64
}

// NewEngine builds an Engine for the configured planes and tolerance table.
func NewEngine(cfg *config.Config, table *align.Table) *Engine {
	e := &Engine{
		sectionMap: cfg.Channels.SectionMap,
		planes:     cfg.Planes(),
		epsMin:     strain.DefaultEpsMin,
		lastGood:   make(map[string][2]float64),
	}
	e.table.Store(table)
	return e
}

// SetTable atomically replaces the tolerance table. Callers pass a fully
// validated table; in-flight classifications finish against the old one.
func (e *Engine) SetTable(t *align.Table) {
	e.table.Store(t)
}

// Table returns the currently active tolerance table.
func (e *Engine) Table() *align.Table {
	return e.table.Load()
}

// Planes returns the plane names this engine processes, in sorted order.
func (e *Engine) Planes() []string {
	return e.planes
}

// Process derives one Snapshot per plane from the given frame.
//
// now is passed explicitly so callers (and tests) control the clock without
// sleeping. Use time.Now() in production.
func (e *Engine) Process(frame device.Frame, now time.Time) []Snapshot {
	table := e.table.Load()

	out := make([]Snapshot, 0, len(e.planes))
	for _, plane := range e.planes {
		pc := e.sectionMap[plane]
		quad := strain.Quad{
			E0:   channelValue(frame, pc.E0),
			E90:  channelValue(frame, pc.E90),
			E180: channelValue(frame, pc.E180),
			E270: channelValue(frame, pc.E270),
		}
		res := strain.DecomposeEps(quad.E0, quad.E90, quad.E180, quad.E270, e.epsMin)
		cls := align.Classify(res, table)

		snap := Snapshot{
			Plane:          plane,
			At:             now,
			Axial:          res.AxialStrain,
			BendingX:       res.BendingX,
			BendingY:       res.BendingY,
			Magnitude:      res.BendingMagnitude,
			AngleRad:       res.BendingAngle,
			PercentBending: res.PercentBending,
			Class:          cls.Name,
			Color:          cls.Color,
			OutOfClass:     cls.OutOfClass,
		}

		if res.Finite() {
			e.lastGood[plane] = [2]float64{res.BendingX, res.BendingY}
		} else {
			// Keep rendering the last valid vector; the classification above
			// already degraded to out of class via the NaN fall-through.
			v := e.lastGood[plane]
			snap.BendingX, snap.BendingY = v[0], v[1]
			snap.Degraded = true
		}

		out = append(out, snap)
	}
	return out
}

// channelValue reads one mapped channel from a frame. A mapped channel the
// frame does not carry is a dropped reading, not a zero strain, so it is
// returned as NaN and follows the same degraded path as a sensor glitch.
func channelValue(frame device.Frame, ch int) float64 {
	v, ok := frame.Channels[ch]
	if !ok {
		return math.NaN()
	}
	return v
}

// Newest returns the newest frame of a drained batch, or false when the
// batch is empty.
func Newest(frames []device.Frame) (device.Frame, bool) {
	if len(frames) == 0 {
		return device.Frame{}, false
	}
	return frames[len(frames)-1], true
}
