package strain

import "math"

// DefaultEpsMin is the floor applied to the axial strain magnitude when
// normalising percent bending. It keeps the ratio finite when the specimen
// carries (almost) no axial load.
const DefaultEpsMin = 1e-6

// Quad holds the four gauge readings of one plane, keyed by angular position
// around the cross-section.
type Quad struct {
	E0   float64
	E90  float64
	E180 float64
	E270 float64
}

// Finite reports whether all four readings are finite numbers.
func (q Quad) Finite() bool {
	return finite(q.E0) && finite(q.E90) && finite(q.E180) && finite(q.E270)
}

// Result is the decomposition of one Quad into axial and bending strain.
//
// BendingMagnitude and BendingAngle are always derived from BendingX/BendingY
// (hypot and atan2 respectively), never set independently.
type Result struct {
	// AxialStrain is the signed strain common to all four gauges, taken as
	// the average of the two opposite-pair estimates.
	AxialStrain float64

	// BendingX and BendingY are the signed bending vector components along
	// the 0°–180° and 90°–270° axes.
	BendingX float64
	BendingY float64

	// BendingMagnitude is the Euclidean norm of the bending vector.
	BendingMagnitude float64

	// BendingAngle is the bending vector direction in radians, in (−π, π].
	BendingAngle float64

	// PercentBending is BendingMagnitude relative to the axial strain
	// magnitude (floored at epsMin), times 100.
	PercentBending float64
}

// BendingAngleDeg returns BendingAngle in degrees, for display.
func (r Result) BendingAngleDeg() float64 {
	return r.BendingAngle * 180 / math.Pi
}

// Finite reports whether every field of the result is a finite number.
func (r Result) Finite() bool {
	return finite(r.AxialStrain) && finite(r.BendingX) && finite(r.BendingY) &&
		finite(r.BendingMagnitude) && finite(r.BendingAngle) && finite(r.PercentBending)
}

// Decompose converts four gauge strains at 0°, 90°, 180° and 270° into an
// axial/bending Result using the default epsMin floor.
func Decompose(e0, e90, e180, e270 float64) Result {
	return DecomposeEps(e0, e90, e180, e270, DefaultEpsMin)
}

// DecomposeEps is Decompose with an explicit epsMin floor for the percent
// bending denominator. epsMin must be strictly positive; non-positive values
// fall back to DefaultEpsMin.
//
// The function never panics and never returns an error. Finite inputs always
// yield a fully finite Result; non-finite inputs propagate into the
// corresponding output fields.
func DecomposeEps(e0, e90, e180, e270, epsMin float64) Result {
	if !(epsMin > 0) {
		epsMin = DefaultEpsMin
	}

	// Each opposite pair measures axial strain with first-order cancellation
	// of bending; averaging both pairs gives the robust axial estimate.
	axPair1 := (e0 + e180) / 2
	axPair2 := (e90 + e270) / 2
	axial := (axPair1 + axPair2) / 2

	// The pairwise differences isolate the bending contribution per axis.
	bx := (e0 - e180) / 2
	by := (e90 - e270) / 2

	mag := math.Hypot(bx, by)
	angle := math.Atan2(by, bx)

	denom := math.Abs(axial)
	if !(denom > epsMin) {
		// Also floors NaN, so percent stays defined by the propagation rule.
		denom = epsMin
	}

	return Result{
		AxialStrain:      axial,
		BendingX:         bx,
		BendingY:         by,
		BendingMagnitude: mag,
		BendingAngle:     angle,
		PercentBending:   100 * mag / denom,
	}
}

// Decompose decomposes the quad with the default epsMin floor.
func (q Quad) Decompose() Result {
	return Decompose(q.E0, q.E90, q.E180, q.E270)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
