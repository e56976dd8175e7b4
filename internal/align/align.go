package align

import (
	"fmt"

	"github.com/alignprobe/alignprobe/internal/strain"
)

// DefaultCrossover is the axial strain at which classification switches from
// the bending-magnitude table to the percent-bending table.
const DefaultCrossover = 1000.0

// Color is an RGB triple with components in 0–255.
type Color [3]uint8

// Hex returns the color as a #rrggbb string for UI payloads.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// Class is one tolerance band: values up to and including Limit belong to it.
type Class struct {
	Name  string
	Limit float64
	Color Color
}

// Fallback is the label returned when a value exceeds every band.
type Fallback struct {
	Name  string
	Color Color
}

// Table is the immutable alignment tolerance configuration.
//
// SmallAxial limits are bending magnitudes, LargeAxial limits are percent
// bending values. Both lists must be supplied in strictly ascending Limit
// order (increasing severity); Classify scans them as given.
type Table struct {
	SmallAxial []Class
	LargeAxial []Class
	OutOfClass Fallback

	// Crossover is the signed axial strain at which the percent table takes
	// over. Zero means DefaultCrossover.
	Crossover float64
}

// Classification is the outcome for one sample: a named tolerance band and
// its display color.
type Classification struct {
	Name  string
	Color Color

	// OutOfClass is true when no configured band matched.
	OutOfClass bool
}

// Validate checks that both class lists are non-empty, carry names, and have
// strictly ascending limits. A misordered list would silently misclassify,
// so loading fails instead.
func (t *Table) Validate() error {
	if err := validateClasses("classes_axial_strain_small", t.SmallAxial); err != nil {
		return err
	}
	if err := validateClasses("classes_axial_strain_big", t.LargeAxial); err != nil {
		return err
	}
	if t.OutOfClass.Name == "" {
		return fmt.Errorf("align: out_of_class name is required")
	}
	if t.Crossover < 0 {
		return fmt.Errorf("align: crossover must not be negative")
	}
	return nil
}

func validateClasses(list string, classes []Class) error {
	if len(classes) == 0 {
		return fmt.Errorf("align: %s must contain at least one class", list)
	}
	prev := 0.0
	for i, c := range classes {
		if c.Name == "" {
			return fmt.Errorf("align: %s[%d]: name is required", list, i)
		}
		if !(c.Limit > 0) {
			return fmt.Errorf("align: %s[%d] %q: limit must be positive, got %v", list, i, c.Name, c.Limit)
		}
		if i > 0 && c.Limit <= prev {
			return fmt.Errorf("align: %s[%d] %q: limit %v is not above previous limit %v — classes must be in ascending order",
				list, i, c.Name, c.Limit, prev)
		}
		prev = c.Limit
	}
	return nil
}

// crossover returns the effective regime threshold.
func (t *Table) crossover() float64 {
	if t.Crossover > 0 {
		return t.Crossover
	}
	return DefaultCrossover
}

// Classify maps a decomposed strain result to its tolerance band.
//
// The regime is picked by comparing the raw signed axial strain against the
// crossover: below it the bending magnitude is matched against SmallAxial,
// otherwise percent bending is matched against LargeAxial. A compressive
// (negative) axial strain therefore always uses the magnitude table.
//
// The selected value matches the first class whose Limit is >= the value, in
// table order. NaN matches nothing and falls through to OutOfClass.
func Classify(res strain.Result, t *Table) Classification {
	if res.AxialStrain < t.crossover() {
		return ClassifyValue(res.BendingMagnitude, res.AxialStrain, t)
	}
	return ClassifyValue(res.PercentBending, res.AxialStrain, t)
}

// ClassifyValue classifies an already-selected scalar. axial is used only to
// pick the class list; value is the bending magnitude (small-axial regime) or
// the percent bending (large-axial regime).
func ClassifyValue(value, axial float64, t *Table) Classification {
	classes := t.SmallAxial
	if !(axial < t.crossover()) {
		classes = t.LargeAxial
	}
	for _, c := range classes {
		if value <= c.Limit {
			return Classification{Name: c.Name, Color: c.Color}
		}
	}
	return Classification{Name: t.OutOfClass.Name, Color: t.OutOfClass.Color, OutOfClass: true}
}
