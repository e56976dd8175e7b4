package align

import (
	"math"
	"strings"
	"testing"

	"github.com/alignprobe/alignprobe/internal/strain"
)

var (
	red    = Color{255, 0, 0}
	green  = Color{0, 255, 0}
	yellow = Color{255, 255, 0}
	black  = Color{0, 0, 0}
)

// testTable returns a two-band table with distinct small/large class names so
// regime-switch tests can tell which list matched.
func testTable() *Table {
	return &Table{
		SmallAxial: []Class{
			{Name: "Class1", Limit: 10, Color: red},
			{Name: "Class2", Limit: 20, Color: green},
		},
		LargeAxial: []Class{
			{Name: "Pct1", Limit: 5, Color: red},
			{Name: "Pct2", Limit: 12, Color: green},
		},
		OutOfClass: Fallback{Name: "OOC", Color: black},
	}
}

func TestClassifyValue_FirstMatchAscending(t *testing.T) {
	tbl := testTable()

	tests := []struct {
		value float64
		want  string
		ooc   bool
	}{
		{5, "Class1", false},
		{10, "Class1", false}, // boundary is inclusive
		{10.0001, "Class2", false},
		{15, "Class2", false},
		{20, "Class2", false},
		{25, "OOC", true},
	}
	for _, tt := range tests {
		got := ClassifyValue(tt.value, 0, tbl)
		if got.Name != tt.want {
			t.Errorf("ClassifyValue(%v): got %q, want %q", tt.value, got.Name, tt.want)
		}
		if got.OutOfClass != tt.ooc {
			t.Errorf("ClassifyValue(%v): OutOfClass got %v, want %v", tt.value, got.OutOfClass, tt.ooc)
		}
	}
}

func TestClassifyValue_RegimeSwitch(t *testing.T) {
	tbl := testTable()

	// Same raw value, different regimes, different outcomes.
	if got := ClassifyValue(8, 999, tbl); got.Name != "Class1" {
		t.Errorf("axial 999 must use magnitude table: got %q", got.Name)
	}
	if got := ClassifyValue(8, 1000, tbl); got.Name != "Pct2" {
		t.Errorf("axial 1000 must use percent table: got %q", got.Name)
	}
	if got := ClassifyValue(8, 1500, tbl); got.Name != "Pct2" {
		t.Errorf("axial 1500 must use percent table: got %q", got.Name)
	}
	// Raw signed comparison: strongly negative axial still uses the magnitude table.
	if got := ClassifyValue(8, -2000, tbl); got.Name != "Class1" {
		t.Errorf("negative axial must use magnitude table: got %q", got.Name)
	}
}

func TestClassifyValue_NaNFallsThrough(t *testing.T) {
	tbl := testTable()

	got := ClassifyValue(math.NaN(), 0, tbl)
	if got.Name != "OOC" || !got.OutOfClass {
		t.Errorf("NaN value: got %+v, want out-of-class", got)
	}
	// NaN axial routes through the percent table and still degrades cleanly.
	got = ClassifyValue(math.NaN(), math.NaN(), tbl)
	if got.Name != "OOC" {
		t.Errorf("NaN axial+value: got %+v, want out-of-class", got)
	}
}

func TestClassify_EndToEnd(t *testing.T) {
	tbl := &Table{
		SmallAxial: []Class{
			{Name: "A", Limit: 1.0, Color: green},
			{Name: "B", Limit: 5.0, Color: yellow},
		},
		LargeAxial: []Class{
			{Name: "A", Limit: 5.0, Color: green},
		},
		OutOfClass: Fallback{Name: "OOC", Color: red},
	}

	res := strain.Decompose(2, 0, 0, 0)
	if res.AxialStrain != 0.5 || res.BendingMagnitude != 1.0 || res.PercentBending != 200 {
		t.Fatalf("decomposition drifted: %+v", res)
	}

	got := Classify(res, tbl)
	if got.Name != "A" {
		t.Errorf("class: got %q, want A", got.Name)
	}
	if got.Color != green {
		t.Errorf("color: got %v, want %v", got.Color, green)
	}
	if got.OutOfClass {
		t.Error("OutOfClass must be false for a matched band")
	}
}

func TestClassify_CustomCrossover(t *testing.T) {
	tbl := testTable()
	tbl.Crossover = 100

	res := strain.Result{AxialStrain: 150, BendingMagnitude: 8, PercentBending: 8}
	if got := Classify(res, tbl); got.Name != "Pct2" {
		t.Errorf("axial above custom crossover must use percent table: got %q", got.Name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Table)
		wantErr string
	}{
		{"valid", func(*Table) {}, ""},
		{"empty small list", func(tb *Table) { tb.SmallAxial = nil }, "at least one class"},
		{"descending limits", func(tb *Table) { tb.SmallAxial[1].Limit = 5 }, "ascending order"},
		{"duplicate limits", func(tb *Table) { tb.LargeAxial[1].Limit = 5 }, "ascending order"},
		{"missing name", func(tb *Table) { tb.SmallAxial[0].Name = "" }, "name is required"},
		{"zero limit", func(tb *Table) { tb.SmallAxial[0].Limit = 0 }, "must be positive"},
		{"missing fallback", func(tb *Table) { tb.OutOfClass.Name = "" }, "out_of_class"},
		{"negative crossover", func(tb *Table) { tb.Crossover = -1 }, "crossover"},
	}
	for _, tt := range tests {
		tbl := testTable()
		tt.mutate(tbl)
		err := tbl.Validate()
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: got %v, want error containing %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestColorHex(t *testing.T) {
	if got := (Color{255, 128, 0}).Hex(); got != "#ff8000" {
		t.Errorf("Hex: got %q, want #ff8000", got)
	}
}
