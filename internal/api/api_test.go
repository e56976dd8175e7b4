package api_test

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alignprobe/alignprobe/internal/align"
	"github.com/alignprobe/alignprobe/internal/api"
	"github.com/alignprobe/alignprobe/internal/monitor"
	"github.com/alignprobe/alignprobe/internal/store"
)

// --- test helpers -----------------------------------------------------------

func newStore(snaps ...monitor.Snapshot) *store.Store {
	st := store.New(5 * time.Minute)
	for _, s := range snaps {
		st.Put(s)
	}
	return st
}

func snap(plane string) monitor.Snapshot {
	return monitor.Snapshot{
		Plane:          plane,
		At:             time.Now(),
		Axial:          480,
		BendingX:       3,
		BendingY:       1,
		Magnitude:      math.Hypot(3, 1),
		AngleRad:       math.Atan2(1, 3),
		PercentBending: 0.66,
		Class:          "Class 1",
		Color:          align.Color{0, 170, 0},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- /api/v1/health ---------------------------------------------------------

func TestHealth_EmptyStore(t *testing.T) {
	h := api.New(newStore())
	rr := get(t, h, "/api/v1/health")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp api.HealthResponse
	decode(t, rr, &resp)

	if resp.State != "unknown" {
		t.Errorf("state: got %q, want unknown", resp.State)
	}
	if resp.PlaneCount != 0 {
		t.Errorf("plane_count: got %d, want 0", resp.PlaneCount)
	}
}

func TestHealth_Counts(t *testing.T) {
	ooc := snap("B")
	ooc.Class = "Out of class"
	ooc.OutOfClass = true

	h := api.New(newStore(snap("A"), ooc))
	var resp api.HealthResponse
	decode(t, get(t, h, "/api/v1/health"), &resp)

	if resp.State != "out_of_class" {
		t.Errorf("state: got %q, want out_of_class", resp.State)
	}
	if resp.PlaneCount != 2 || resp.InClassCount != 1 || resp.OutOfClassCount != 1 {
		t.Errorf("counts: %+v", resp)
	}
}

// --- /api/v1/planes ---------------------------------------------------------

func TestListPlanes(t *testing.T) {
	h := api.New(newStore(snap("B"), snap("A")))
	var resp []api.PlaneResponse
	decode(t, get(t, h, "/api/v1/planes"), &resp)

	if len(resp) != 2 {
		t.Fatalf("planes: got %d, want 2", len(resp))
	}
	if resp[0].Plane != "A" || resp[1].Plane != "B" {
		t.Errorf("order: got %q, %q", resp[0].Plane, resp[1].Plane)
	}
	if resp[0].Class != "Class 1" || resp[0].ColorHex != "#00aa00" {
		t.Errorf("classification fields: %+v", resp[0])
	}
	if resp[0].Axial == nil || *resp[0].Axial != 480 {
		t.Errorf("axial_strain: got %v", resp[0].Axial)
	}
	if resp[0].AngleDeg == nil || math.Abs(*resp[0].AngleDeg-18.4349) > 0.001 {
		t.Errorf("bending_angle_deg: got %v", resp[0].AngleDeg)
	}
	if len(resp[0].Diagnostics) == 0 || resp[0].Diagnostics[0].Level != "ok" {
		t.Errorf("diagnostics: %+v", resp[0].Diagnostics)
	}
}

func TestGetPlane(t *testing.T) {
	h := api.New(newStore(snap("A")))

	var resp api.PlaneResponse
	rr := get(t, h, "/api/v1/planes/A")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	decode(t, rr, &resp)
	if resp.Plane != "A" {
		t.Errorf("plane: got %q", resp.Plane)
	}

	if rr := get(t, h, "/api/v1/planes/Z"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown plane: got %d, want 404", rr.Code)
	}
}

func TestGetPlane_NonFiniteSerialisesAsNull(t *testing.T) {
	glitch := snap("A")
	glitch.Axial = math.NaN()
	glitch.Magnitude = math.Inf(1)
	glitch.PercentBending = math.NaN()
	glitch.Degraded = true
	glitch.Class = "Out of class"
	glitch.OutOfClass = true

	h := api.New(newStore(glitch))
	rr := get(t, h, "/api/v1/planes/A")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (NaN must not break encoding)", rr.Code)
	}

	var resp api.PlaneResponse
	decode(t, rr, &resp)
	if resp.Axial != nil || resp.Magnitude != nil || resp.PercentBending != nil {
		t.Errorf("non-finite fields must be null: %+v", resp)
	}
	if !resp.Degraded {
		t.Error("degraded flag lost")
	}
	if len(resp.Diagnostics) == 0 || resp.Diagnostics[0].Key != "glitch" {
		t.Errorf("diagnostics: %+v", resp.Diagnostics)
	}
}

// --- /api/v1/snapshot -------------------------------------------------------

func TestSnapshot(t *testing.T) {
	h := api.New(newStore(snap("A"), snap("B")))
	var resp api.SnapshotResponse
	decode(t, get(t, h, "/api/v1/snapshot"), &resp)

	if len(resp.Planes) != 2 {
		t.Errorf("planes: got %d, want 2", len(resp.Planes))
	}
	if _, err := time.Parse(time.RFC3339, resp.GeneratedAt); err != nil {
		t.Errorf("generated_at: %v", err)
	}
}

// --- method handling --------------------------------------------------------

func TestMethodNotAllowed(t *testing.T) {
	h := api.New(newStore(snap("A")))
	for _, path := range []string{"/api/v1/health", "/api/v1/planes", "/api/v1/snapshot"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: got %d, want 405", path, rr.Code)
		}
	}
}
