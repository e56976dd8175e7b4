package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/alignprobe/alignprobe/internal/store"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads plane state from the snapshot store and returns JSON responses.
type Handler struct {
	store *store.Store
	mux   *http.ServeMux
}

// New creates a Handler wired to the given snapshot store and registers all routes.
func New(st *store.Store) http.Handler {
	h := &Handler{store: st, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/planes", h.listPlanes)
	h.mux.HandleFunc("/api/v1/planes/", h.getPlane) // subtree — extracts {id}
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — plane counts and the overall state.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	resp := HealthResponse{PlaneCount: len(entries)}

	if len(entries) == 0 {
		resp.State = "unknown"
		jsonResp(w, http.StatusOK, resp)
		return
	}

	for _, e := range entries {
		switch {
		case e.Snapshot.Degraded:
			resp.DegradedCount++
		case e.Snapshot.OutOfClass:
			resp.OutOfClassCount++
		default:
			resp.InClassCount++
		}
	}

	switch {
	case resp.DegradedCount > 0:
		resp.State = "degraded"
	case resp.OutOfClassCount > 0:
		resp.State = "out_of_class"
	default:
		resp.State = "ok"
	}
	jsonResp(w, http.StatusOK, resp)
}

// listPlanes returns GET /api/v1/planes — all live planes.
func (h *Handler) listPlanes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]PlaneResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toPlaneResponse(e))
	}
	jsonResp(w, http.StatusOK, out)
}

// getPlane returns GET /api/v1/planes/{id} — a single live plane.
func (h *Handler) getPlane(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/planes/")
	if id == "" {
		// Redirect bare /api/v1/planes/ to list handler.
		h.listPlanes(w, r)
		return
	}

	e, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "plane not found")
		return
	}
	// Exclude stale entries — treat them as not found.
	if time.Since(e.UpdatedAt) > h.store.TTL() {
		jsonErr(w, http.StatusNotFound, "plane not found")
		return
	}

	jsonResp(w, http.StatusOK, toPlaneResponse(e))
}

// snapshot returns GET /api/v1/snapshot — the full live state.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildSnapshot(h.store))
}

// BuildSnapshot assembles the full snapshot payload. Shared with the
// WebSocket hub so both surfaces emit the same schema.
func BuildSnapshot(st *store.Store) SnapshotResponse {
	entries := st.List()
	resp := SnapshotResponse{
		Planes:      make([]PlaneResponse, 0, len(entries)),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, e := range entries {
		resp.Planes = append(resp.Planes, toPlaneResponse(e))
	}
	return resp
}

// --- helpers ----------------------------------------------------------------

func toPlaneResponse(e *store.Entry) PlaneResponse {
	s := e.Snapshot
	resp := PlaneResponse{
		Plane:          s.Plane,
		Axial:          finitePtr(s.Axial),
		BendingX:       finitePtr(s.BendingX),
		BendingY:       finitePtr(s.BendingY),
		Magnitude:      finitePtr(s.Magnitude),
		AngleRad:       finitePtr(s.AngleRad),
		AngleDeg:       finitePtr(s.AngleRad * 180 / math.Pi),
		PercentBending: finitePtr(s.PercentBending),
		Class:          s.Class,
		ColorRGB:       [3]int{int(s.Color[0]), int(s.Color[1]), int(s.Color[2])},
		ColorHex:       s.Color.Hex(),
		OutOfClass:     s.OutOfClass,
		Degraded:       s.Degraded,
		Diagnostics:    computeDiagnostics(s),
		LastSeen:       e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	return resp
}

// finitePtr returns a pointer to v, or nil when v is not finite so the JSON
// encoder emits null instead of failing.
func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func jsonResp(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
