package api

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State           string `json:"state"` // ok | out_of_class | degraded | unknown
	PlaneCount      int    `json:"plane_count"`
	InClassCount    int    `json:"in_class_count"`
	OutOfClassCount int    `json:"out_of_class_count"`
	DegradedCount   int    `json:"degraded_count"`
}

// PlaneResponse is one plane entry in GET /api/v1/planes or
// GET /api/v1/planes/{id}.
//
// Strain fields are pointers so that non-finite values (acquisition
// glitches) serialise as null instead of failing to encode.
type PlaneResponse struct {
	Plane          string   `json:"plane"`
	Axial          *float64 `json:"axial_strain"`
	BendingX       *float64 `json:"bending_x"`
	BendingY       *float64 `json:"bending_y"`
	Magnitude      *float64 `json:"bending_magnitude"`
	AngleRad       *float64 `json:"bending_angle_rad"`
	AngleDeg       *float64 `json:"bending_angle_deg"`
	PercentBending *float64 `json:"percent_bending"`

	Class      string `json:"class"`
	ColorRGB   [3]int `json:"color_rgb"`
	ColorHex   string `json:"color_hex"`
	OutOfClass bool   `json:"out_of_class"`
	Degraded   bool   `json:"degraded"`

	Diagnostics []DiagnosticHint `json:"diagnostics"`
	LastSeen    string           `json:"last_seen"` // RFC3339
}

// SnapshotResponse is the payload for GET /api/v1/snapshot and the WebSocket
// broadcast body.
type SnapshotResponse struct {
	Planes      []PlaneResponse `json:"planes"`
	GeneratedAt string          `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
