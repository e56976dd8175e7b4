package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
device:
  source: prom
  endpoint: "http://localhost:9464/metrics"
  sample_frequency: 50
channels:
  section_map:
    A: {e0: 1, e90: 2, e180: 3, e270: 4}
    B: {e0: 5, e90: 6, e180: 7, e270: 8}
view:
  auto_scale: false
  fixed_radius: 250.0
  refresh_ms: 150
  mult_frames: 16
alignment_classes:
  classes_axial_strain_small:
    - {name: "Class 1", eps_b_mag: 5.0, color: [0, 170, 0]}
    - {name: "Class 2", eps_b_mag: 10.0, color: [255, 200, 0]}
  classes_axial_strain_big:
    - {name: "Class 1", max_percent: 5.0, color: [0, 170, 0]}
    - {name: "Class 2", max_percent: 8.0, color: [255, 200, 0]}
  out_of_class: {name: "Out of class", color: [220, 0, 0]}
server:
  http_port: 8091
  snapshot_ttl: 30s
`

// loadFromString writes yaml to a temp file and loads it.
func loadFromString(t *testing.T, yaml string) *Config {
	t.Helper()
	cfg, err := tryLoad(t, yaml)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	return cfg
}

func tryLoad(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alignment.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}

func TestLoad_Valid(t *testing.T) {
	cfg := loadFromString(t, validYAML)

	if cfg.Device.Source != "prom" {
		t.Errorf("device.source: got %q", cfg.Device.Source)
	}
	if cfg.Device.Endpoint != "http://localhost:9464/metrics" {
		t.Errorf("device.endpoint: got %q", cfg.Device.Endpoint)
	}
	if cfg.Server.HTTPPort != 8091 {
		t.Errorf("server.http_port: got %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.SnapshotTTL != 30*time.Second {
		t.Errorf("server.snapshot_ttl: got %v", cfg.Server.SnapshotTTL)
	}
	if got := cfg.Planes(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("Planes: got %v", got)
	}
	if got := cfg.ChannelNumbers(); len(got) != 8 || got[0] != 1 || got[7] != 8 {
		t.Errorf("ChannelNumbers: got %v", got)
	}
	if cfg.View.RefreshInterval() != 150*time.Millisecond {
		t.Errorf("RefreshInterval: got %v", cfg.View.RefreshInterval())
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, `
channels:
  section_map:
    A: {e0: 1, e90: 2, e180: 3, e270: 4}
alignment_classes:
  classes_axial_strain_small:
    - {name: "Class 1", eps_b_mag: 5.0, color: [0, 170, 0]}
  classes_axial_strain_big:
    - {name: "Class 1", max_percent: 5.0, color: [0, 170, 0]}
  out_of_class: {name: "Out of class", color: [220, 0, 0]}
`)

	if cfg.Device.Source != "sim" {
		t.Errorf("default source: got %q, want sim", cfg.Device.Source)
	}
	if cfg.Device.SampleFrequency != DefaultSampleFrequency {
		t.Errorf("default sample_frequency: got %v", cfg.Device.SampleFrequency)
	}
	if cfg.View.RefreshMs != DefaultRefreshMs {
		t.Errorf("default refresh_ms: got %d", cfg.View.RefreshMs)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("default http_port: got %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.SnapshotTTL != DefaultSnapshotTTL {
		t.Errorf("default snapshot_ttl: got %v", cfg.Server.SnapshotTTL)
	}
}

func TestLoad_Table(t *testing.T) {
	cfg := loadFromString(t, validYAML)

	tbl, err := cfg.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if len(tbl.SmallAxial) != 2 || len(tbl.LargeAxial) != 2 {
		t.Fatalf("table sizes: got %d/%d", len(tbl.SmallAxial), len(tbl.LargeAxial))
	}
	if tbl.SmallAxial[0].Name != "Class 1" || tbl.SmallAxial[0].Limit != 5.0 {
		t.Errorf("small[0]: got %+v", tbl.SmallAxial[0])
	}
	if tbl.SmallAxial[1].Color != [3]uint8{255, 200, 0} {
		t.Errorf("small[1] color: got %v", tbl.SmallAxial[1].Color)
	}
	if tbl.OutOfClass.Name != "Out of class" {
		t.Errorf("out_of_class: got %+v", tbl.OutOfClass)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			"unknown source",
			func(s string) string { return strings.Replace(s, "source: prom", "source: serial", 1) },
			"unknown type",
		},
		{
			"missing endpoint",
			func(s string) string { return strings.Replace(s, `endpoint: "http://localhost:9464/metrics"`, "", 1) },
			"endpoint is required",
		},
		{
			"zero-based channel",
			func(s string) string { return strings.Replace(s, "{e0: 1,", "{e0: 0,", 1) },
			"1-based",
		},
		{
			"misordered class table",
			func(s string) string { return strings.Replace(s, "eps_b_mag: 10.0", "eps_b_mag: 2.0", 1) },
			"ascending order",
		},
		{
			"color out of range",
			func(s string) string { return strings.Replace(s, "[220, 0, 0]", "[300, 0, 0]", 1) },
			"out of range",
		},
		{
			"bad color arity",
			func(s string) string { return strings.Replace(s, "[220, 0, 0]", "[220, 0]", 1) },
			"color must be",
		},
		{
			"refresh too fast",
			func(s string) string { return strings.Replace(s, "refresh_ms: 150", "refresh_ms: 1", 1) },
			"refresh_ms",
		},
	}

	for _, tt := range tests {
		_, err := tryLoad(t, tt.mutate(validYAML))
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: got %v, want error containing %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alignment.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	go func() {
		Watch(ctx, path, func(cfg *Config) { changes <- cfg }) //nolint:errcheck
	}()
	time.Sleep(50 * time.Millisecond) // let the watcher attach

	// An invalid edit must not reach onChange.
	bad := strings.Replace(validYAML, "eps_b_mag: 10.0", "eps_b_mag: 1.0", 1)
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write bad config: %v", err)
	}
	select {
	case cfg := <-changes:
		t.Fatalf("misordered table accepted by watcher: %+v", cfg.Classes)
	case <-time.After(2 * debounceWindow):
	}

	// Fixing the file triggers a reload with the new values.
	good := strings.Replace(validYAML, "http_port: 8091", "http_port: 8092", 1)
	if err := os.WriteFile(path, []byte(good), 0o644); err != nil {
		t.Fatalf("write good config: %v", err)
	}
	select {
	case cfg := <-changes:
		if cfg.Server.HTTPPort != 8092 {
			t.Errorf("reloaded http_port: got %d, want 8092", cfg.Server.HTTPPort)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload after a valid edit")
	}
}
