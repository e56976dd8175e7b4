package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alignprobe/alignprobe/internal/align"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultSampleFrequency = 50.0
	DefaultScrapeTimeout   = 5 * time.Second
	DefaultFixedRadius     = 100.0
	DefaultRefreshMs       = 100
	DefaultMultFrames      = 32
	DefaultHTTPPort        = 8080
	DefaultSnapshotTTL     = 10 * time.Second
)

// Config is the top-level configuration tree. Fields map 1:1 to
// alignment.example.yaml.
type Config struct {
	Device   DeviceConfig     `yaml:"device"`
	Channels ChannelsConfig   `yaml:"channels"`
	View     ViewConfig       `yaml:"view"`
	Classes  AlignmentClasses `yaml:"alignment_classes"`
	Server   ServerConfig     `yaml:"server"`
}

// DeviceConfig selects and parameterises the gauge frame source.
type DeviceConfig struct {
	// Source is the frame source type: prom | replay | sim.
	Source string `yaml:"source"`

	// Endpoint is the bridge metrics URL for the prom source, or the
	// recording file path for the replay source. Unused by sim.
	Endpoint string `yaml:"endpoint"`

	// SampleFrequency is the nominal device sampling rate in Hz. It drives
	// the sim source cadence and is reported in /api/v1/health.
	SampleFrequency float64 `yaml:"sample_frequency"`

	// ScrapeTimeout bounds a single poll of the prom source.
	ScrapeTimeout time.Duration `yaml:"scrape_timeout"`
}

// ChannelsConfig maps measurement planes to device channels.
type ChannelsConfig struct {
	// SectionMap assigns, per plane, the 1-based device channel carrying the
	// gauge at each angular position.
	SectionMap map[string]PlaneChannels `yaml:"section_map"`
}

// PlaneChannels is the gauge-angle → channel assignment of one plane.
type PlaneChannels struct {
	E0   int `yaml:"e0"`
	E90  int `yaml:"e90"`
	E180 int `yaml:"e180"`
	E270 int `yaml:"e270"`
}

// All returns the four channel numbers in angular order.
func (p PlaneChannels) All() [4]int {
	return [4]int{p.E0, p.E90, p.E180, p.E270}
}

// ViewConfig holds live-view settings consumed by the render surfaces.
type ViewConfig struct {
	// AutoScale grows the view radius with the observed bending magnitude.
	AutoScale bool `yaml:"auto_scale"`

	// FixedRadius is the view radius used when AutoScale is off.
	FixedRadius float64 `yaml:"fixed_radius"`

	// RefreshMs is the render/broadcast interval in milliseconds.
	RefreshMs int `yaml:"refresh_ms"`

	// MultFrames caps how many buffered frames one poll drains; only the
	// newest frame is displayed.
	MultFrames int `yaml:"mult_frames"`
}

// RefreshInterval returns RefreshMs as a time.Duration.
func (v ViewConfig) RefreshInterval() time.Duration {
	return time.Duration(v.RefreshMs) * time.Millisecond
}

// AlignmentClasses is the YAML form of the tolerance table.
type AlignmentClasses struct {
	// Crossover is the signed axial strain at which classification switches
	// from the magnitude table to the percent table. Defaults to 1000.
	Crossover float64 `yaml:"crossover"`

	Small      []SmallClass `yaml:"classes_axial_strain_small"`
	Big        []BigClass   `yaml:"classes_axial_strain_big"`
	OutOfClass FallbackSpec `yaml:"out_of_class"`
}

// SmallClass is one band of the bending-magnitude table.
type SmallClass struct {
	Name    string  `yaml:"name"`
	EpsBMag float64 `yaml:"eps_b_mag"`
	Color   []int   `yaml:"color"`
}

// BigClass is one band of the percent-bending table.
type BigClass struct {
	Name       string  `yaml:"name"`
	MaxPercent float64 `yaml:"max_percent"`
	Color      []int   `yaml:"color"`
}

// FallbackSpec is the out-of-class label and color.
type FallbackSpec struct {
	Name  string `yaml:"name"`
	Color []int  `yaml:"color"`
}

// ServerConfig holds the HTTP/WebSocket server settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// SnapshotTTL is how long a plane snapshot stays live without updates.
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Device: DeviceConfig{
			Source:          "sim",
			SampleFrequency: DefaultSampleFrequency,
			ScrapeTimeout:   DefaultScrapeTimeout,
		},
		View: ViewConfig{
			AutoScale:   true,
			FixedRadius: DefaultFixedRadius,
			RefreshMs:   DefaultRefreshMs,
			MultFrames:  DefaultMultFrames,
		},
		Server: ServerConfig{
			HTTPPort:    DefaultHTTPPort,
			SnapshotTTL: DefaultSnapshotTTL,
		},
	}
}

// validate checks required fields and structural constraints, including the
// ascending-order contract of the class tables.
func validate(cfg *Config) error {
	switch cfg.Device.Source {
	case "prom", "replay", "sim":
	default:
		return fmt.Errorf("device.source: unknown type %q", cfg.Device.Source)
	}
	if cfg.Device.Source != "sim" && cfg.Device.Endpoint == "" {
		return fmt.Errorf("device.endpoint is required for source %q", cfg.Device.Source)
	}
	if cfg.Device.SampleFrequency <= 0 {
		return fmt.Errorf("device.sample_frequency must be positive")
	}
	if cfg.Device.ScrapeTimeout <= 0 {
		return fmt.Errorf("device.scrape_timeout must be positive")
	}

	if len(cfg.Channels.SectionMap) == 0 {
		return fmt.Errorf("channels.section_map must define at least one plane")
	}
	for plane, ch := range cfg.Channels.SectionMap {
		for _, n := range ch.All() {
			if n < 1 {
				return fmt.Errorf("channels.section_map[%s]: channel numbers are 1-based, got %d", plane, n)
			}
		}
	}

	if cfg.View.FixedRadius <= 0 {
		return fmt.Errorf("view.fixed_radius must be positive")
	}
	if cfg.View.RefreshMs < 10 {
		return fmt.Errorf("view.refresh_ms must be at least 10")
	}
	if cfg.View.MultFrames < 1 {
		return fmt.Errorf("view.mult_frames must be at least 1")
	}

	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be in 1..65535")
	}
	if cfg.Server.SnapshotTTL <= 0 {
		return fmt.Errorf("server.snapshot_ttl must be positive")
	}

	// Build the table once during validation so a misordered or malformed
	// class list fails startup, not the first classification.
	if _, err := cfg.Table(); err != nil {
		return err
	}
	return nil
}

// Planes returns the configured plane names in deterministic (sorted) order.
func (c *Config) Planes() []string {
	planes := make([]string, 0, len(c.Channels.SectionMap))
	for p := range c.Channels.SectionMap {
		planes = append(planes, p)
	}
	sort.Strings(planes)
	return planes
}

// ChannelNumbers returns the sorted distinct set of device channels
// referenced by the section map.
func (c *Config) ChannelNumbers() []int {
	seen := make(map[int]struct{})
	for _, pc := range c.Channels.SectionMap {
		for _, n := range pc.All() {
			seen[n] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Table builds the validated, immutable alignment tolerance table.
func (c *Config) Table() (*align.Table, error) {
	t := &align.Table{Crossover: c.Classes.Crossover}

	for i, sc := range c.Classes.Small {
		col, err := toColor(sc.Color)
		if err != nil {
			return nil, fmt.Errorf("alignment_classes.classes_axial_strain_small[%d] %q: %w", i, sc.Name, err)
		}
		t.SmallAxial = append(t.SmallAxial, align.Class{Name: sc.Name, Limit: sc.EpsBMag, Color: col})
	}
	for i, bc := range c.Classes.Big {
		col, err := toColor(bc.Color)
		if err != nil {
			return nil, fmt.Errorf("alignment_classes.classes_axial_strain_big[%d] %q: %w", i, bc.Name, err)
		}
		t.LargeAxial = append(t.LargeAxial, align.Class{Name: bc.Name, Limit: bc.MaxPercent, Color: col})
	}

	col, err := toColor(c.Classes.OutOfClass.Color)
	if err != nil {
		return nil, fmt.Errorf("alignment_classes.out_of_class: %w", err)
	}
	t.OutOfClass = align.Fallback{Name: c.Classes.OutOfClass.Name, Color: col}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// toColor converts a YAML [r, g, b] list into an align.Color.
func toColor(rgb []int) (align.Color, error) {
	if len(rgb) != 3 {
		return align.Color{}, fmt.Errorf("color must be [r, g, b], got %d components", len(rgb))
	}
	var c align.Color
	for i, v := range rgb {
		if v < 0 || v > 255 {
			return align.Color{}, fmt.Errorf("color component %d out of range 0..255: %d", i, v)
		}
		c[i] = uint8(v)
	}
	return c, nil
}
