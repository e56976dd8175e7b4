package device

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/alignprobe/alignprobe/internal/config"
)

// Frame is one sampled set of channel values from the measurement device.
type Frame struct {
	At time.Time

	// Channels maps the 1-based device channel number to its strain reading.
	Channels map[int]float64
}

// Source is the common interface implemented by every frame source.
//
// ReadFrames returns up to max frames accumulated since the previous call,
// oldest first. An empty slice with a nil error means no new data — callers
// keep displaying the last frame. A non-nil error covers both transient
// failures (bridge unreachable) and end of input (io.EOF from replay).
type Source interface {
	ReadFrames(ctx context.Context, max int) ([]Frame, error)
}

// New returns the appropriate Source for the given device configuration.
func New(dev config.DeviceConfig, channels config.ChannelsConfig) (Source, error) {
	switch dev.Source {
	case "prom":
		return newPromSource(dev), nil
	case "replay":
		return newReplaySource(dev.Endpoint)
	case "sim":
		return newSimSource(dev, channels), nil
	default:
		return nil, fmt.Errorf("device: unsupported source %q", dev.Source)
	}
}

// fetchMetrics performs an HTTP GET to url and returns parsed metric families.
func fetchMetrics(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseMetrics(resp.Body)
}

// parseMetrics decodes a Prometheus text exposition from r into metric families.
// A partial result with a non-fatal parse warning is still returned successfully.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	// Non-empty result with a non-nil err means partial parse (trailing
	// lines, format warnings). Treat as success.
	return mfs, nil
}

// metricValue extracts the scalar value of a single metric, whatever its type.
func metricValue(m *dto.Metric) (float64, bool) {
	switch {
	case m.Gauge != nil:
		return m.Gauge.GetValue(), true
	case m.Counter != nil:
		return m.Counter.GetValue(), true
	case m.Untyped != nil:
		return m.Untyped.GetValue(), true
	}
	return 0, false
}
