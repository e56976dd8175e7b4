package device

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/alignprobe/alignprobe/internal/config"
)

// Metric names exposed by the gauge bridge.
const (
	// Per-channel strain reading, labelled channel="N" (1-based).
	bridgeGaugeStrain = "alignprobe_gauge_strain"

	// Monotonic frame counter; a new frame is available when it advances.
	bridgeFramesTotal = "alignprobe_frames_total"
)

// channelLabel is the label carrying the 1-based channel number.
const channelLabel = "channel"

// promSource scrapes a device bridge exposing gauge channels in Prometheus
// text exposition format. One scrape yields at most one frame: when the
// bridge's frame counter has not advanced since the previous scrape, the
// sample is considered stale and no frame is returned.
type promSource struct {
	endpoint string
	client   *http.Client

	lastSeq float64
	haveSeq bool
}

func newPromSource(dev config.DeviceConfig) *promSource {
	return &promSource{
		endpoint: dev.Endpoint,
		client:   &http.Client{Timeout: dev.ScrapeTimeout},
	}
}

// ReadFrames scrapes the bridge once. max is ignored beyond its sign since a
// scrape carries a single consolidated frame.
func (s *promSource) ReadFrames(ctx context.Context, max int) ([]Frame, error) {
	if max < 1 {
		return nil, nil
	}

	mfs, err := fetchMetrics(ctx, s.client, s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("device: bridge scrape %q: %w", s.endpoint, err)
	}

	// Skip duplicate frames when the bridge exposes a frame counter.
	if fc := mfs[bridgeFramesTotal]; fc != nil && len(fc.GetMetric()) > 0 {
		if seq, ok := metricValue(fc.GetMetric()[0]); ok {
			if s.haveSeq && seq == s.lastSeq {
				return nil, nil
			}
			s.lastSeq, s.haveSeq = seq, true
		}
	}

	mf := mfs[bridgeGaugeStrain]
	if mf == nil {
		return nil, fmt.Errorf("device: bridge exposition has no %s metric", bridgeGaugeStrain)
	}

	frame := Frame{At: time.Now().UTC(), Channels: make(map[int]float64)}
	for _, m := range mf.GetMetric() {
		ch, ok := channelOf(m.GetLabel())
		if !ok {
			continue
		}
		if v, ok := metricValue(m); ok {
			frame.Channels[ch] = v
		}
	}
	if len(frame.Channels) == 0 {
		return nil, fmt.Errorf("device: %s metric carries no %s labels", bridgeGaugeStrain, channelLabel)
	}
	return []Frame{frame}, nil
}

// channelOf extracts the channel number from a metric's label pairs.
func channelOf(labels []*dto.LabelPair) (int, bool) {
	for _, lp := range labels {
		if lp.GetName() != channelLabel {
			continue
		}
		n, err := strconv.Atoi(lp.GetValue())
		if err != nil || n < 1 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
