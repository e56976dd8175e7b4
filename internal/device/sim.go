package device

import (
	"context"
	"math"
	"time"

	"github.com/alignprobe/alignprobe/internal/config"
)

// Synthetic signal parameters. The bending vector rotates once every
// rotationPeriod with a magnitude that slowly breathes, on top of a steady
// axial load, so every alignment class is visited over a demo session.
const (
	simAxialStrain   = 480.0
	simBendingBase   = 6.0
	simBendingSwing  = 4.0
	simBreathePeriod = 45 * time.Second
	simRotatePeriod  = 12 * time.Second
)

// simSource generates synthetic gauge frames consistent with the section map:
// decomposing a simulated plane recovers the intended axial strain and
// rotating bending vector exactly.
type simSource struct {
	channels config.ChannelsConfig
	interval time.Duration
	start    time.Time
	now      func() time.Time // injectable for deterministic tests
	last     time.Time
}

func newSimSource(dev config.DeviceConfig, channels config.ChannelsConfig) *simSource {
	interval := time.Duration(float64(time.Second) / dev.SampleFrequency)
	now := time.Now
	return &simSource{
		channels: channels,
		interval: interval,
		start:    now(),
		now:      now,
	}
}

// ReadFrames emits the frames whose sample instants elapsed since the last
// call, capped at max (newest retained).
func (s *simSource) ReadFrames(ctx context.Context, max int) ([]Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()
	if s.last.IsZero() {
		s.last = now.Add(-s.interval)
	}

	var frames []Frame
	for at := s.last.Add(s.interval); !at.After(now); at = at.Add(s.interval) {
		frames = append(frames, s.frameAt(at))
		s.last = at
		if len(frames) > max {
			frames = frames[1:] // keep only the newest max frames
		}
	}
	return frames, nil
}

// frameAt builds the synthetic frame for one sample instant.
func (s *simSource) frameAt(at time.Time) Frame {
	elapsed := at.Sub(s.start).Seconds()
	phase := 2 * math.Pi * elapsed / simRotatePeriod.Seconds()
	breathe := math.Sin(2 * math.Pi * elapsed / simBreathePeriod.Seconds())
	mag := simBendingBase + simBendingSwing*breathe

	frame := Frame{At: at, Channels: make(map[int]float64)}
	for i, plane := range planeOrder(s.channels) {
		// Offset plane phases so A and B show distinct vectors.
		p := phase + float64(i)*math.Pi/3
		bx := mag * math.Cos(p)
		by := mag * math.Sin(p)

		pc := s.channels.SectionMap[plane]
		frame.Channels[pc.E0] = simAxialStrain + bx
		frame.Channels[pc.E180] = simAxialStrain - bx
		frame.Channels[pc.E90] = simAxialStrain + by
		frame.Channels[pc.E270] = simAxialStrain - by
	}
	return frame
}

func planeOrder(channels config.ChannelsConfig) []string {
	cfg := config.Config{Channels: channels}
	return cfg.Planes()
}
