package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/alignprobe/alignprobe/internal/device"
)

// Sink receives the snapshots a poll produces. The snapshot store satisfies
// it; tests substitute an in-memory recorder.
type Sink interface {
	Put(Snapshot)
}

// Runner drives the acquisition loop: every interval it drains pending
// frames from the source, processes the newest one through the engine and
// publishes the resulting plane snapshots to the sink.
type Runner struct {
	Source   device.Source
	Engine   *Engine
	Store    Sink
	Interval time.Duration

	// MultFrames caps how many buffered frames one poll drains.
	MultFrames int

	lastFrame  device.Frame
	haveFrame  bool
	emptyReads int
}

// Run polls until ctx is cancelled or the source is exhausted (io.EOF, as
// the replay source reports). It returns nil on both.
func (r *Runner) Run(ctx context.Context) error {
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			if err := r.Poll(ctx, now); err != nil {
				if errors.Is(err, io.EOF) {
					slog.Info("monitor: source exhausted")
					return nil
				}
				slog.Warn("monitor: poll failed — keeping last frame", "err", err)
			}
		}
	}
}

// Poll executes one acquisition cycle at the given instant. When the source
// has no new frame the previous one is reprocessed so snapshots stay fresh
// in the store while the device hiccups.
func (r *Runner) Poll(ctx context.Context, now time.Time) error {
	frames, err := r.Source.ReadFrames(ctx, r.MultFrames)
	if err != nil {
		r.emptyReads++
		return err
	}

	frame, ok := Newest(frames)
	if !ok {
		r.emptyReads++
		if !r.haveFrame {
			return nil // nothing seen yet
		}
		frame = r.lastFrame
	} else {
		r.emptyReads = 0
		r.lastFrame = frame
		r.haveFrame = true
	}

	for _, snap := range r.Engine.Process(frame, now) {
		r.Store.Put(snap)
	}
	return nil
}

// EmptyReads returns the number of consecutive polls without a fresh frame.
func (r *Runner) EmptyReads() int { return r.emptyReads }
