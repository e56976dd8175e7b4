package device

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// replaySource replays a CSV recording of gauge frames.
//
// Expected layout: a header row of "timestamp,ch1,ch2,..." followed by one
// row per frame. Timestamps are RFC 3339; channel columns are named chN with
// N the 1-based device channel. Values parse as floats; "nan" is accepted so
// recorded acquisition glitches replay faithfully.
type replaySource struct {
	path   string
	frames []Frame
	pos    int
}

func newReplaySource(path string) (*replaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("device: open recording: %w", err)
	}
	defer f.Close()

	frames, err := parseRecording(f)
	if err != nil {
		return nil, fmt.Errorf("device: recording %q: %w", path, err)
	}
	return &replaySource{path: path, frames: frames}, nil
}

// ReadFrames returns the next up-to-max recorded frames. Once the recording
// is exhausted it returns io.EOF.
func (s *replaySource) ReadFrames(ctx context.Context, max int) ([]Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	end := s.pos + max
	if end > len(s.frames) {
		end = len(s.frames)
	}
	out := s.frames[s.pos:end]
	s.pos = end
	return out, nil
}

// Len returns the total number of recorded frames.
func (s *replaySource) Len() int { return len(s.frames) }

// parseRecording reads the whole CSV into memory. Recordings are short
// (minutes of 8-channel data), so streaming is not worth the bookkeeping.
func parseRecording(r io.Reader) ([]Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 || strings.ToLower(header[0]) != "timestamp" {
		return nil, fmt.Errorf("header must start with \"timestamp\" followed by chN columns")
	}

	// Map column index → channel number.
	cols := make(map[int]int, len(header)-1)
	for i := 1; i < len(header); i++ {
		name := strings.ToLower(strings.TrimSpace(header[i]))
		n, convErr := strconv.Atoi(strings.TrimPrefix(name, "ch"))
		if !strings.HasPrefix(name, "ch") || convErr != nil || n < 1 {
			return nil, fmt.Errorf("column %d: expected chN, got %q", i, header[i])
		}
		cols[i] = n
	}

	var frames []Frame
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("line %d: got %d fields, want %d", line, len(rec), len(header))
		}

		at, err := time.Parse(time.RFC3339Nano, rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: timestamp: %w", line, err)
		}

		frame := Frame{At: at, Channels: make(map[int]float64, len(cols))}
		for i, ch := range cols {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: channel %d: %w", line, ch, err)
			}
			frame.Channels[ch] = v
		}
		frames = append(frames, frame)
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("recording has no frames")
	}
	return frames, nil
}
