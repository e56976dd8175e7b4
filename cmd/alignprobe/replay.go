package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alignprobe/alignprobe/internal/config"
	"github.com/alignprobe/alignprobe/internal/device"
	"github.com/alignprobe/alignprobe/internal/diagram"
	"github.com/alignprobe/alignprobe/internal/monitor"
)

var replayCmd = &cobra.Command{
	Use:   "replay <recording.csv>",
	Short: "Run a recorded session through the alignment pipeline",
	Long: `Replay a CSV recording (header "timestamp,ch1,ch2,...") through the
decomposition and classification pipeline and print a per-plane summary
with an ascii trend of the bending magnitude.`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	table, err := cfg.Table()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	source, err := device.New(config.DeviceConfig{Source: "replay", Endpoint: args[0]}, cfg.Channels)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	engine := monitor.NewEngine(cfg, table)

	history := make(map[string][]float64)
	last := make(map[string]monitor.Snapshot)
	frameCount := 0

	ctx := context.Background()
	for {
		frames, err := source.ReadFrames(ctx, cfg.View.MultFrames)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, f := range frames {
			frameCount++
			for _, s := range engine.Process(f, f.At) {
				history[s.Plane] = append(history[s.Plane], s.Magnitude)
				last[s.Plane] = s
			}
		}
	}

	fmt.Printf("Replayed %d frames from %s\n\n", frameCount, args[0])
	for _, plane := range engine.Planes() {
		s, ok := last[plane]
		if !ok {
			fmt.Printf("Plane %s: no frames\n\n", plane)
			continue
		}
		fmt.Print(diagram.Summary(s))
		if trend := diagram.Trend(plane, history[plane]); trend != "" {
			fmt.Println()
			fmt.Print(trend)
		}
		fmt.Println()
	}
}
