package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alignprobe/alignprobe/internal/align"
	"github.com/alignprobe/alignprobe/internal/config"
	"github.com/alignprobe/alignprobe/internal/device"
	"github.com/alignprobe/alignprobe/internal/diagram"
	"github.com/alignprobe/alignprobe/internal/monitor"
	"github.com/alignprobe/alignprobe/internal/strain"
)

var (
	exportOutDir string
	exportPlane  string
	exportE0     float64
	exportE90    float64
	exportE180   float64
	exportE270   float64
)

var exportCmd = &cobra.Command{
	Use:   "export [recording.csv]",
	Short: "Render bending-view images of the measurement planes",
	Long: `Render one bending-view image per plane, showing the tolerance
circles of the class table and the bending vector colored by its
classification.

With a recording argument the last frame of the CSV session is rendered.
Without one the four gauge flags supply a single reading, rendered as
plane "X" (or the --plane name).

Examples:
  alignprobe export session.csv --out-dir out/
  alignprobe export --e0 510 --e90 470 --e180 450 --e270 490 --plane A`,
	Args: cobra.MaximumNArgs(1),
	Run:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutDir, "out-dir", "o", ".", "directory for the rendered images")
	exportCmd.Flags().StringVar(&exportPlane, "plane", "", "export only this plane (default: all)")
	exportCmd.Flags().Float64Var(&exportE0, "e0", 0, "strain at the 0 degree gauge (single-reading mode)")
	exportCmd.Flags().Float64Var(&exportE90, "e90", 0, "strain at the 90 degree gauge (single-reading mode)")
	exportCmd.Flags().Float64Var(&exportE180, "e180", 0, "strain at the 180 degree gauge (single-reading mode)")
	exportCmd.Flags().Float64Var(&exportE270, "e270", 0, "strain at the 270 degree gauge (single-reading mode)")
}

func runExport(cmd *cobra.Command, args []string) {
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

	var last map[string]monitor.Snapshot
	if len(args) == 1 {
		last, err = replayLastSnapshots(cfg, table, args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	} else {
		if !cmd.Flags().Changed("e0") {
			fmt.Fprintln(os.Stderr, "either a recording argument or the four gauge flags are required")
			os.Exit(1)
		}
		plane := exportPlane
		if plane == "" {
			plane = "X"
		}
		res := strain.Decompose(exportE0, exportE90, exportE180, exportE270)
		cls := align.Classify(res, table)
		last = map[string]monitor.Snapshot{plane: {
			Plane:          plane,
			At:             time.Now(),
			Axial:          res.AxialStrain,
			BendingX:       res.BendingX,
			BendingY:       res.BendingY,
			Magnitude:      res.BendingMagnitude,
			AngleRad:       res.BendingAngle,
			PercentBending: res.PercentBending,
			Class:          cls.Name,
			Color:          cls.Color,
			OutOfClass:     cls.OutOfClass,
		}}
	}

	radius := 0.0
	if !cfg.View.AutoScale {
		radius = cfg.View.FixedRadius
	}

	exported := 0
	for _, plane := range sortedPlanes(last) {
		if exportPlane != "" && plane != exportPlane {
			continue
		}
		name := fmt.Sprintf("plane-%s.png", strings.ToLower(plane))
		path := filepath.Join(exportOutDir, name)
		data := diagram.PlaneViewData{Snapshot: last[plane], Table: table, Radius: radius}
		if err := diagram.ExportPlanePNG(data, path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", path)
		exported++
	}
	if exported == 0 {
		fmt.Fprintln(os.Stderr, "nothing exported")
		os.Exit(1)
	}
}

// replayLastSnapshots runs a recording through the pipeline and returns the
// final snapshot of each plane.
func replayLastSnapshots(cfg *config.Config, table *align.Table, recording string) (map[string]monitor.Snapshot, error) {
	source, err := device.New(config.DeviceConfig{Source: "replay", Endpoint: recording}, cfg.Channels)
	if err != nil {
		return nil, err
	}
	engine := monitor.NewEngine(cfg, table)

	last := make(map[string]monitor.Snapshot)
	ctx := context.Background()
	for {
		frames, err := source.ReadFrames(ctx, cfg.View.MultFrames)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, f := range frames {
			for _, s := range engine.Process(f, f.At) {
				last[s.Plane] = s
			}
		}
	}
	return last, nil
}

func sortedPlanes(m map[string]monitor.Snapshot) []string {
	planes := make([]string, 0, len(m))
	for p := range m {
		planes = append(planes, p)
	}
	sort.Strings(planes)
	return planes
}
