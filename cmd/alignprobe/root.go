package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "alignprobe",
	Short: "Shaft alignment monitor for four-gauge strain bridges",
	Long: `alignprobe - strain gauge alignment monitor

Decomposes four-gauge bridge readings (gauges at 0/90/180/270 degrees
around the specimen) into axial strain and a bending strain vector per
measurement plane, then grades each plane against an ordered table of
alignment classes.

Commands:
  serve     run the live monitor (device polling, REST API, WebSocket stream)
  replay    run a recorded CSV session through the pipeline and summarize it
  classify  classify a single set of four gauge readings
  export    render bending-view images from a recorded session
  version   print the version number`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "alignment.yaml", "path to config file")
}

// setupLogging installs the default JSON logger used by the long-running
// commands.
func setupLogging() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
}
