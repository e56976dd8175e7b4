package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alignprobe/alignprobe/internal/api"
	"github.com/alignprobe/alignprobe/internal/config"
	"github.com/alignprobe/alignprobe/internal/device"
	"github.com/alignprobe/alignprobe/internal/monitor"
	"github.com/alignprobe/alignprobe/internal/store"
	"github.com/alignprobe/alignprobe/internal/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the live alignment monitor",
	Long: `Poll the configured frame source, decompose and classify each
measurement plane, and serve the results over a REST API and a
WebSocket stream.

The config file is watched for changes; edits to the alignment class
tables take effect without a restart.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	setupLogging()

	slog.Info("alignprobe starting", "config", cfgPath)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"source", cfg.Device.Source,
		"planes", cfg.Planes(),
		"http_port", cfg.Server.HTTPPort,
		"snapshot_ttl", cfg.Server.SnapshotTTL,
	)

	table, err := cfg.Table()
	if err != nil {
		slog.Error("failed to build class table", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Snapshot store with background TTL eviction.
	st := store.New(cfg.Server.SnapshotTTL)
	go st.Run(ctx)

	engine := monitor.NewEngine(cfg, table)

	source, err := device.New(cfg.Device, cfg.Channels)
	if err != nil {
		slog.Error("failed to open frame source", "err", err)
		os.Exit(1)
	}

	runner := &monitor.Runner{
		Source:     source,
		Engine:     engine,
		Store:      st,
		Interval:   cfg.View.RefreshInterval(),
		MultFrames: cfg.View.MultFrames,
	}
	go func() {
		if err := runner.Run(ctx); err != nil {
			slog.Error("monitor stopped", "err", err)
		}
	}()

	// Watch the config file so class table edits apply without a restart.
	go func() {
		if err := config.Watch(ctx, cfgPath, func(updated *config.Config) {
			t, err := updated.Table()
			if err != nil {
				slog.Warn("reloaded config has a bad class table, keeping current", "err", err)
				return
			}
			engine.SetTable(t)
			slog.Info("class table hot-reloaded",
				"small_classes", len(t.SmallAxial),
				"large_classes", len(t.LargeAxial),
			)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// WebSocket hub broadcasts plane snapshots on the view refresh cadence.
	hub := ws.New(st, cfg.View.RefreshInterval())
	go hub.Run(ctx)

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.New(st))
	httpMux.Handle("/ws/stream", hub)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("alignprobe shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
