package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of fsnotify events an editor emits on
// one save (truncate + write, or create + rename for atomic saves) into a
// single reload.
const debounceWindow = 250 * time.Millisecond

// Watch reloads the config file whenever it changes and hands each valid
// result to onChange. Invalid edits (bad YAML, misordered class tables) are
// logged and ignored so the running config stays intact; fixing the file
// triggers a fresh reload attempt. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}
	slog.Info("config: watching for changes", "path", path)

	var debounce *time.Timer
	var pending <-chan time.Time

	reload := func() {
		pending = nil

		// An atomic save replaces the inode, which drops the watch.
		_ = w.Add(path)

		cfg, err := Load(path)
		if err != nil {
			slog.Error("config: reload failed, keeping previous config",
				"path", path, "err", err)
			return
		}
		slog.Info("config: reloaded", "path", path)
		onChange(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceWindow)
			} else {
				debounce.Reset(debounceWindow)
			}
			pending = debounce.C

		case <-pending:
			reload()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
