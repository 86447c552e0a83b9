package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of fsnotify events a single save
// produces (many editors write-then-rename) behind one short timer,
// the same debounce shape as the teacher's sentinel.watchBinary.
const watchDebounce = 100 * time.Millisecond

// watchLoop watches path's parent directory and calls onChange once
// per settled write to path, running onChange once up front so the
// first result is never just "nothing to show yet". It blocks until
// interrupted; --watch is a cmd/bashrs-only feature, since the core's
// lint/purify operations are pure functions with no suspension points.
func watchLoop(path string, onChange func()) {
	onChange()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: watch disabled, failed to start fsnotify: %v\n", err)
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	if err := watcher.Add(dir); err != nil {
		fmt.Fprintf(os.Stderr, "bashrs: watch disabled, failed to watch %s: %v\n", dir, err)
		return
	}
	slog.Info("watching for changes", "path", path)

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("fsnotify error", "error", err)
		}
	}
}
