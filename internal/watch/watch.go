// Package watch re-runs pipeline builds when extraction sources change.
// A filesystem watcher provides fast reaction to edits; a periodic resync
// job catches changes the watcher can miss (new subdirectories on platforms
// with non-recursive watches, network filesystems).
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docpipe/internal/logfields"
)

// RebuildFunc is invoked, debounced, after source changes settle.
type RebuildFunc func(ctx context.Context) error

// SourceWatcher monitors pipeline source directories and triggers rebuilds.
type SourceWatcher struct {
	dirs      []string
	rebuild   RebuildFunc
	watcher   *fsnotify.Watcher
	scheduler gocron.Scheduler
	debounce  time.Duration
	resync    time.Duration

	changeChan chan struct{}
	stopChan   chan struct{}
}

// NewSourceWatcher creates a watcher over the given directories.
// resync of 0 disables the periodic rebuild job.
func NewSourceWatcher(dirs []string, debounce, resync time.Duration, rebuild RebuildFunc) (*SourceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &SourceWatcher{
		dirs:       dirs,
		rebuild:    rebuild,
		watcher:    watcher,
		debounce:   debounce,
		resync:     resync,
		changeChan: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}, nil
}

// Start registers the watched directories and begins monitoring.
func (w *SourceWatcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.addRecursive(dir); err != nil {
			return err
		}
	}

	if w.resync > 0 {
		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create resync scheduler: %w", err)
		}
		_, err = s.NewJob(
			gocron.DurationJob(w.resync),
			gocron.NewTask(func() { w.triggerChange() }),
			gocron.WithName("source-resync"),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule resync job: %w", err)
		}
		s.Start()
		w.scheduler = s
		slog.Debug("Scheduled periodic resync",
			logfields.Name("source-resync"),
			slog.Duration("interval", w.resync))
	}

	slog.Info("Watching extraction sources", slog.Int("dirs", len(w.dirs)))
	go w.watchLoop(ctx)
	go w.rebuildLoop(ctx)
	return nil
}

// Stop stops the watcher and the resync scheduler.
func (w *SourceWatcher) Stop() error {
	close(w.stopChan)
	if w.scheduler != nil {
		if err := w.scheduler.Shutdown(); err != nil {
			slog.Error("Error shutting down resync scheduler", logfields.Error(err))
		}
	}
	return w.watcher.Close()
}

// addRecursive registers dir and all its subdirectories with the watcher.
// fsnotify watches are not recursive on most platforms.
func (w *SourceWatcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("Skipping unwatchable entry", logfields.Path(path), logfields.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *SourceWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				slog.Debug("Source change detected", logfields.File(event.Name))
				if event.Op&fsnotify.Create != 0 {
					// New subdirectories must be added to the watch set.
					_ = w.addRecursive(event.Name)
				}
				w.triggerChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Source watcher error", logfields.Error(err))
		}
	}
}

// rebuildLoop coalesces rapid change bursts into one rebuild per quiet
// period. The timer only signals; the rebuild itself runs inline in this
// loop, so rebuilds never overlap. Changes arriving mid-rebuild queue at most
// one follow-up rebuild.
func (w *SourceWatcher) rebuildLoop(ctx context.Context) {
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.changeChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			if err := w.rebuild(ctx); err != nil {
				slog.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

// triggerChange notes a pending change; a rebuild already pending absorbs it.
func (w *SourceWatcher) triggerChange() {
	select {
	case w.changeChan <- struct{}{}:
	default:
	}
}
