package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

const defaultDebounce = 300 * time.Millisecond

// watcher rebuilds the site when files below the watched roots change.
// fsnotify is not recursive, so every directory is added on start and new
// directories are added as they appear.
type watcher struct {
	fs       *fsnotify.Watcher
	logger   interfaces.Logger
	debounce time.Duration
}

func newWatcher(roots []string, logger interfaces.Logger) (*watcher, error) {
	inner, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	w := &watcher{
		fs:       inner,
		logger:   logging.WithFields(logger, map[string]any{"component": "watch"}),
		debounce: defaultDebounce,
	}
	added := 0
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		if _, err := os.Stat(root); err != nil {
			continue
		}
		if err := w.addTree(root); err != nil {
			inner.Close()
			return nil, err
		}
		added++
	}
	if added == 0 {
		inner.Close()
		return nil, fmt.Errorf("watch: none of %v exist", roots)
	}
	return w, nil
}

func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run calls rebuild after each debounced burst of changes until ctx ends.
// Rebuild errors are logged, never fatal.
func (w *watcher) Run(ctx context.Context, rebuild func(context.Context) error) error {
	w.logger.Info("watch.started")

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watch.stopped")
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("watch.add_failed", "path", event.Name, "error", err)
					}
				}
			}
			w.logger.Debug("watch.change", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch.error", "error", err)
		case <-fire:
			fire = nil
			started := time.Now()
			if err := rebuild(ctx); err != nil {
				w.logger.Error("watch.rebuild.failed", "error", err)
				continue
			}
			w.logger.Info("watch.rebuild.completed", "duration", time.Since(started))
		}
	}
}

func (w *watcher) Close() error {
	return w.fs.Close()
}

func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}
