package analyzer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/TWRT/task-analyzer/internal/logging"
)

// WatchWeights reloads path into store whenever the file is written,
// created or replaced, until ctx is done. A file that fails to load keeps
// the previous weights. The parent directory is watched so editors that
// replace the file on save are picked up.
func WatchWeights(ctx context.Context, path string, store *WeightStore, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.NopLogger()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create weights watcher: %w", err)
	}

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch weights directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				weights, err := LoadWeights(target)
				if err != nil {
					logger.Warn("weights reload failed, keeping previous weights", "path", target, "error", err.Error())
					continue
				}
				store.Set(weights)
				logger.Info("weights reloaded", "path", target, "weights", weights.AsMap())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("weights watcher error", "error", err.Error())
			}
		}
	}()

	return nil
}
