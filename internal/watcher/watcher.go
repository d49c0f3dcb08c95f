// Package watcher refreshes statistics when the history file changes on
// disk outside the service, e.g. a restore from backup or a manual edit.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// RefreshFunc is invoked when the watched file changed. It must not block.
type RefreshFunc func(ctx context.Context)

// HistoryWatcher watches one file via its parent directory. Watching the
// directory rather than the file survives the atomic rename rewrites the
// history store performs.
type HistoryWatcher struct {
	path    string
	refresh RefreshFunc
	logger  *slog.Logger
	limiter *rate.Limiter

	fw *fsnotify.Watcher
	wg sync.WaitGroup
}

// NewHistoryWatcher creates a watcher for the given file. Refreshes are
// rate limited to one per second regardless of event volume.
func NewHistoryWatcher(path string, refresh RefreshFunc, logger *slog.Logger) (*HistoryWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &HistoryWatcher{
		path:    filepath.Clean(path),
		refresh: refresh,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		fw:      fw,
	}, nil
}

// Start begins watching and returns immediately. Stop with Close or by
// canceling the context.
func (w *HistoryWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("watching history file",
		slog.String("path", w.path))
	return nil
}

// Close stops the watcher and waits for the event loop to exit.
func (w *HistoryWatcher) Close() error {
	err := w.fw.Close()
	w.wg.Wait()
	return err
}

func (w *HistoryWatcher) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.limiter.Allow() {
				continue
			}
			w.logger.Debug("history file changed",
				slog.String("op", event.Op.String()))
			w.refresh(ctx)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error",
				slog.String("error", err.Error()))

		case <-ctx.Done():
			return
		}
	}
}
