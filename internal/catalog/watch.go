package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long the catalog file must stay quiet before a
// re-sync. Editors often write a file in several steps.
const DefaultSettleDelay = 300 * time.Millisecond

// Watch re-syncs the catalog whenever its file changes, until ctx is done.
// The parent directory is watched so editors that replace the file by
// rename are still observed.
func (s *Syncer) Watch(ctx context.Context, settle time.Duration) error {
	if s.path == "" {
		return errors.New("no catalog file to watch")
	}
	if settle <= 0 {
		settle = DefaultSettleDelay
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(s.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	s.logger.Info("watching badge catalog", slog.String("path", target))

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	resync := func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.Sync(ctx); err != nil {
			s.logger.Error("badge catalog reload failed, keeping previous definitions",
				slog.String("path", target),
				slog.String("error", err.Error()))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(settle, resync)
			mu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("badge catalog watcher error", slog.String("error", err.Error()))
		}
	}
}
