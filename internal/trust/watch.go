package trust

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads s from path whenever the file is written or recreated,
// until ctx is cancelled. The parent directory is watched rather than the
// file itself so editors that save via rename keep being picked up.
//
// A reload that fails to read or parse leaves the current set in place.
// onReload, if non-nil, is called after each successful reload.
func Watch(ctx context.Context, s *Set, path string, logger *slog.Logger, onReload func(n int)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("trust watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(reloadDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(reloadDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("trust watcher: stopped")
			return nil

		case <-timerCh:
			if err := s.LoadFile(abs); err != nil {
				logger.Warn("trust watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			n := s.Len()
			logger.Info("trust watcher: reloaded", slog.Int("domains", n))
			if onReload != nil {
				onReload(n)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("trust watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
