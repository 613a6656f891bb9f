// Package watch re-runs generation when watched files change. Events are
// debounced so editor save storms trigger one regeneration, not ten.
package watch

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the settle window after the last event before the
// callback fires.
const DefaultDebounce = 250 * time.Millisecond

// Watcher invokes a callback after changes to a set of paths settle.
type Watcher struct {
	paths    []string
	debounce time.Duration
	logger   *zap.Logger
}

// New creates a watcher over the given paths.
func New(paths []string) *Watcher {
	return &Watcher{paths: paths, debounce: DefaultDebounce, logger: zap.NewNop()}
}

// WithDebounce overrides the settle window.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// WithLogger sets the structured logger.
func (w *Watcher) WithLogger(logger *zap.Logger) *Watcher {
	if logger != nil {
		w.logger = logger
	}
	return w
}

// Run blocks until the context is canceled, invoking fn after each settled
// batch of changes. Errors from fn are logged, not fatal: a broken state
// mid-edit should not kill the watch loop.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, p := range w.paths {
		if err := fw.Add(p); err != nil {
			return err
		}
		w.logger.Debug("watching", zap.String("path", p))
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("change detected", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-fire:
			timer = nil
			fire = nil
			if err := fn(ctx); err != nil {
				w.logger.Error("regeneration failed", zap.Error(err))
			}
		}
	}
}
