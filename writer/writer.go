// Package writer persists emitted files. It runs strictly after the
// pipeline: a failed run reaches this package with zero files, so no
// partial output can ever land on disk.
package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DanielFGray/pg-sourcerer-sub001/emit"
)

// Writer writes emitted files under a root directory with bounded
// parallelism.
type Writer struct {
	root    string
	workers int
	dryRun  bool
	logger  *zap.Logger
}

// New creates a writer rooted at dir.
func New(root string) *Writer {
	return &Writer{
		root:    root,
		workers: runtime.GOMAXPROCS(0),
		logger:  zap.NewNop(),
	}
}

// WithWorkers sets the number of parallel writes.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// WithDryRun makes Write log what it would do without touching disk.
func (w *Writer) WithDryRun(dry bool) *Writer {
	w.dryRun = dry
	return w
}

// WithLogger sets the structured logger.
func (w *Writer) WithLogger(logger *zap.Logger) *Writer {
	if logger != nil {
		w.logger = logger
	}
	return w
}

// Write persists every file. Files are independent, so writes run in
// parallel up to the worker limit.
func (w *Writer) Write(ctx context.Context, files []*emit.File) error {
	if w.dryRun {
		for _, f := range files {
			w.logger.Info("would write",
				zap.String("path", filepath.Join(w.root, filepath.FromSlash(f.Path))),
				zap.Int("bytes", len(f.Content)))
		}
		return nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range files {
		f := f
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(f)
			}
		})
	}
	return eg.Wait()
}

func (w *Writer) writeFile(f *emit.File) error {
	target := filepath.Join(w.root, filepath.FromSlash(f.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("sourcerer: create output directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
		return fmt.Errorf("sourcerer: write %s: %w", f.Path, err)
	}
	w.logger.Debug("wrote file", zap.String("path", target), zap.Int("bytes", len(f.Content)))
	return nil
}
