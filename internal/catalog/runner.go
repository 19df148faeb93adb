package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// FileImporter imports one archive file from disk.
type FileImporter interface {
	ImportFile(ctx context.Context, path string) (*Record, error)
}

// Runner imports queued archive files one at a time. Imports mutate the
// shared workspace, so they never run concurrently.
type Runner struct {
	importer     FileImporter
	logger       *slog.Logger
	pollInterval time.Duration

	mu    sync.Mutex
	queue []string
	wake  chan struct{}

	running   atomic.Bool
	paused    atomic.Bool
	processed atomic.Int64
	failed    atomic.Int64
}

func NewRunner(importer FileImporter, logger *slog.Logger) *Runner {
	return &Runner{
		importer:     importer,
		logger:       logger,
		pollInterval: 5 * time.Second,
		wake:         make(chan struct{}, 1),
	}
}

// Enqueue adds path unless it is already waiting. It reports whether the
// path was added.
func (r *Runner) Enqueue(path string) bool {
	r.mu.Lock()
	if slices.Contains(r.queue, path) {
		r.mu.Unlock()
		return false
	}
	r.queue = append(r.queue, path)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
	return true
}

func (r *Runner) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("import runner started")

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("import runner stopping")
			r.running.Store(false)
			return
		case <-ticker.C:
		case <-r.wake:
		}
		if !r.paused.Load() {
			r.drain(ctx)
		}
	}
}

func (r *Runner) Pause() {
	r.paused.Store(true)
	r.logger.Info("import runner paused")
}

func (r *Runner) Resume() {
	r.paused.Store(false)
	r.logger.Info("import runner resumed")
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Stats returns how many queued imports finished and how many of them failed.
func (r *Runner) Stats() (processed, failed int64) {
	return r.processed.Load(), r.failed.Load()
}

func (r *Runner) drain(ctx context.Context) {
	for ctx.Err() == nil && !r.paused.Load() {
		path, ok := r.next()
		if !ok {
			return
		}
		r.process(ctx, path)
	}
}

func (r *Runner) next() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return "", false
	}
	path := r.queue[0]
	r.queue = r.queue[1:]
	return path, true
}

func (r *Runner) process(ctx context.Context, path string) {
	r.logger.Info("processing queued import", "path", path)

	rec, err := r.importer.ImportFile(ctx, path)
	r.processed.Add(1)
	if err != nil {
		r.failed.Add(1)
		r.logger.Error("queued import failed", "path", path, "error", err)
		return
	}
	r.logger.Info("queued import completed",
		"path", path,
		"archive_id", rec.ID,
		"warnings", len(rec.Warnings),
	)
}
