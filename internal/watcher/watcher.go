// Package watcher reports archive files that appear in a directory.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type Watcher interface {
	Watch(ctx context.Context, path string) error
	Stop() error
	OnChange(callback func(path string, event EventType))
}

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// DefaultSettle is how long a file must stay unchanged before it is
// reported. Archives are usually copied in several writes.
const DefaultSettle = 500 * time.Millisecond

// FSWatcher watches one directory, non-recursively. Creates and writes are
// reported once the file has been quiet for the settle period; removals
// are reported immediately.
type FSWatcher struct {
	fsw    *fsnotify.Watcher
	logger *slog.Logger
	settle time.Duration
	match  func(name string) bool

	mu       sync.Mutex
	callback func(path string, event EventType)
	pending  map[string]*pendingFile

	done     chan struct{}
	stopOnce sync.Once
}

type pendingFile struct {
	timer *time.Timer
	event EventType
}

// NewFSWatcher returns a watcher that reports files accepted by match. A
// nil match accepts every file.
func NewFSWatcher(logger *slog.Logger, settle time.Duration, match func(name string) bool) (*FSWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	if match == nil {
		match = func(string) bool { return true }
	}
	return &FSWatcher{
		fsw:     fsw,
		logger:  logger,
		settle:  settle,
		match:   match,
		pending: make(map[string]*pendingFile),
		done:    make(chan struct{}),
	}, nil
}

func (w *FSWatcher) OnChange(callback func(path string, event EventType)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = callback
}

// Watch starts watching dir, creating it if needed. Matching files already
// present are reported as created.
func (w *FSWatcher) Watch(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create watch dir: %w", err)
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go w.loop(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() && w.match(e.Name()) {
			w.schedule(filepath.Join(dir, e.Name()), EventCreate)
		}
	}

	w.logger.Info("watching directory", "path", dir)
	return nil
}

func (w *FSWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()

		w.mu.Lock()
		for p, pf := range w.pending {
			pf.timer.Stop()
			delete(w.pending, p)
		}
		w.mu.Unlock()
	})
	return err
}

func (w *FSWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *FSWatcher) handle(event fsnotify.Event) {
	if !w.match(filepath.Base(event.Name)) {
		return
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.mu.Lock()
		if pf, ok := w.pending[event.Name]; ok {
			pf.timer.Stop()
			delete(w.pending, event.Name)
		}
		w.mu.Unlock()
		w.emit(event.Name, EventDelete)
	case event.Has(fsnotify.Create):
		w.schedule(event.Name, EventCreate)
	case event.Has(fsnotify.Write):
		w.schedule(event.Name, EventModify)
	}
}

// schedule (re)starts the settle timer of path. A create followed by
// writes is still reported as a create.
func (w *FSWatcher) schedule(path string, event EventType) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	if pf, ok := w.pending[path]; ok {
		pf.timer.Reset(w.settle)
		return
	}
	w.pending[path] = &pendingFile{
		event: event,
		timer: time.AfterFunc(w.settle, func() { w.fire(path) }),
	}
}

func (w *FSWatcher) fire(path string) {
	w.mu.Lock()
	pf, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	w.mu.Unlock()
	if !ok {
		return
	}

	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		return
	}
	w.emit(path, pf.event)
}

func (w *FSWatcher) emit(path string, event EventType) {
	w.mu.Lock()
	cb := w.callback
	w.mu.Unlock()

	w.logger.Debug("file change", "path", path, "event", event.String())
	if cb != nil {
		cb(path, event)
	}
}
