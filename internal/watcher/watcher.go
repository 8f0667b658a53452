// Package watcher reports debounced changes to the board snapshot file.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay coalesces the create and rename of an atomic save into one
// notification.
const DefaultDelay = 100 * time.Millisecond

const changeOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the quiet period that must pass before onChange fires.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithErrorHandler receives errors reported by the filesystem watcher.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// Watcher calls onChange once per burst of writes to a single snapshot file.
// It watches the parent directory, because an atomic save replaces the
// file's inode and a file watch would go silent after the first save.
type Watcher struct {
	fsw      *fsnotify.Watcher
	target   string
	delay    time.Duration
	onChange func()
	onError  func(error)

	mu      sync.Mutex
	pending *time.Timer
}

// New watches the snapshot at path.
func New(path string, onChange func(), opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		target:   filepath.Base(abs),
		delay:    DefaultDelay,
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run dispatches events until ctx is done or the watcher is closed. A
// pending notification is dropped on cancellation.
func (w *Watcher) Run(ctx context.Context) {
	defer w.cancelPending()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&changeOps != 0 && filepath.Base(ev.Name) == w.target {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// Close releases the underlying watch.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Reset(w.delay)
		return
	}
	w.pending = time.AfterFunc(w.delay, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	w.pending = nil
	w.mu.Unlock()
	w.onChange()
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
}
