// Package watcher triggers debounced callbacks on file system changes. The
// daemon uses it to republish when the task source changes; the preview uses
// it to reload when the store is written.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay coalesces bursts of events, such as a temp file write
// followed by a rename, into one callback.
const DefaultDelay = 150 * time.Millisecond

// Filter reports whether a changed path is relevant.
type Filter func(path string) bool

// Extension matches paths with the given extension, e.g. ".md".
func Extension(ext string) Filter {
	return func(path string) bool {
		return strings.EqualFold(filepath.Ext(path), ext)
	}
}

// Base matches paths whose file name is one of names.
func Base(names ...string) Filter {
	return func(path string) bool {
		base := filepath.Base(path)
		for _, n := range names {
			if base == n {
				return true
			}
		}
		return false
	}
}

// Watcher watches directories and invokes a callback with debouncing.
type Watcher struct {
	fsw      *fsnotify.Watcher
	delay    time.Duration
	filter   Filter
	callback func()

	mu    sync.Mutex
	timer *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithFilter restricts callbacks to matching paths.
func WithFilter(f Filter) Option {
	return func(w *Watcher) { w.filter = f }
}

// New creates a Watcher for paths. Directories are watched non-recursively.
func New(paths []string, callback func(), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fsw:      fsw,
		delay:    DefaultDelay,
		callback: callback,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run starts the watch loop. It blocks until the context is canceled or the
// watcher is closed. Errors from fsnotify go to the optional errFn.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return w.filter == nil || w.filter(event.Name)
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.callback)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}
