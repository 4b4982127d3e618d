package services

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher reloads engine state when a watched file changes on disk.
// The corpus cache's mtime check misses edits on bind-mounted volumes
// with coarse timestamp granularity; the watcher closes that gap.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	handlers map[string]func() // keyed by absolute file path
	timers   map[string]*time.Timer
	done     chan struct{}
}

// NewFileWatcher creates a watcher with a 500ms change debounce.
func NewFileWatcher() (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &FileWatcher{
		watcher:  watcher,
		debounce: 500 * time.Millisecond,
		handlers: make(map[string]func()),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Watch registers a change handler for one file. The containing
// directory is watched rather than the file itself, which survives
// editors that replace the file on save.
func (w *FileWatcher) Watch(path string, onChange func()) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w.mu.Lock()
	w.handlers[absPath] = onChange
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	log.Printf("👁️  Watching %s for changes (hot-reload enabled)", path)
	return nil
}

// Run dispatches watcher events until Stop is called. Meant to run on
// its own goroutine.
func (w *FileWatcher) Run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.fire(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️  File watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// fire schedules the handler for a changed path, collapsing rapid
// successive events into one call.
func (w *FileWatcher) fire(name string) {
	absPath, err := filepath.Abs(name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	handler, ok := w.handlers[absPath]
	if !ok {
		return
	}
	if timer := w.timers[absPath]; timer != nil {
		timer.Stop()
	}
	w.timers[absPath] = time.AfterFunc(w.debounce, func() {
		log.Printf("🔄 Detected changes in %s, reloading...", name)
		handler()
	})
}

// Stop closes the watcher and stops event dispatch.
func (w *FileWatcher) Stop() {
	close(w.done)
	if err := w.watcher.Close(); err != nil {
		log.Printf("⚠️  Failed to close file watcher: %v", err)
	}
}
