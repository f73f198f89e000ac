package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// quiet period after the last change to a file before it is re-checked
const watchDebounce = 100 * time.Millisecond

var (
	ErrAlreadyWatching = errors.New("already watching")
	ErrNotWatching     = errors.New("not watching")
)

// WatchHandler receives the result of re-checking a changed file.
type WatchHandler func(result *Result, err error)

// StartWatching watches dirs recursively and re-checks every written or
// created file whose extension is in extensions. Each file is checked once
// its changes have been quiet for a short period, and checks never run
// concurrently with each other.
func (e *Engine) StartWatching(dirs []string, extensions []string, handler WatchHandler) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isWatching {
		return ErrAlreadyWatching
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			watcher.Close()
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[ext] = true
	}

	e.watcher = watcher
	e.pending = newDebouncer(watchDebounce)
	e.done = make(chan struct{})
	e.isWatching = true
	go e.watchLoop(watcher, e.done, e.pending, wanted, handler)
	return nil
}

func (e *Engine) StopWatching() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isWatching {
		return ErrNotWatching
	}

	e.isWatching = false
	close(e.done)
	e.pending.stop()
	return e.watcher.Close()
}

func (e *Engine) watchLoop(
	watcher *fsnotify.Watcher,
	done <-chan struct{},
	pending *debouncer,
	wanted map[string]bool,
	handler WatchHandler,
) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			e.handleFileEvent(event, pending, wanted, handler)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func (e *Engine) handleFileEvent(event fsnotify.Event, pending *debouncer, wanted map[string]bool, handler WatchHandler) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !wanted[filepath.Ext(event.Name)] {
		return
	}

	name := event.Name
	pending.trigger(name, func() {
		result, err := e.Run(name)
		if result == nil && err == nil {
			return
		}
		handler(result, err)
	})
}

// debouncer delays a call per key until no new trigger for that key has
// arrived for delay.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool

	// serializes the delayed calls
	run sync.Mutex
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok && t.Stop() {
		t.Reset(d.delay)
		return
	}

	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.timers[key] == t {
			delete(d.timers, key)
		}
		stopped := d.stopped
		d.mu.Unlock()
		if stopped {
			return
		}

		d.run.Lock()
		defer d.run.Unlock()
		fn()
	})
	d.timers[key] = t
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
