package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"

	"media-resolver/internal/logging"
)

// DefaultDebounce is the debounce window applied when WatcherConfig leaves
// Debounce unset. Bursts of events within the window coalesce into a single
// OnChange callback per dirty directory.
const DefaultDebounce = 2 * time.Second

// WatcherConfig configures a directory Watcher.
type WatcherConfig struct {
	// Debounce is the quiet window events are coalesced over.
	Debounce time.Duration
	// Clock drives the debounce timer. Defaults to the real clock;
	// tests inject a fake.
	Clock clockwork.Clock
	// OnChange is invoked once per dirty directory after the debounce
	// window closes.
	OnChange func(dir string)
}

// Watcher monitors a set of media root directories (and their
// subdirectories) with fsnotify and reports changed directories through a
// debounced OnChange callback. New subdirectories are added to the watch set
// as they appear.
type Watcher struct {
	roots    []string
	onChange func(dir string)
	deb      *debouncer
	fsw      *fsnotify.Watcher
	newFsw   func() (*fsnotify.Watcher, error)
	stop     chan struct{}
	done     chan struct{}
	watched  int
}

// NewWatcher creates a watcher over the given root directories.
func NewWatcher(roots []string, cfg WatcherConfig) *Watcher {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w := &Watcher{
		roots:    roots,
		onChange: cfg.OnChange,
		newFsw:   fsnotify.NewWatcher,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	w.deb = newDebouncer(cfg.Clock, cfg.Debounce, w.fire)
	return w
}

// Run starts watching and blocks until Stop is called or the underlying
// watcher closes. The error return covers setup only; runtime errors are
// logged and counted. done closes on every exit path, including setup
// failure, so Stop never blocks on a watcher that never started.
func (w *Watcher) Run() error {
	defer close(w.done)

	fsw, err := w.newFsw()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsw = fsw
	defer func() {
		if err := fsw.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}()

	for _, root := range w.roots {
		w.addDirectoryTree(root)
	}
	logging.Debug("Watcher started, watching %d directories", w.watched)
	if o := observe(); o != nil {
		o.SetWatchedDirectories(w.watched)
	}

	go w.deb.run()
	defer w.deb.stopRun()

	w.processEvents()
	return nil
}

// Stop terminates the watch loop. Safe to call once.
func (w *Watcher) Stop() {
	close(w.stop)
	<-w.done
}

// addDirectoryTree adds root and all non-hidden subdirectories to the watch set.
func (w *Watcher) addDirectoryTree(root string) {
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			logging.Warn("failed to add path to watcher %s: %v", path, addErr)
			if o := observe(); o != nil {
				o.ObserveWatcherError()
			}
			return nil
		}
		w.watched++
		return nil
	})
	if err != nil {
		logging.Error("failed to walk %s for watcher: %v", root, err)
		if o := observe(); o != nil {
			o.ObserveWatcherError()
		}
	}
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher error: %v", err)
			if o := observe(); o != nil {
				o.ObserveWatcherError()
			}

		case <-w.stop:
			return
		}
	}
}

// handleEvent records the event and marks the affected directory dirty.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Skip hidden files
	if strings.Contains(event.Name, "/.") {
		return
	}

	if o := observe(); o != nil {
		o.ObserveWatcherEvent(eventType(event.Op))
	}

	dir := filepath.Dir(event.Name)
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if addErr := w.fsw.Add(event.Name); addErr != nil {
				logging.Warn("failed to add new directory to watcher %s: %v", event.Name, addErr)
				if o := observe(); o != nil {
					o.ObserveWatcherError()
				}
			} else {
				logging.Debug("Added new directory to watcher: %s", event.Name)
				w.watched++
				if o := observe(); o != nil {
					o.SetWatchedDirectories(w.watched)
				}
			}
			dir = event.Name
		}
	}

	w.deb.mark(dir)
}

// fire delivers debounced change notifications.
func (w *Watcher) fire(dirs []string) {
	for _, dir := range dirs {
		logging.Debug("Directory changed: %s", dir)
		if o := observe(); o != nil {
			o.ObserveWatcherRefresh()
		}
		if w.onChange != nil {
			w.onChange(dir)
		}
	}
}

// eventType returns a string representation of the fsnotify operation.
func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}

// debouncer coalesces directory marks into one batched fire per quiet window.
type debouncer struct {
	clock  clockwork.Clock
	window time.Duration
	marks  chan string
	stop   chan struct{}
	fire   func(dirs []string)
}

func newDebouncer(clock clockwork.Clock, window time.Duration, fire func(dirs []string)) *debouncer {
	return &debouncer{
		clock:  clock,
		window: window,
		marks:  make(chan string, 256),
		stop:   make(chan struct{}),
		fire:   fire,
	}
}

// mark flags a directory as dirty. Non-blocking: if the mark buffer is full
// the event is dropped, which is acceptable because a pending flush will
// already cover the directory in most bursts.
func (d *debouncer) mark(dir string) {
	select {
	case d.marks <- dir:
	default:
	}
}

func (d *debouncer) stopRun() {
	close(d.stop)
}

func (d *debouncer) run() {
	dirty := make(map[string]struct{})
	var flush <-chan time.Time

	for {
		select {
		case dir := <-d.marks:
			dirty[dir] = struct{}{}
			if flush == nil {
				flush = d.clock.After(d.window)
			}

		case <-flush:
			flush = nil
			dirs := make([]string, 0, len(dirty))
			for dir := range dirty {
				dirs = append(dirs, dir)
			}
			sort.Strings(dirs)
			dirty = make(map[string]struct{})
			d.fire(dirs)

		case <-d.stop:
			return
		}
	}
}
