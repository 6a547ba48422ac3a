// Package watcher reports source file changes under a project directory.
// It watches recursively, skips dependency and VCS directories, and drops
// repeated events for one path inside the debounce interval.
package watcher

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the window in which repeated events for a path are
// dropped. Editors often write a file several times per save.
const DefaultDebounce = 50 * time.Millisecond

// Directories never watched.
var ignoreDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".idea":        true,
	".vscode":      true,
	"node_modules": true,
	"vendor":       true,
}

// Op is the kind of change.
type Op string

const (
	OpCreate Op = "create"
	OpWrite  Op = "write"
	OpRemove Op = "remove"
	OpRename Op = "rename"
)

// Event is a change to the file at the absolute Path.
type Event struct {
	Path string
	Op   Op
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// Watcher wraps an fsnotify watcher.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// New creates a watcher. Nothing is watched until Watch.
func New(opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:       fw,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts monitoring root recursively. onEvent is called from a
// single goroutine, in event order.
func (w *Watcher) Watch(root string, onEvent func(Event)) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if err := w.addTree(absRoot); err != nil {
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(absRoot, onEvent)
	}()
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignoreDirs[d.Name()] {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}

// debouncer drops repeat events for a path within window. Entries older
// than the window are pruned on every call, so it only holds paths seen
// recently.
type debouncer struct {
	window time.Duration
	last   map[string]time.Time
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, last: make(map[string]time.Time)}
}

// allow reports whether an event for path at now should be delivered.
func (d *debouncer) allow(path string, now time.Time) bool {
	for p, t := range d.last {
		if now.Sub(t) >= d.window {
			delete(d.last, p)
		}
	}
	if _, seen := d.last[path]; seen {
		return false
	}
	d.last[path] = now
	return true
}

func (w *Watcher) loop(root string, onEvent func(Event)) {
	debounce := newDebouncer(w.debounce)

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			path := event.Name

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					if !ignoreDirs[info.Name()] {
						if err := w.addTree(path); err != nil {
							w.logger.Debug("failed to watch new directory", "path", path, "error", err)
						}
					}
					continue
				}
			}
			if ignoredPath(root, path) {
				continue
			}

			op, ok := opOf(event)
			if !ok {
				continue
			}

			if !debounce.allow(path, time.Now()) {
				continue
			}

			onEvent(Event{Path: path, Op: op})

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

func opOf(event fsnotify.Event) (Op, bool) {
	switch {
	case event.Has(fsnotify.Remove):
		return OpRemove, true
	case event.Has(fsnotify.Rename):
		return OpRename, true
	case event.Has(fsnotify.Create):
		return OpCreate, true
	case event.Has(fsnotify.Write):
		return OpWrite, true
	}
	return "", false
}

// ignoredPath reports whether any component of path below root is an
// ignored directory.
func ignoredPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}
	return false
}

// Stop ends monitoring and waits for the event goroutine to exit.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.done)
	w.mu.Unlock()

	err := w.fw.Close()
	w.wg.Wait()
	return err
}
