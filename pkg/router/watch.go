package router

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches an application directory tree and reports changes to
// role files, debounced so that editor save bursts trigger one rescan.
type Watcher struct {
	root     string
	logger   *slog.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
	onChange func()
	stopCh   chan struct{}
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithWatchLogger sets the logger. Defaults to slog.Default().
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(w *Watcher) { w.logger = logger }
}

// WithDebounce sets the event coalescing window. Defaults to 250ms.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a watcher over the directory tree rooted at root.
// onChange runs after each debounced burst of relevant events.
func NewWatcher(root string, onChange func(), opts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("router: create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		logger:   slog.Default(),
		debounce: 250 * time.Millisecond,
		watcher:  fsw,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins delivering change notifications until Stop is called.
func (w *Watcher) Start() {
	go w.loop()
	w.logger.Info("watching application directory", "root", w.root)
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

// addTree registers root and every non-excluded subdirectory.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && excludedSegment(d.Name()) {
			return fs.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("router: watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("application tree changed", "event", event.Op.String(), "path", event.Name)

			// New directories must be added to the watch set so role files
			// created inside them later are seen too.
			if event.Op&fsnotify.Create != 0 {
				w.watchIfDir(event.Name)
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			w.onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// relevant filters events down to role files and directory-level changes.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if excludedSegment(base) {
		return false
	}
	if _, ok := roleFiles[base]; ok {
		return true
	}
	// Create/rename/remove may concern directories; those always matter.
	return event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

func (w *Watcher) watchIfDir(p string) {
	if err := w.addTree(p); err != nil {
		w.logger.Debug("could not extend watch set", "path", p, "error", err)
	}
}
