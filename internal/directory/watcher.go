package directory

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/eventmetrics/internal/logfields"
)

// DefaultDebounce coalesces bursts of writes to the directory file.
const DefaultDebounce = 500 * time.Millisecond

// Reloader is implemented by directories backed by a file.
type Reloader interface {
	Path() string
	Reload() error
}

// Watcher reloads a file-backed directory whenever its file changes.
type Watcher struct {
	target   Reloader
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func()

	mu       sync.Mutex
	stopChan chan struct{}
	stopped  bool
	reloadCh chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithOnReload registers fn to run after every successful reload, e.g. to
// purge a lookup cache.
func WithOnReload(fn func()) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher creates a watcher for target's backing file.
func NewWatcher(target Reloader, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	absPath, err := filepath.Abs(target.Path())
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}
	w := &Watcher{
		target:   target,
		path:     absPath,
		watcher:  fw,
		debounce: DefaultDebounce,
		stopChan: make(chan struct{}),
		reloadCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The parent directory is watched so editors that
// replace the file atomically are still noticed.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	slog.Info("Starting directory file watcher", logfields.Path(w.path))

	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			switch {
			case ev.Op.Has(fsnotify.Write), ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Rename):
				slog.Debug("Directory file change detected", logfields.File(ev.Name), slog.String("op", ev.Op.String()))
				w.trigger()
			case ev.Op.Has(fsnotify.Remove):
				slog.Warn("Directory file removed; keeping last loaded content", logfields.File(ev.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Directory watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) trigger() {
	select {
	case w.reloadCh <- struct{}{}:
	default:
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	var timer *time.Timer
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-w.stopChan:
			stop()
			return
		case <-w.reloadCh:
			stop()
			timer = time.AfterFunc(w.debounce, w.reload)
		}
	}
}

func (w *Watcher) reload() {
	if err := w.target.Reload(); err != nil {
		slog.Error("Failed to reload directory file", logfields.Path(w.path), logfields.Error(err))
		return
	}
	slog.Info("Directory file reloaded", logfields.Path(w.path))
	if w.onReload != nil {
		w.onReload()
	}
}
