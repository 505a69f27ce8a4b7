package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mycelica/holerabbit/pkg/logger"
)

// Watcher monitors the config file and reports debounced change events,
// so a running agent picks up edits without a restart.
//
// The parent directory is watched rather than the file itself: editors
// commonly replace the file on save, which would drop a direct watch.
type Watcher interface {
	// Start begins watching the config file.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - path: Config file to watch
	//
	// Returns error if watching cannot be started.
	Start(ctx context.Context, path string) error

	// Reloads returns the channel signalling that the file changed.
	//
	// Events are debounced; no further events arrive after Close. The
	// channel itself stays open so a debounce firing during shutdown
	// never sends on a closed channel.
	Reloads() <-chan time.Time

	// Close stops watching and releases resources.
	Close() error
}

// WatcherConfig contains config watcher settings.
type WatcherConfig struct {
	// DebounceInterval coalesces rapid write events.
	// Default: 250ms.
	DebounceInterval time.Duration
}

// watcher implements the Watcher interface using fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	logger logger.Logger
	config WatcherConfig

	reloads chan time.Time

	mu      sync.Mutex
	running bool
	closed  bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a config file watcher.
func NewWatcher(cfg WatcherConfig, log logger.Logger) (Watcher, error) {
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = 250 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &watcher{
		fsw:     fsw,
		logger:  log,
		config:  cfg,
		reloads: make(chan time.Time, 1),
	}, nil
}

// Start implements Watcher.Start.
func (w *watcher) Start(ctx context.Context, path string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyWatching
	}
	w.running = true
	w.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		w.setStopped()
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	dir := filepath.Dir(abs)
	if err := w.fsw.Add(dir); err != nil {
		w.setStopped()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go w.loop(ctx, abs)

	w.logger.Info("config watcher started", "path", abs)
	return nil
}

// Reloads implements Watcher.Reloads.
func (w *watcher) Reloads() <-chan time.Time {
	return w.reloads
}

// setStopped clears the running flag after a failed Start so the
// caller can retry.
func (w *watcher) setStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()

	return w.fsw.Close()
}

// loop consumes fsnotify events until the context is done or the
// underlying watcher closes.
//
// The reloads channel is never closed: a debounce timer armed just
// before shutdown may still fire, and its non-blocking send must land
// in the buffer (or be dropped) rather than hit a closed channel.
func (w *watcher) loop(ctx context.Context, path string) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// scheduleReload arms (or re-arms) the debounce timer for a change event.
func (w *watcher) scheduleReload(event fsnotify.Event) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	w.logger.Debug("config file changed", "path", event.Name, "op", event.Op.String())

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.config.DebounceInterval, func() {
		select {
		case w.reloads <- time.Now():
		default:
			// A reload is already pending; the consumer re-reads the
			// file, so coalescing is safe.
		}
	})
}
