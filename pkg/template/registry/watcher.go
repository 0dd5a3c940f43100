package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PackWatcher watches spec pack files for changes and triggers reloads.
// It debounces bursts of events so an editor save touching several
// files produces a single reload.
type PackWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *PackWatcherConfig
	debounce *Debouncer

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// PackWatcherConfig contains configuration for the pack watcher.
type PackWatcherConfig struct {
	// Path is the pack file or directory to watch.
	Path string

	// DebounceInterval is the quiet period before a reload fires
	// (default: 100ms).
	DebounceInterval time.Duration

	// Extensions is the list of file extensions to watch.
	Extensions []string

	// SkipHidden controls whether hidden files are skipped.
	SkipHidden bool
}

// DefaultPackWatcherConfig returns the default watcher configuration.
func DefaultPackWatcherConfig() *PackWatcherConfig {
	return &PackWatcherConfig{
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml"},
		SkipHidden:       true,
	}
}

// NewPackWatcher creates a new pack watcher.
func NewPackWatcher(config *PackWatcherConfig, logger *slog.Logger) (*PackWatcher, error) {
	if config == nil {
		config = DefaultPackWatcherConfig()
	}
	if logger == nil {
		logger = slog.Default().With("component", "pack.watcher")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &PackWatcher{
		watcher:  watcher,
		logger:   logger,
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching for pack changes and invokes onReload after
// each debounced change. It blocks until the context is cancelled or
// Stop is called. The reload callback is expected to build and validate
// the new registry state off to the side and swap it in only on
// success, so a broken pack never replaces a working one.
func (pw *PackWatcher) Watch(ctx context.Context, onReload func() error) error {
	pw.mu.Lock()
	if pw.running {
		pw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	pw.running = true
	pw.mu.Unlock()

	defer func() {
		pw.mu.Lock()
		pw.running = false
		pw.mu.Unlock()
		close(pw.doneCh)
	}()

	if err := pw.addPath(pw.config.Path); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	pw.logger.Info("pack watcher started",
		"path", pw.config.Path,
		"debounce_ms", pw.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			pw.logger.Info("pack watcher stopped (context cancelled)")
			return nil

		case <-pw.stopCh:
			pw.logger.Info("pack watcher stopped")
			return nil

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if !pw.shouldProcessEvent(event) {
				continue
			}

			pw.logger.Debug("pack file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			pw.debounce.Trigger(func() {
				pw.logger.Info("triggering pack reload",
					"path", event.Name,
					"op", event.Op.String(),
				)

				if err := onReload(); err != nil {
					pw.logger.Error("pack reload failed, keeping previous registry state",
						"error", err,
					)
				}
			})

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}

			pw.logger.Error("pack watcher error", "error", err)
			// Keep watching despite errors
		}
	}
}

// Stop stops the pack watcher.
func (pw *PackWatcher) Stop() error {
	pw.mu.Lock()
	if !pw.running {
		pw.mu.Unlock()
		return nil
	}
	pw.mu.Unlock()

	close(pw.stopCh)
	<-pw.doneCh

	pw.debounce.Stop()

	if err := pw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	return nil
}

// addPath adds a file or directory to the watcher.
func (pw *PackWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return pw.addDirectory(path)
	}
	return pw.watcher.Add(path)
}

// addDirectory adds a directory and all subdirectories to the watcher.
func (pw *PackWatcher) addDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if pw.config.SkipHidden && strings.HasPrefix(filepath.Base(path), ".") && path != dir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if err := pw.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", path, err)
			}
			pw.logger.Debug("watching directory", "path", path)
		}

		return nil
	})
}

// shouldProcessEvent determines if an event should trigger a reload.
func (pw *PackWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	if !pw.hasValidExtension(ext) {
		return false
	}

	if pw.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	return true
}

// hasValidExtension checks if a file extension should be watched.
func (pw *PackWatcher) hasValidExtension(ext string) bool {
	for _, validExt := range pw.config.Extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// Debouncer collects rapid events and fires the callback only after a
// quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopCh   chan struct{}
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Trigger arms the debouncer with a new event. The callback runs after
// the debounce interval if no new events arrive first.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
			d.mu.Lock()
			cb := d.callback
			d.mu.Unlock()

			if cb != nil {
				cb()
			}
		}
	})
}

// Stop stops the debouncer and cancels any pending callback.
func (d *Debouncer) Stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
