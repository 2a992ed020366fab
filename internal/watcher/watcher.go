package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leefowlercu/pkmgraph/internal/graph"
)

// Watcher monitors the notes directory for markdown changes and drives
// them into the graph's single-writer sync methods.
type Watcher interface {
	// Start begins watching the notes directory and processing events.
	Start(ctx context.Context) error

	// Stop stops the watcher.
	Stop() error

	// Stats returns current watcher statistics.
	Stats() WatcherStats

	// Errors reports fatal watcher errors.
	Errors() <-chan error
}

// WatcherStats contains statistics about watcher activity.
type WatcherStats struct {
	WatchedPaths    int
	EventsReceived  int64
	EventsProcessed int64
	EventsDropped   int64
	Errors          int64
	IsRunning       bool
	DegradedMode    bool
}

// WatcherOption configures the Watcher.
type WatcherOption func(*watcher)

// WithDebounceWindow sets the debounce window for event coalescing.
func WithDebounceWindow(d time.Duration) WatcherOption {
	return func(w *watcher) {
		w.debounceWindow = d
	}
}

// WithDeleteGracePeriod sets the grace period before publishing delete events.
func WithDeleteGracePeriod(d time.Duration) WatcherOption {
	return func(w *watcher) {
		w.deleteGracePeriod = d
	}
}

// WithQueueCapacity bounds the coalesced-events channel. Once full, new
// events are dropped and counted rather than blocking the fsnotify reader.
func WithQueueCapacity(n int) WatcherOption {
	return func(w *watcher) {
		w.queueCapacity = n
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *watcher) {
		w.logger = logger
	}
}

// watcher implements the Watcher interface over a single notes directory.
type watcher struct {
	notesDir  string
	g         *graph.Graph
	fsWatcher *fsnotify.Watcher
	coalescer *Coalescer
	logger    *slog.Logger

	debounceWindow    time.Duration
	deleteGracePeriod time.Duration
	queueCapacity     int

	mu       sync.RWMutex
	stats    WatcherStats
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	errChan chan error
}

// New creates a Watcher over notesDir, dispatching changes into g.
func New(notesDir string, g *graph.Graph, opts ...WatcherOption) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher; %w", err)
	}

	absDir, err := filepath.Abs(notesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve notes directory; %w", err)
	}

	w := &watcher{
		notesDir:          absDir,
		g:                 g,
		fsWatcher:         fsw,
		logger:            slog.Default(),
		debounceWindow:    2 * time.Second,
		deleteGracePeriod: 5 * time.Second,
		queueCapacity:     1024,
		stopCh:            make(chan struct{}),
		doneCh:            make(chan struct{}),
		errChan:           make(chan error, 1),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.coalescer = NewCoalescer(w.debounceWindow, w.deleteGracePeriod, w.queueCapacity)
	w.coalescer.OnOverflow = func(path string) {
		w.mu.Lock()
		w.stats.EventsDropped++
		w.mu.Unlock()
		w.logger.Warn("watcher queue full, event dropped", "path", path)
	}

	return w, nil
}

// watchTree adds a recursive fsnotify watch rooted at notesDir, skipping
// hidden directories.
func (w *watcher) watchTree() error {
	watched := 0
	err := filepath.WalkDir(w.notesDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.notesDir && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := w.addWatch(p); err != nil {
			w.logger.Warn("failed to add watch", "path", p, "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			return nil
		}
		watched++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk notes directory; %w", err)
	}

	w.mu.Lock()
	w.stats.WatchedPaths = watched
	w.mu.Unlock()
	return nil
}

// addWatch adds a single directory to the fsnotify watcher.
func (w *watcher) addWatch(path string) error {
	if err := w.fsWatcher.Add(path); err != nil {
		if isWatchLimitError(err) {
			w.mu.Lock()
			w.stats.DegradedMode = true
			w.mu.Unlock()
			w.logger.Warn("watch limit reached, entering degraded mode", "path", path)
			return nil
		}
		return err
	}
	return nil
}

// Start begins watching the notes directory and processing events.
func (w *watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stats.IsRunning = true
	w.mu.Unlock()

	if err := w.watchTree(); err != nil {
		w.mu.Lock()
		w.running = false
		w.stats.IsRunning = false
		w.mu.Unlock()
		return err
	}

	go w.processEvents(ctx)
	go w.processCoalescedEvents(ctx)

	return nil
}

// Stop stops the watcher.
func (w *watcher) Stop() error {
	var stopErr error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		if !w.running {
			w.mu.Unlock()
			return
		}
		w.running = false
		w.stats.IsRunning = false
		w.mu.Unlock()

		w.coalescer.Stop()

		close(w.stopCh)
		<-w.doneCh

		stopErr = w.fsWatcher.Close()
	})
	return stopErr
}

// Stats returns current watcher statistics.
func (w *watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// Errors returns a channel for fatal watcher errors.
func (w *watcher) Errors() <-chan error {
	return w.errChan
}

// processEvents reads from fsnotify and feeds the coalescer.
func (w *watcher) processEvents(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
			w.logger.Error("fsnotify error", "error", err)
			select {
			case w.errChan <- err:
			default:
			}
		}
	}
}

// handleFsEvent processes a single fsnotify event, filtering to markdown
// files and directory creation.
func (w *watcher) handleFsEvent(event fsnotify.Event) {
	w.mu.Lock()
	w.stats.EventsReceived++
	w.mu.Unlock()

	if isEditorNoise(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := w.addWatch(event.Name); err != nil {
					w.logger.Warn("failed to add watch for new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	if !isMarkdownFile(event.Name) {
		return
	}

	var eventType CoalescedEventType
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		eventType = EventDelete
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Write):
		eventType = EventModify
	default:
		return
	}

	w.coalescer.Add(CoalescedEvent{
		Path:      event.Name,
		Type:      eventType,
		Timestamp: time.Now(),
	})
}

// processCoalescedEvents drains the coalescer and dispatches into the graph.
func (w *watcher) processCoalescedEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ce, ok := <-w.coalescer.Events():
			if !ok {
				return
			}
			w.dispatch(ctx, ce)
		}
	}
}

// dispatch applies a coalesced event to the graph via its sync methods.
func (w *watcher) dispatch(ctx context.Context, ce CoalescedEvent) {
	var err error
	switch ce.Type {
	case EventDelete:
		err = w.g.RemoveFile(ce.Path)
	default:
		_, err = w.g.SyncFile(ctx, ce.Path)
	}

	if err != nil {
		w.logger.Error("sync failed for watched file", "path", ce.Path, "error", err)
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.stats.EventsProcessed++
	w.mu.Unlock()
}

// isMarkdownFile reports whether path has a markdown extension.
func isMarkdownFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// isEditorNoise returns true if the file is a transient editor artifact.
// These appear and disappear rapidly during editing and would otherwise
// cause spurious syncs.
func isEditorNoise(path string) bool {
	name := filepath.Base(path)

	if strings.HasSuffix(name, ".swp") || strings.HasSuffix(name, ".swo") || strings.HasSuffix(name, ".swn") {
		return true
	}
	if name == "4913" {
		return true
	}
	if strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#") {
		return true
	}
	if strings.HasSuffix(name, "~") {
		return true
	}
	return false
}

// isWatchLimitError checks if an error indicates watch limit exhaustion.
func isWatchLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "too many open files") ||
		strings.Contains(errStr, "no space left on device") ||
		strings.Contains(errStr, "user limit on total number of inotify watches")
}
