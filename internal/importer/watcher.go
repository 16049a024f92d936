package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"nutriplan/internal/core"
)

// DoneSuffix is appended to a recipe file once it has been imported.
const DoneSuffix = ".imported"

// WatcherStats counts watcher activity.
type WatcherStats struct {
	Imported int
	Items    int
	Errors   int
	LastPath string
}

// Watcher imports recipe files dropped into a directory. Each file is
// imported once its writes have been quiet for the debounce period and is
// then renamed with DoneSuffix.
type Watcher struct {
	dir      string
	sink     Sink
	logger   core.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time
	stats   WatcherStats
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates dir if needed and prepares a watcher on it. A zero
// debounce defaults to 250ms.
func NewWatcher(dir string, sink Sink, logger core.Logger, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		sink:     sink,
		logger:   logger,
		debounce: debounce,
		watcher:  fw,
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start queues recipe files already in the directory and begins watching.
// It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan inbox: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && IsRecipeFile(e.Name()) {
			w.queue(filepath.Join(w.dir, e.Name()))
		}
	}
	w.logger.Info("recipe watcher started", "dir", w.dir)
	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and releases the fsnotify handle.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()
	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("close recipe watcher", "error", err)
	}
}

// Stats returns a copy of the counters.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	tick := time.NewTicker(w.debounce / 2)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && IsRecipeFile(event.Name) {
				w.queue(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("recipe watcher error", "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case now := <-tick.C:
			w.flushQuiet(ctx, now)
		}
	}
}

func (w *Watcher) queue(path string) {
	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flushQuiet(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		// An empty file is usually still being written; its next write event requeues it.
		if fi, err := os.Stat(path); err == nil && fi.Size() == 0 {
			continue
		}
		items, err := ImportFile(ctx, w.sink, path)
		if err == nil {
			err = os.Rename(path, path+DoneSuffix)
		}
		w.mu.Lock()
		if err != nil {
			w.stats.Errors++
		} else {
			w.stats.Imported++
			w.stats.Items += len(items)
			w.stats.LastPath = path
		}
		w.mu.Unlock()
		if err != nil {
			w.logger.Error("recipe import failed", "path", path, "error", err)
			continue
		}
		w.logger.Info("recipe imported", "path", path, "items", len(items))
	}
}
