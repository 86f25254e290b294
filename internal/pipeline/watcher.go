package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/graphlore/graphlore/internal/source"
)

// DefaultDebounce is the quiet period before a changed file is re-ingested.
// Editors often emit several write events per save.
const DefaultDebounce = time.Second

// Watcher re-ingests files as they change on disk. Events are debounced per
// path; the content-hash dedup in the orchestrator makes redundant
// re-ingestion of identical content a no-op.
type Watcher struct {
	orchestrator *Orchestrator
	watcher      *fsnotify.Watcher
	opts         DirectoryOptions
	debounce     time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher over the orchestrator.
func NewWatcher(orchestrator *Orchestrator, opts DirectoryOptions, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		orchestrator: orchestrator,
		watcher:      fw,
		opts:         opts,
		debounce:     DefaultDebounce,
		logger:       logger.With("component", "watcher"),
		pending:      make(map[string]*time.Timer),
	}, nil
}

// WithDebounce overrides the debounce delay.
// Returns the watcher for method chaining.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Watch registers a directory tree for change events.
func (w *Watcher) Watch(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Run consumes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 && w.watchNewDir(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// watchNewDir registers a directory created after the watch began and
// reports whether path was a directory. Hidden and dependency trees are
// skipped, matching Watch.
func (w *Watcher) watchNewDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" {
		return true
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("failed to watch new directory", "path", path, "error", err)
	}
	return true
}

// schedule debounces the path and triggers re-ingestion after the quiet
// period.
func (w *Watcher) schedule(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		src := source.NewFileSource(path)
		if src.Type == source.SourceTypeUnknown && !w.opts.IncludeUnknown {
			return
		}
		result := w.orchestrator.Process(ctx, src)
		if !result.Success {
			w.logger.Warn("re-ingestion failed",
				"path", path, "stage", result.FailedStage, "error", result.ErrorMessage)
			return
		}
		w.logger.Info("re-ingested changed file", "path", path, "chunks", result.ChunkCount())
	})
}
