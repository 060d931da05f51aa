package retrieval

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches bursts of file events into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Rebuilder rebuilds the knowledge base from the corpus.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// Watcher rebuilds the knowledge base when eligible corpus files change.
type Watcher struct {
	rebuilder Rebuilder
	dir       string
	eligible  func(name string) bool
	debounce  time.Duration
	logger    *zap.Logger
}

// NewWatcher creates a corpus watcher for dir. eligible filters file names; nil accepts all.
func NewWatcher(
	rebuilder Rebuilder, dir string, eligible func(string) bool,
	debounce time.Duration, logger *zap.Logger,
) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if eligible == nil {
		eligible = func(string) bool { return true }
	}
	return &Watcher{
		rebuilder: rebuilder,
		dir:       dir,
		eligible:  eligible,
		debounce:  debounce,
		logger:    logger,
	}
}

// Run watches until ctx is done. Rebuild failures are logged and the previous index stays served.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close() //nolint:errcheck // best-effort on shutdown

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.logger.Info("Watching knowledge base directory",
		zap.String("dir", w.dir),
		zap.Duration("debounce", w.debounce),
	)

	// Stopped until the first change. Reset never delivers a stale tick (Go 1.23+).
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Knowledge base file changed",
				zap.String("file", event.Name),
				zap.String("op", event.Op.String()),
			)
			// every change restarts the quiet period
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error", zap.Error(err))
		case <-timer.C:
			w.rebuild(ctx)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	start := time.Now()
	if err := w.rebuilder.Rebuild(ctx); err != nil {
		w.logger.Error("Knowledge base rebuild failed", zap.Error(err))
		return
	}
	w.logger.Info("Knowledge base rebuilt after change", zap.Duration("duration", time.Since(start)))
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return w.eligible(filepath.Base(event.Name))
}
