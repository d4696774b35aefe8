package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
	"github.com/custodia-labs/campus-rag/internal/logger"
)

var _ driving.Watcher = (*Watcher)(nil)

// Rebuilder rebuilds the index, waiting for any running rebuild first.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*domain.IngestReport, error)
}

// Watcher rebuilds the index when the dataset changes. Bursts of changes
// within the debounce window collapse into one rebuild.
type Watcher struct {
	source    driven.DocumentSource
	rebuilder Rebuilder
	debounce  time.Duration
	log       logger.Logger
}

// NewWatcher creates a watcher. A non-positive debounce uses the default.
func NewWatcher(source driven.DocumentSource, rebuilder Rebuilder, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = domain.DefaultDebounce
	}
	return &Watcher{
		source:    source,
		rebuilder: rebuilder,
		debounce:  debounce,
		log:       logger.For("watcher"),
	}
}

// Run watches until ctx is cancelled, returning ctx.Err(). It returns early
// with an error if the dataset cannot be watched or the watch ends.
func (w *Watcher) Run(ctx context.Context) error {
	changes, err := w.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.source.Root(), err)
	}
	w.log.Info("watching %s (debounce %s)", w.source.Root(), w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case change, ok := <-changes:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				return fmt.Errorf("watch %s: event stream closed", w.source.Root())
			}
			w.log.Debug("%s %s", change.Type, change.Document.Path)
			pending++
			timer.Reset(w.debounce)

		case <-timer.C:
			w.log.Info("%d dataset changes, rebuilding index", pending)
			pending = 0
			if _, err := w.rebuilder.Rebuild(ctx); err != nil {
				w.log.Error("rebuild failed: %v", err)
			}
		}
	}
}
