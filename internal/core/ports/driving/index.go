package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// IndexService manages the searchable index lifecycle.
type IndexService interface {
	// Start loads the persisted index, rebuilding it from the dataset when
	// loading fails. A failed rebuild is returned to the caller.
	Start(ctx context.Context) error

	// Rebuild ingests the dataset, builds, persists and publishes a new index.
	// Rebuilds are serialized; the previous index keeps serving until the swap.
	Rebuild(ctx context.Context) (*domain.IngestReport, error)

	// TryRebuild is Rebuild that fails with domain.ErrRebuildInProgress
	// instead of waiting for a running rebuild.
	TryRebuild(ctx context.Context) (*domain.IngestReport, error)

	// Status reports the current lifecycle state.
	Status() domain.IndexStatus
}

// Combiner writes every dataset document to a single tagged text stream.
type Combiner interface {
	Combine(ctx context.Context, w io.Writer) (*domain.IngestReport, error)
}
