package driven

import (
	"context"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// DocumentSource enumerates candidate files in the dataset.
type DocumentSource interface {
	// Root returns the dataset root directory.
	Root() string

	// FullSync walks the dataset and emits every candidate file.
	// Per-file read errors are sent on the error channel and the walk continues.
	// Both channels are closed when the walk ends.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch emits changes to candidate files until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close stops any active watch.
	Close() error
}
