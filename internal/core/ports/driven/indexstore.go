package driven

import (
	"context"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// IndexStore persists an index as an artifact plus sidecar metadata.
// Both files present, with a matching checksum, is the "ready" signal.
type IndexStore interface {
	// Save writes the snapshot atomically: a reader never observes a
	// sidecar that describes a partially written artifact.
	Save(ctx context.Context, snapshot *domain.IndexSnapshot) error

	// Load reads a snapshot. Missing or corrupt files fail with domain.ErrIndexLoad.
	Load(ctx context.Context) (*domain.IndexSnapshot, error)

	// Exists reports whether both files are present.
	Exists() bool

	// Remove deletes the persisted index.
	Remove() error

	// Path returns the index directory.
	Path() string
}
