package driven

import (
	"context"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// LoaderRegistry dispatches a raw document to the loader for its source type.
type LoaderRegistry interface {
	// Load extracts documents with the loader registered for raw.Type.
	// Returns domain.ErrUnsupportedType when no loader is registered.
	Load(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error)

	// Register adds a loader, replacing any existing one for the same type.
	Register(loader Loader)

	// SupportedTypes returns the registered source types in canonical order.
	SupportedTypes() []domain.SourceType
}
