package driven

import (
	"context"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// Loader extracts text from one file format.
// Each source type has exactly one loader.
type Loader interface {
	// Type returns the source type this loader handles.
	Type() domain.SourceType

	// Load extracts zero or more documents from a raw file.
	// PDF, Word and text files yield at most one document; a JSON array
	// yields one per qualifying item. Empty extraction is not an error.
	// Failures are returned as *domain.IngestionError.
	Load(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error)
}
