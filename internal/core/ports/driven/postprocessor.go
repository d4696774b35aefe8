package driven

import (
	"context"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// PostProcessor transforms a document on its way to the index.
// Processors are chained: the normaliser rewrites text, the chunker cuts it.
type PostProcessor interface {
	// Name returns the processor name used in configuration.
	Name() string

	// Process receives the document and the chunks produced so far.
	// A processor that only rewrites the document returns chunks unchanged;
	// a processor that creates chunks ignores its input chunks.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
