package driven

import "context"

// VectorIndex provides similarity search over chunk vectors.
// An index is append-only while it is being built and read-only once
// published; Search must be safe for concurrent callers after that point.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector.
	// Hits are ordered by similarity; ties keep insertion order.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of vectors held.
	Len() int

	// Dimensions returns the vector size the index accepts.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorIndexFactory creates an empty index for the given vector size.
type VectorIndexFactory func(dimensions int) (VectorIndex, error)

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Ordinal is the insertion position of the vector.
	Ordinal int

	// Similarity is the cosine similarity score.
	Similarity float64
}
