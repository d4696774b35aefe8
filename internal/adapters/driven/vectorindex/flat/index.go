// Package flat provides an exact, in-memory cosine similarity index.
// Every query scans all vectors, which is fast enough for a corpus of a
// few hundred thousand chunks.
package flat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

var _ driven.VectorIndex = (*Index)(nil)

// Index stores L2-normalised vectors so cosine similarity is a dot product.
type Index struct {
	mu        sync.RWMutex
	dimension int
	ids       []string
	vectors   [][]float32
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", domain.ErrInvalidInput, dimension)
	}
	return &Index{dimension: dimension}, nil
}

// Factory adapts New to driven.VectorIndexFactory.
func Factory(dimension int) (driven.VectorIndex, error) {
	return New(dimension)
}

// Add appends a vector. Insertion order is the tie-break order for Search.
func (idx *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if len(embedding) != idx.dimension {
		return fmt.Errorf("%w: vector has %d dimensions, index expects %d",
			domain.ErrInvalidInput, len(embedding), idx.dimension)
	}
	v := normalise(embedding)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ids = append(idx.ids, chunkID)
	idx.vectors = append(idx.vectors, v)
	return nil
}

// Search returns the k most similar vectors, best first.
// Equal scores keep insertion order.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			domain.ErrInvalidInput, len(query), idx.dimension)
	}
	if k <= 0 {
		return nil, nil
	}
	q := normalise(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]driven.VectorHit, len(idx.vectors))
	for i, v := range idx.vectors {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits[i] = driven.VectorHit{ChunkID: idx.ids[i], Ordinal: i, Similarity: dot(q, v)}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Similarity > hits[b].Similarity
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Dimensions returns the vector size.
func (idx *Index) Dimensions() int {
	return idx.dimension
}

// Close releases the stored vectors.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ids = nil
	idx.vectors = nil
	return nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// normalise returns a unit-length copy of v. A zero vector stays zero and
// scores 0 against everything.
func normalise(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	inv := 1 / math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
