package flat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

func TestNew(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Dimensions())
	assert.Equal(t, 0, idx.Len())

	_, err = New(0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_RanksByCosine(t *testing.T) {
	ctx := context.Background()
	idx, err := New(2)
	require.NoError(t, err)

	require.NoError(t, idx.Add(ctx, "east", []float32{1, 0}))
	require.NoError(t, idx.Add(ctx, "north", []float32{0, 5}))
	require.NoError(t, idx.Add(ctx, "northeast", []float32{3, 3}))

	hits, err := idx.Search(ctx, []float32{10, 1}, 2)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "east", hits[0].ChunkID)
	assert.Equal(t, 0, hits[0].Ordinal)
	assert.Equal(t, "northeast", hits[1].ChunkID)
	assert.InDelta(t, 0.995, hits[0].Similarity, 0.001)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	idx, err := New(2)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, idx.Add(ctx, fmt.Sprintf("c%d", i), []float32{1, 1}))
	}

	hits, err := idx.Search(ctx, []float32{1, 1}, 4)

	require.NoError(t, err)
	require.Len(t, hits, 4)
	for i, h := range hits {
		assert.Equal(t, fmt.Sprintf("c%d", i), h.ChunkID)
	}
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	ctx := context.Background()
	idx, err := New(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, "only", []float32{1, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 3)

	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearch_Validation(t *testing.T) {
	ctx := context.Background()
	idx, err := New(2)
	require.NoError(t, err)

	assert.ErrorIs(t, idx.Add(ctx, "bad", []float32{1, 2, 3}), domain.ErrInvalidInput)

	_, err = idx.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	hits, err := idx.Search(ctx, []float32{1, 0}, 0)
	assert.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_ZeroVector(t *testing.T) {
	ctx := context.Background()
	idx, err := New(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, "zero", []float32{0, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 1)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Zero(t, hits[0].Similarity)
}

func TestSearch_Cancelled(t *testing.T) {
	idx, err := New(1)
	require.NoError(t, err)
	require.NoError(t, idx.Add(context.Background(), "a", []float32{1}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = idx.Search(ctx, []float32{1}, 1)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdd_CopiesInput(t *testing.T) {
	ctx := context.Background()
	idx, err := New(2)
	require.NoError(t, err)
	v := []float32{1, 0}
	require.NoError(t, idx.Add(ctx, "a", v))
	v[0], v[1] = 0, 1

	hits, err := idx.Search(ctx, []float32{1, 0}, 1)

	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestClose(t *testing.T) {
	idx, err := Factory(2)
	require.NoError(t, err)
	require.NoError(t, idx.Add(context.Background(), "a", []float32{1, 0}))
	require.NoError(t, idx.Close())
	assert.Equal(t, 0, idx.Len())
}
