package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Seed(t *testing.T) {
	seed := map[string]any{"dataset.path": "/srv/campus"}
	store := NewConfigStore(seed)

	seed["dataset.path"] = "changed"
	assert.Equal(t, "/srv/campus", store.GetString("dataset.path"))

	empty := NewConfigStore()
	_, ok := empty.Get("dataset.path")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"dataset.path":          "/srv/campus",
		"chunking.chunk_size":   1000,
		"chunking.overlap":      int64(200),
		"retrieval.top_k":       3.0,
		"retrieval.temperature": 1.0,
		"llm.burst":             float32(2),
		"watcher.enabled":       true,
		"tags":                  []any{"a", 1, "b"},
		"names":                 []string{"x"},
	})

	assert.Equal(t, "/srv/campus", store.GetString("dataset.path"))
	assert.Empty(t, store.GetString("chunking.chunk_size"))

	assert.Equal(t, 1000, store.GetInt("chunking.chunk_size"))
	assert.Equal(t, 200, store.GetInt("chunking.overlap"))
	assert.Equal(t, 3, store.GetInt("retrieval.top_k"))
	assert.Equal(t, 0, store.GetInt("dataset.path"))

	assert.InDelta(t, 1.0, store.GetFloat("retrieval.temperature"), 1e-9)
	assert.InDelta(t, 1000.0, store.GetFloat("chunking.chunk_size"), 1e-9)
	assert.InDelta(t, 2.0, store.GetFloat("llm.burst"), 1e-9)
	assert.Zero(t, store.GetFloat("missing"))

	assert.True(t, store.GetBool("watcher.enabled"))
	assert.False(t, store.GetBool("dataset.path"))

	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("tags"))
	assert.Equal(t, []string{"x"}, store.GetStringSlice("names"))
	assert.Nil(t, store.GetStringSlice("dataset.path"))
}

func TestConfigStore_SetOverwrites(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("retrieval.top_k", 3))
	require.NoError(t, store.Set("retrieval.top_k", 5))
	assert.Equal(t, 5, store.GetInt("retrieval.top_k"))

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, 5, store.GetInt("retrieval.top_k"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	done := make(chan struct{})

	for i := range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := range 100 {
				_ = store.Set("counter", i*100+j)
				_ = store.GetInt("counter")
			}
		}()
	}
	for range 8 {
		<-done
	}

	_, ok := store.Get("counter")
	assert.True(t, ok)
}
