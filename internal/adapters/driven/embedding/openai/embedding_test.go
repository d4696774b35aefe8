package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingItem struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)

	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.NoError(t, svc.Close())
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	var got struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  got.Model,
			"data": []embeddingItem{
				{Object: "embedding", Index: 1, Embedding: []float64{0, 1}},
				{Object: "embedding", Index: 0, Embedding: []float64{1, 0}},
			},
			"usage": map[string]int{"prompt_tokens": 2, "total_tokens": 2},
		})
	})
	svc, err := NewEmbeddingService(Config{APIKey: "secret", BaseURL: srv.URL, Model: "m", Dimensions: 2})
	require.NoError(t, err)

	out, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})

	require.NoError(t, err)
	assert.Equal(t, "m", got.Model)
	assert.Equal(t, []string{"first", "second"}, got.Input)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, out)
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []embeddingItem{{Object: "embedding", Index: 0, Embedding: []float64{1, 2, 3}}},
		})
	})
	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL, Dimensions: 2})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "x")

	assert.ErrorContains(t, err, "3 dimensions")
}

func TestEmbed_ServerError(t *testing.T) {
	calls := 0
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	})
	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "x")

	assert.Error(t, err)
	assert.Equal(t, 1, calls, "requests are not retried")
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	out, err := svc.EmbedBatch(context.Background(), nil)

	assert.NoError(t, err)
	assert.Nil(t, out)
}
