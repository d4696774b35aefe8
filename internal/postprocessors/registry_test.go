package postprocessors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/postprocessors/chunker"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())
	assert.False(t, r.Has("beta"))

	r.Register("beta", func(_ map[string]any) (driven.PostProcessor, error) {
		return &mockProcessor{name: "beta"}, nil
	})
	r.Register("alpha", func(cfg map[string]any) (driven.PostProcessor, error) {
		name, _ := cfg["name"].(string)
		return &mockProcessor{name: name}, nil
	})

	assert.True(t, r.Has("beta"))
	assert.Equal(t, []string{"alpha", "beta"}, r.Names())

	proc, err := r.Build("alpha", map[string]any{"name": "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", proc.Name())

	_, err = r.Build("gamma", nil)
	assert.Error(t, err)
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	assert.Equal(t, []string{"chunker", "normaliser"}, r.Names())
}

func TestBuildChunker(t *testing.T) {
	tests := []struct {
		name        string
		cfg         map[string]any
		wantSize    int
		wantOverlap int
		wantErr     bool
	}{
		{"nil config keeps defaults", nil, chunker.DefaultChunkSize, chunker.DefaultChunkOverlap, false},
		{"toml ints", map[string]any{"chunk_size": int64(500), "overlap": int64(50)}, 500, 50, false},
		{"json floats", map[string]any{"chunk_size": float64(300)}, 300, chunker.DefaultChunkOverlap, false},
		{"zero overlap is honoured", map[string]any{"overlap": 0}, chunker.DefaultChunkSize, 0, false},
		{"overlap too large", map[string]any{"chunk_size": 100, "overlap": 100}, 0, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			proc, err := buildChunker(tc.cfg)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidChunkConfig)
				return
			}
			require.NoError(t, err)
			c, ok := proc.(*chunker.Processor)
			require.True(t, ok)
			assert.Equal(t, tc.wantSize, c.ChunkSize())
			assert.Equal(t, tc.wantOverlap, c.Overlap())
		})
	}
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name   string
		cfg    map[string]any
		want   int
		wantOK bool
	}{
		{"int", map[string]any{"size": 100}, 100, true},
		{"int64", map[string]any{"size": int64(200)}, 200, true},
		{"float64", map[string]any{"size": float64(300)}, 300, true},
		{"string", map[string]any{"size": "400"}, 0, false},
		{"missing", map[string]any{"other": 100}, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := getIntFromConfig(tt.cfg, "size")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
