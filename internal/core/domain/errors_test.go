package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrUnreadableFile", ErrUnreadableFile},
		{"ErrUnsupportedEncoding", ErrUnsupportedEncoding},
		{"ErrMalformedContent", ErrMalformedContent},
		{"ErrInvalidChunkConfig", ErrInvalidChunkConfig},
		{"ErrEmbedding", ErrEmbedding},
		{"ErrIndexLoad", ErrIndexLoad},
		{"ErrIndexBuild", ErrIndexBuild},
		{"ErrIndexNotReady", ErrIndexNotReady},
		{"ErrRebuildInProgress", ErrRebuildInProgress},
		{"ErrCompletion", ErrCompletion},
		{"ErrSessionNotFound", ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrSessionNotFound(t *testing.T) {
	assert.Equal(t, "session not found", ErrSessionNotFound.Error())
	wrapped := fmt.Errorf("delete history: %w", ErrSessionNotFound)
	assert.True(t, errors.Is(wrapped, ErrSessionNotFound))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}

func TestIngestionError(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")

	t.Run("matches kind and cause", func(t *testing.T) {
		err := NewIngestionError("/data/a.docx", SourceTypeDOCX, ErrMalformedContent, cause)

		assert.True(t, errors.Is(err, ErrMalformedContent))
		assert.True(t, errors.Is(err, cause))
		assert.False(t, errors.Is(err, ErrUnreadableFile))
		assert.Equal(t, "/data/a.docx: malformed content: zip: not a valid zip file", err.Error())
	})

	t.Run("without cause", func(t *testing.T) {
		err := NewIngestionError("/data/b.txt", SourceTypeTXT, ErrUnsupportedEncoding, nil)

		assert.True(t, errors.Is(err, ErrUnsupportedEncoding))
		assert.Equal(t, "/data/b.txt: unsupported encoding", err.Error())
	})

	t.Run("errors.As through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("load: %w", NewIngestionError("/x.pdf", SourceTypePDF, ErrUnreadableFile, cause))

		var ingestErr *IngestionError
		assert.True(t, errors.As(wrapped, &ingestErr))
		assert.Equal(t, SourceTypePDF, ingestErr.Type)
	})
}
