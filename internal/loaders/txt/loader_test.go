package txt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

func rawTXT(content []byte) *domain.RawDocument {
	return &domain.RawDocument{Path: "/data/notice.txt", Type: domain.SourceTypeTXT, Content: content}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Loader = (*Loader)(nil)
	assert.Equal(t, domain.SourceTypeTXT, New().Type())
}

func TestLoad_UTF8(t *testing.T) {
	docs, err := New().Load(context.Background(), rawTXT([]byte("Hello World.")))

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Hello World.", docs[0].Content)
	assert.Equal(t, "notice.txt", docs[0].Source)
	assert.Equal(t, 12, docs[0].Metadata[domain.MetaSize])
	assert.NotContains(t, docs[0].Metadata, domain.MetaEncoding)
}

func TestLoad_StripsBOM(t *testing.T) {
	docs, err := New().Load(context.Background(), rawTXT([]byte("\xEF\xBB\xBFCaf\xC3\xA9")))

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Café", docs[0].Content)
}

func TestLoad_Latin1Fallback(t *testing.T) {
	docs, err := New().Load(context.Background(), rawTXT([]byte("Caf\xe9 opens at 8")))

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Café opens at 8", docs[0].Content)
	assert.Equal(t, EncodingLatin1, docs[0].Metadata[domain.MetaEncoding])
}

func TestLoad_Blank(t *testing.T) {
	docs, err := New().Load(context.Background(), rawTXT([]byte(" \n\t ")))

	assert.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoad_FromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("on disk"), 0o600))

	docs, err := New().Load(context.Background(), &domain.RawDocument{Path: path, Type: domain.SourceTypeTXT})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "on disk", docs[0].Content)
}

func TestLoad_Unreadable(t *testing.T) {
	raw := &domain.RawDocument{Path: filepath.Join(t.TempDir(), "missing.txt"), Type: domain.SourceTypeTXT}

	_, err := New().Load(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrUnreadableFile)
}
