// Package txt loads plain text files.
package txt

import (
	"bytes"
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/loaders/base"
)

var _ driven.Loader = (*Loader)(nil)

// EncodingLatin1 is recorded when a file was not valid UTF-8.
const EncodingLatin1 = "latin-1"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads UTF-8 text and falls back to Latin-1.
type Loader struct{}

// New creates a plain text loader.
func New() *Loader {
	return &Loader{}
}

// Type returns the source type this loader handles.
func (l *Loader) Type() domain.SourceType {
	return domain.SourceTypeTXT
}

// Load returns the file as one document, or none when it is blank.
func (l *Loader) Load(_ context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	content := raw.Content
	if content == nil {
		b, err := os.ReadFile(raw.Path)
		if err != nil {
			return nil, base.Fail(raw, domain.ErrUnreadableFile, err)
		}
		content = b
	}

	var text, encoding string
	if utf8.Valid(content) {
		text = string(bytes.TrimPrefix(content, utf8BOM))
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
		if err != nil {
			return nil, base.Fail(raw, domain.ErrUnsupportedEncoding, err)
		}
		text = string(decoded)
		encoding = EncodingLatin1
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc := base.NewDocument(raw, 0, "", text)
	doc.Metadata[domain.MetaSize] = len(content)
	if encoding != "" {
		doc.Metadata[domain.MetaEncoding] = encoding
	}
	return []domain.Document{doc}, nil
}
