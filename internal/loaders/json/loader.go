// Package json loads JSON data files. Arrays of records become one document
// per qualifying record; other values become a single document.
package json

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/loaders/base"
)

var _ driven.Loader = (*Loader)(nil)

// MinContentLength is the number of characters a record's text must exceed
// to be kept.
const MinContentLength = 20

// Loader reads JSON files.
type Loader struct{}

// New creates a JSON loader.
func New() *Loader {
	return &Loader{}
}

// Type returns the source type this loader handles.
func (l *Loader) Type() domain.SourceType {
	return domain.SourceTypeJSON
}

// Load extracts documents according to the top-level shape:
//   - array: each object with a long enough "content" or "text" field
//   - object with "content" or "text": one document if long enough
//   - anything else: the value pretty-printed as one document
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
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	if !json.Valid(content) {
		return nil, base.Fail(raw, domain.ErrMalformedContent, decodeError(content))
	}

	trimmed := bytes.TrimSpace(content)
	switch trimmed[0] {
	case '[':
		return l.loadArray(raw, trimmed)
	case '{':
		var record map[string]any
		if err := decode(trimmed, &record); err != nil {
			return nil, base.Fail(raw, domain.ErrMalformedContent, err)
		}
		if hasTextField(record) {
			return l.loadRecord(raw, record), nil
		}
	}
	return l.loadPretty(raw, trimmed)
}

func (l *Loader) loadArray(raw *domain.RawDocument, content []byte) ([]domain.Document, error) {
	var items []any
	if err := decode(content, &items); err != nil {
		return nil, base.Fail(raw, domain.ErrMalformedContent, err)
	}
	name := filepath.Base(raw.Path)
	var docs []domain.Document
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text, ok := recordText(record)
		if !ok {
			continue
		}
		doc := base.NewDocument(raw, i, fmt.Sprintf("%s[%d]", name, i), text)
		doc.Metadata[domain.MetaItemID] = itemID(record, i)
		doc.Metadata[domain.MetaCategory] = category(record)
		docs = append(docs, doc)
	}
	return docs, nil
}

func (l *Loader) loadRecord(raw *domain.RawDocument, record map[string]any) []domain.Document {
	text, ok := recordText(record)
	if !ok {
		return nil
	}
	doc := base.NewDocument(raw, 0, "", text)
	doc.Metadata[domain.MetaCategory] = category(record)
	return []domain.Document{doc}
}

// loadPretty keeps the original key order by re-indenting the source bytes.
func (l *Loader) loadPretty(raw *domain.RawDocument, content []byte) ([]domain.Document, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, content, "", "  "); err != nil {
		return nil, base.Fail(raw, domain.ErrMalformedContent, err)
	}
	return []domain.Document{base.NewDocument(raw, 0, "", buf.String())}, nil
}

func hasTextField(record map[string]any) bool {
	_, c := record["content"]
	_, t := record["text"]
	return c || t
}

// recordText returns "content", or "text" when content is empty, if the
// trimmed value is longer than MinContentLength characters.
func recordText(record map[string]any) (string, bool) {
	text := stringify(record["content"])
	if text == "" {
		text = stringify(record["text"])
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) <= MinContentLength {
		return "", false
	}
	return text, true
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func itemID(record map[string]any, i int) any {
	switch id := record["id"].(type) {
	case nil:
		return i
	case json.Number:
		if n, err := id.Int64(); err == nil {
			return n
		}
		return id.String()
	default:
		return id
	}
}

func category(record map[string]any) string {
	if c, ok := record["category"].(string); ok && c != "" {
		return c
	}
	return domain.DefaultCategory
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func decodeError(content []byte) error {
	var v any
	if err := json.Unmarshal(content, &v); err != nil {
		return err
	}
	return fmt.Errorf("invalid JSON")
}
