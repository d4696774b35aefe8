// Package normaliser cleans extracted text before chunking. Normalize is
// total and idempotent.
package normaliser

import (
	"context"
	"strings"
	"unicode"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

var _ driven.PostProcessor = (*Processor)(nil)

// allowedPunctuation survives normalisation alongside letters, digits and whitespace.
const allowedPunctuation = `.,!?;:'"()-`

// Normalize replaces disallowed characters with spaces, collapses each
// whitespace run to a single newline (if it contained one) or a single
// space, and trims the result.
func Normalize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	inSpace := false
	sawNewline := false
	flush := func() {
		if !inSpace {
			return
		}
		if sawNewline {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
		inSpace, sawNewline = false, false
	}

	for _, r := range text {
		if !allowed(r) {
			r = ' '
		}
		if unicode.IsSpace(r) {
			inSpace = true
			if r == '\n' {
				sawNewline = true
			}
			continue
		}
		flush()
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}

func allowed(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
		strings.ContainsRune(allowedPunctuation, r)
}

// TagSection renders a section with a header naming its source and label.
func TagSection(name, label, text string) string {
	return "=== " + name + " (" + label + ") ===\n" + text + "\n"
}

// Processor normalises a document's content and sections in place.
type Processor struct{}

// New creates a normaliser processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "normaliser"
}

// Process rewrites doc.Content and every section, then passes chunks through.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	doc.Content = Normalize(doc.Content)
	for i := range doc.Sections {
		doc.Sections[i].Text = Normalize(doc.Sections[i].Text)
	}
	for i := range chunks {
		chunks[i].Content = Normalize(chunks[i].Content)
	}
	return chunks, nil
}
