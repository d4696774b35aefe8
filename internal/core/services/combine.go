package services

import (
	"context"
	"fmt"
	"io"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
	"github.com/custodia-labs/campus-rag/internal/postprocessors/normaliser"
)

// Ensure Combiner implements the interface.
var _ driving.Combiner = (*Combiner)(nil)

// Combiner exports the whole dataset as one text file with a tagged header
// before each page or file.
type Combiner struct {
	ingestor *Ingestor
}

// NewCombiner creates a combiner that reads through ingestor.
func NewCombiner(ingestor *Ingestor) *Combiner {
	return &Combiner{ingestor: ingestor}
}

// Combine writes every non-empty normalised section to w. A write failure
// stops the walk and is returned.
func (c *Combiner) Combine(ctx context.Context, w io.Writer) (*domain.IngestReport, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var writeErr error
	report, err := c.ingestor.Walk(ctx, func(doc *domain.Document) error {
		for _, section := range sections(doc) {
			text := normaliser.Normalize(section.Text)
			if text == "" {
				continue
			}
			if _, err := io.WriteString(w, normaliser.TagSection(doc.Source, section.Label, text)+"\n"); err != nil {
				writeErr = fmt.Errorf("write combined output: %w", err)
				cancel(writeErr)
				return writeErr
			}
		}
		return nil
	})
	if writeErr != nil {
		return report, writeErr
	}
	return report, err
}

// sections falls back to the whole content for documents without sections.
func sections(doc *domain.Document) []domain.Section {
	if len(doc.Sections) > 0 {
		return doc.Sections
	}
	return []domain.Section{{Label: doc.Type.SectionLabel(), Text: doc.Content}}
}
