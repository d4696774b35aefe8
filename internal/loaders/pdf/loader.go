// Package pdf extracts text from PDF files with poppler's pdftotext.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/loaders/base"
)

var _ driven.Loader = (*Loader)(nil)

const toolName = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// Loader extracts PDF text page by page.
type Loader struct {
	runner   base.CommandRunner
	lookPath func(string) (string, error)
}

// New creates a PDF loader that shells out to pdftotext.
func New() *Loader {
	return NewWithRunner(base.ExecRunner{})
}

// NewWithRunner creates a PDF loader with a custom command runner.
func NewWithRunner(runner base.CommandRunner) *Loader {
	return &Loader{runner: runner, lookPath: base.LookPath}
}

// Type returns the source type this loader handles.
func (l *Loader) Type() domain.SourceType {
	return domain.SourceTypePDF
}

// CheckAvailable reports whether pdftotext can be found.
func (l *Loader) CheckAvailable() error {
	if _, err := l.lookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install pdftotext.
func InstallInstructions() string {
	return "PDF support requires pdftotext (poppler).\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils"
}

// Load extracts text from every page. Each non-blank page becomes a
// "Page n" section; an entirely blank PDF yields no documents.
func (l *Loader) Load(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := l.CheckAvailable(); err != nil {
		return nil, base.Fail(raw, domain.ErrUnreadableFile, err)
	}

	input, cleanup, err := inputPath(raw)
	if err != nil {
		return nil, base.Fail(raw, domain.ErrUnreadableFile, err)
	}
	defer cleanup()

	out, err := l.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", input, "-")
	if err != nil {
		return nil, base.Fail(raw, domain.ErrMalformedContent, fmt.Errorf("pdftotext failed: %w", err))
	}

	pages := strings.Split(string(out), "\f")
	var sections []domain.Section
	var texts []string
	for i, page := range pages {
		text := strings.TrimSpace(page)
		if text == "" {
			continue
		}
		sections = append(sections, domain.Section{Label: fmt.Sprintf("Page %d", i+1), Text: text})
		texts = append(texts, text)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	doc := base.NewDocument(raw, 0, "", strings.Join(texts, "\n\n"))
	doc.Sections = sections
	doc.Metadata[domain.MetaPages] = countPages(pages)
	return []domain.Document{doc}, nil
}

// countPages ignores the empty tail pdftotext leaves after the final form feed.
func countPages(pages []string) int {
	n := len(pages)
	if n > 0 && strings.TrimSpace(pages[n-1]) == "" {
		n--
	}
	return n
}

// inputPath returns a file pdftotext can read. In-memory content is spilled
// to a temporary file; otherwise the original path is used.
func inputPath(raw *domain.RawDocument) (string, func(), error) {
	if len(raw.Content) == 0 {
		return raw.Path, func() {}, nil
	}
	f, err := os.CreateTemp("", "campus-*.pdf")
	if err != nil {
		return "", nil, err
	}
	name := f.Name()
	cleanup := func() { _ = os.Remove(name) }
	if _, err := f.Write(raw.Content); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return name, cleanup, nil
}
