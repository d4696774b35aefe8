// Package doc extracts text from legacy Word (.doc) files using external
// converters. antiword is tried first, then catdoc.
package doc

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

// ConvertedNote is recorded on every document produced by this loader.
const ConvertedNote = "Converted from .doc format"

// ErrNoConverter is returned when neither antiword nor catdoc is installed.
var ErrNoConverter = errors.New("no .doc converter found in PATH (antiword, catdoc)")

// converter is one external tool invocation. The file path is appended to args.
type converter struct {
	name string
	args []string
}

var converters = []converter{
	{name: "antiword", args: []string{"-w", "0"}},
	{name: "catdoc", args: []string{"-w", "-d", "utf-8"}},
}

// Loader converts .doc files to text.
type Loader struct {
	runner   base.CommandRunner
	lookPath func(string) (string, error)
}

// New creates a .doc loader that shells out to the installed converters.
func New() *Loader {
	return NewWithRunner(base.ExecRunner{})
}

// NewWithRunner creates a .doc loader with a custom command runner.
func NewWithRunner(runner base.CommandRunner) *Loader {
	return &Loader{runner: runner, lookPath: base.LookPath}
}

// Type returns the source type this loader handles.
func (l *Loader) Type() domain.SourceType {
	return domain.SourceTypeDOC
}

// InstallInstructions explains how to install a converter.
func InstallInstructions() string {
	return ".doc support requires antiword or catdoc.\n" +
		"  macOS:  brew install antiword\n" +
		"  Debian: apt install antiword catdoc"
}

// Load tries each converter in order and keeps the first non-blank output.
// Blank output from every tool that ran yields no documents; if no tool
// could run at all the file is reported as malformed.
func (l *Loader) Load(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	path := raw.Path
	if len(raw.Content) > 0 {
		tmp, cleanup, err := spill(raw.Content)
		if err != nil {
			return nil, base.Fail(raw, domain.ErrUnreadableFile, err)
		}
		defer cleanup()
		path = tmp
	}

	var errs []error
	ran := false
	for _, c := range converters {
		if _, err := l.lookPath(c.name); err != nil {
			continue
		}
		out, err := l.runner.Run(ctx, c.name, append(append([]string{}, c.args...), path)...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s failed: %w", c.name, err))
			continue
		}
		ran = true
		text := strings.TrimSpace(string(out))
		if text == "" {
			continue
		}
		doc := base.NewDocument(raw, 0, "", text)
		doc.Metadata[domain.MetaNote] = ConvertedNote
		return []domain.Document{doc}, nil
	}

	if ran {
		return nil, nil
	}
	if len(errs) == 0 {
		return nil, base.Fail(raw, domain.ErrMalformedContent, ErrNoConverter)
	}
	return nil, base.Fail(raw, domain.ErrMalformedContent, errors.Join(errs...))
}

func spill(content []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "campus-*.doc")
	if err != nil {
		return "", nil, err
	}
	name := f.Name()
	cleanup := func() { _ = os.Remove(name) }
	_, werr := f.Write(content)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		cleanup()
		return "", nil, err
	}
	return name, cleanup, nil
}
