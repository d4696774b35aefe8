// Package docx extracts text from Office Open XML word processing files.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/loaders/base"
)

var _ driven.Loader = (*Loader)(nil)

const documentPart = "word/document.xml"

// MetaTitle is set when docProps/core.xml carries a title.
const MetaTitle = "title"

// Loader reads DOCX archives. The run text stream is tried first; when it
// is blank, paragraphs are walked one by one.
type Loader struct{}

// New creates a DOCX loader.
func New() *Loader {
	return &Loader{}
}

// Type returns the source type this loader handles.
func (l *Loader) Type() domain.SourceType {
	return domain.SourceTypeDOCX
}

// Load extracts the document text.
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

	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, base.Fail(raw, domain.ErrMalformedContent, err)
	}
	body, err := readPart(reader, documentPart)
	if err != nil {
		return nil, base.Fail(raw, domain.ErrMalformedContent, err)
	}

	text, err := streamText(body)
	var paragraphs int
	if err != nil || strings.TrimSpace(text) == "" {
		text, paragraphs, err = walkParagraphs(body)
		if err != nil {
			return nil, base.Fail(raw, domain.ErrMalformedContent, err)
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	doc := base.NewDocument(raw, 0, "", text)
	if paragraphs > 0 {
		doc.Metadata[domain.MetaParagraphs] = paragraphs
	}
	if title := extractTitle(reader); title != "" {
		doc.Metadata[MetaTitle] = title
	}
	return []domain.Document{doc}, nil
}

func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing %s", name)
}

// streamText flattens every w:t run in document order. Tabs and breaks are
// kept and each paragraph ends with a newline.
func streamText(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
}

type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []string `xml:"t"`
}

// walkParagraphs joins non-empty body paragraphs with blank lines.
func walkParagraphs(body []byte) (string, int, error) {
	var doc documentXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", 0, err
	}
	var parts []string
	for _, p := range doc.Body.Paragraphs {
		var sb strings.Builder
		for _, r := range p.Runs {
			for _, t := range r.Text {
				sb.WriteString(t)
			}
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), len(parts), nil
}

type coreXML struct {
	Title string `xml:"title"`
}

func extractTitle(reader *zip.Reader) string {
	content, err := readPart(reader, "docProps/core.xml")
	if err != nil {
		return ""
	}
	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
