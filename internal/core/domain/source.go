package domain

import (
	"path/filepath"
	"strings"
)

// SourceType identifies the file format a document was loaded from.
type SourceType string

// Supported source types.
const (
	SourceTypePDF  SourceType = "pdf"
	SourceTypeDOCX SourceType = "docx"
	SourceTypeDOC  SourceType = "doc"
	SourceTypeTXT  SourceType = "txt"
	SourceTypeJSON SourceType = "json"
)

// AllSourceTypes returns every supported type in context rendering order.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypePDF,
		SourceTypeDOCX,
		SourceTypeDOC,
		SourceTypeTXT,
		SourceTypeJSON,
	}
}

// SourceTypeFromPath detects the source type from a file extension.
// The second return value is false for extensions outside the corpus.
func SourceTypeFromPath(path string) (SourceType, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	t := SourceType(ext)
	if !t.IsValid() {
		return "", false
	}
	return t, true
}

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceTypePDF, SourceTypeDOCX, SourceTypeDOC, SourceTypeTXT, SourceTypeJSON:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t SourceType) String() string {
	return string(t)
}

// Label returns the heading used for this type's section of a context block.
func (t SourceType) Label() string {
	switch t {
	case SourceTypePDF:
		return "PDF DOCUMENTS"
	case SourceTypeDOCX:
		return "WORD DOCUMENTS (.docx)"
	case SourceTypeDOC:
		return "WORD DOCUMENTS (.doc)"
	case SourceTypeTXT:
		return "TEXT FILES"
	case SourceTypeJSON:
		return "JSON DATA"
	default:
		return strings.ToUpper(string(t))
	}
}

// SectionLabel returns the short tag written next to a file name in combined exports.
func (t SourceType) SectionLabel() string {
	return strings.ToUpper(string(t))
}
