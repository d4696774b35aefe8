package domain

import "time"

// RawDocument represents the bytes of one candidate file.
// It is the document source's output before a loader extracts text.
type RawDocument struct {
	// Path is the file location on disk.
	Path string

	// Type is the source type detected from the extension.
	Type SourceType

	// Content is the raw bytes.
	Content []byte

	// Size is the file size in bytes.
	Size int64

	// ModTime is the file modification time.
	ModTime time.Time

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any
}

// ChangeType represents the type of dataset change.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed file.
	ChangeDeleted
)

// String returns a short name for logs.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// RawDocumentChange represents a change event from the dataset watcher.
type RawDocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Document is the affected file. Content is empty for deletions.
	Document RawDocument
}
