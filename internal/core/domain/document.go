package domain

// DefaultCategory is the category assigned when a source does not name one.
const DefaultCategory = "university_document"

// Metadata keys set by the format loaders.
const (
	MetaCategory   = "category"
	MetaPages      = "pages"
	MetaParagraphs = "paragraphs"
	MetaItemID     = "item_id"
	MetaEncoding   = "encoding"
	MetaSize       = "size"
	MetaNote       = "note"
	MetaSourceType = "source_type"
	MetaSource     = "source"
	MetaFilePath   = "file_path"
)

// Document is the text extracted from one source file, or from one item of
// a JSON array. It is immutable once produced and discarded after chunking.
type Document struct {
	// ID is deterministic for a given path and item index.
	ID string

	// Source is the display name: the file name, or name[i] for JSON items.
	Source string

	// Type is the format the document was loaded from.
	Type SourceType

	// Path is the file location on disk.
	Path string

	// Content is the full extracted text.
	Content string

	// Sections preserves page or item boundaries within Content.
	Sections []Section

	// Metadata holds per-type details such as page or paragraph count.
	Metadata map[string]any
}

// Section is a labelled slice of a document, such as a single PDF page.
type Section struct {
	Label string
	Text  string
}

// Category returns the document's category, falling back to DefaultCategory.
func (d *Document) Category() string {
	if d.Metadata != nil {
		if c, ok := d.Metadata[MetaCategory].(string); ok && c != "" {
			return c
		}
	}
	return DefaultCategory
}

// Chunk is a bounded, possibly overlapping slice of a document's normalised
// text. It is the unit of retrieval.
type Chunk struct {
	// ID is deterministic for a given document and position.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Overlap is the number of leading runes shared with the previous chunk.
	Overlap int

	// Metadata snapshots source, source_type, category and file_path.
	Metadata map[string]any
}

// MetaString returns a string metadata value, or "" when absent.
func (c *Chunk) MetaString(key string) string {
	if c.Metadata == nil {
		return ""
	}
	s, _ := c.Metadata[key].(string)
	return s
}
