package domain

import "time"

// IndexFormatVersion is the version written to every index manifest.
const IndexFormatVersion = 1

// IndexEntry is the metadata snapshot stored alongside one vector.
type IndexEntry struct {
	ChunkID    string     `json:"chunk_id"`
	DocumentID string     `json:"document_id"`
	Content    string     `json:"content"`
	Position   int        `json:"position"`
	Source     string     `json:"source"`
	SourceType SourceType `json:"source_type"`
	Category   string     `json:"category"`
	Path       string     `json:"file_path"`
}

// EntryFromChunk builds the index entry for a chunk.
func EntryFromChunk(c *Chunk) IndexEntry {
	return IndexEntry{
		ChunkID:    c.ID,
		DocumentID: c.DocumentID,
		Content:    c.Content,
		Position:   c.Position,
		Source:     c.MetaString(MetaSource),
		SourceType: SourceType(c.MetaString(MetaSourceType)),
		Category:   c.MetaString(MetaCategory),
		Path:       c.MetaString(MetaFilePath),
	}
}

// IndexManifest is the sidecar written next to the vector artifact.
// Its presence, with a matching checksum, marks a persisted index as complete.
type IndexManifest struct {
	Version        int          `json:"version"`
	EmbeddingModel string       `json:"embedding_model"`
	Dimensions     int          `json:"dimensions"`
	ChunkSize      int          `json:"chunk_size"`
	ChunkOverlap   int          `json:"chunk_overlap"`
	BuiltAt        time.Time    `json:"built_at"`
	Checksum       string       `json:"checksum"`
	Entries        []IndexEntry `json:"entries"`
}

// IndexSnapshot is the persisted form of an index.
// Vectors[i] belongs to Manifest.Entries[i]; order is insertion order.
type IndexSnapshot struct {
	Manifest IndexManifest
	Vectors  [][]float32
}

// IndexState is the lifecycle state of the index manager.
type IndexState string

// Index lifecycle states.
const (
	IndexUnready  IndexState = "unready"
	IndexBuilding IndexState = "building"
	IndexReady    IndexState = "ready"
)

// IndexStatus reports the published index and the manager's state.
type IndexStatus struct {
	State      IndexState `json:"state"`
	Vectors    int        `json:"vectors"`
	Dimensions int        `json:"dimensions"`
	Model      string     `json:"model"`
	BuiltAt    time.Time  `json:"built_at"`
	Path       string     `json:"path"`
	LastError  string     `json:"last_error,omitempty"`
}

// RetrievalHit is a chunk returned by a similarity query.
type RetrievalHit struct {
	Entry IndexEntry

	// Score is the cosine similarity to the query.
	Score float64
}
