// Package domain defines the core entities of the campus-rag pipeline.
//
// This package is the innermost layer of the hexagon. It holds the types
// that flow through ingestion and retrieval:
//
//   - RawDocument: bytes read from the dataset directory
//   - Document: text extracted by a format loader
//   - Chunk: a bounded retrieval unit cut from a document
//   - IndexEntry / IndexSnapshot: the persisted vector index
//   - RetrievalHit / Answer: the result of a query
//   - Session / Turn: conversation state
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
