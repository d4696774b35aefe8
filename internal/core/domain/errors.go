package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures.
// Infrastructure errors are wrapped around them with %w.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type with no registered loader.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the completion service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Ingestion error kinds. An IngestionError carries exactly one of these.

	// ErrUnreadableFile indicates the file could not be opened or extracted.
	ErrUnreadableFile = errors.New("unreadable file")

	// ErrUnsupportedEncoding indicates text that decodes under no supported encoding.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrMalformedContent indicates a file whose structure could not be parsed.
	ErrMalformedContent = errors.New("malformed content")

	// ErrInvalidChunkConfig indicates chunk size and overlap that cannot produce chunks.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// Index errors.

	// ErrEmbedding indicates the embedding model failed for at least one input.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexLoad indicates the persisted index is missing or corrupt.
	ErrIndexLoad = errors.New("index load failed")

	// ErrIndexBuild indicates an index could not be built from the document set.
	ErrIndexBuild = errors.New("index build failed")

	// ErrIndexNotReady indicates a query against an index that has not been published.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrRebuildInProgress indicates another rebuild holds the build lock.
	ErrRebuildInProgress = errors.New("index rebuild in progress")

	// ErrCompletion indicates the completion service failed to produce an answer.
	ErrCompletion = errors.New("completion failed")

	// ErrSessionNotFound indicates an operation on a session id that does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUnknownSetting indicates a configuration key the application does not define.
	ErrUnknownSetting = errors.New("unknown setting")
)

// IngestionError describes why a single file was skipped during ingestion.
// It matches both its Kind and its underlying Err with errors.Is.
type IngestionError struct {
	// Path is the file that failed.
	Path string

	// Type is the detected source type.
	Type SourceType

	// Kind is one of ErrUnreadableFile, ErrUnsupportedEncoding, ErrMalformedContent.
	Kind error

	// Err is the underlying cause, if any.
	Err error
}

// NewIngestionError wraps err as an ingestion failure of the given kind.
func NewIngestionError(path string, typ SourceType, kind, err error) *IngestionError {
	return &IngestionError{Path: path, Type: typ, Kind: kind, Err: err}
}

func (e *IngestionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *IngestionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
