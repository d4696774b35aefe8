package driven

import (
	"context"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// SessionStore owns the mapping from session id to conversation history.
// Operations on the same id are linearizable; operations on different ids
// do not block each other.
type SessionStore interface {
	// GetOrCreate returns the session for id, creating an empty one if the
	// id is unseen. An empty id mints a fresh unique id.
	GetOrCreate(ctx context.Context, id string) (*domain.Session, error)

	// Append adds turns to a session as one atomic step, creating the
	// session if needed.
	Append(ctx context.Context, id string, turns ...domain.Turn) error

	// History returns the ordered turns for id.
	// An unknown id yields an empty slice and no error.
	History(ctx context.Context, id string) ([]domain.Turn, error)

	// Delete removes a session. An unknown id fails with domain.ErrSessionNotFound.
	Delete(ctx context.Context, id string) error

	// List returns summaries of all sessions, most recently updated first.
	List(ctx context.Context) ([]domain.SessionSummary, error)
}
