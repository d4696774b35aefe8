package driving

import (
	"context"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// ChatService answers questions inside conversation sessions.
type ChatService interface {
	// Chat answers message within the session identified by sessionID.
	// An empty sessionID starts a new session. The user and assistant turns
	// are recorded together; nothing is recorded if ctx is cancelled first.
	Chat(ctx context.Context, message, sessionID string) (*domain.ChatReply, error)

	// Ask answers a single question without touching any session.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// History returns the ordered turns of a session.
	// An unknown id yields an empty history.
	History(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// DeleteHistory removes a session.
	// Returns domain.ErrSessionNotFound for an unknown id.
	DeleteHistory(ctx context.Context, sessionID string) error

	// Sessions lists known sessions, most recently updated first.
	Sessions(ctx context.Context) ([]domain.SessionSummary, error)
}
