package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// sessionEntry guards one session. A deleted entry is marked dead and must
// not be written again; writers that find it dead look the id up afresh.
type sessionEntry struct {
	mu      sync.Mutex
	session domain.Session
	dead    bool
}

// SessionStore keeps conversation history in process memory.
// The map lock is only held to find or create an entry, so sessions with
// different ids never wait on each other.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	maxTurns int
	now      func() time.Time
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithMaxTurns keeps at most n turns per session, dropping the oldest.
// Zero keeps every turn.
func WithMaxTurns(n int) SessionOption {
	return func(s *SessionStore) {
		if n > 0 {
			s.maxTurns = n
		}
	}
}

// WithSessionClock overrides the clock used for created and updated times.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) {
		s.now = now
	}
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore(opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*sessionEntry),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lookup returns the entry for id, creating it when create is set.
func (s *SessionStore) lookup(id string, create bool) *sessionEntry {
	s.mu.RLock()
	e := s.sessions[id]
	s.mu.RUnlock()
	if e != nil || !create {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e = s.sessions[id]; e == nil {
		now := s.now()
		e = &sessionEntry{session: domain.Session{ID: id, CreatedAt: now, UpdatedAt: now}}
		s.sessions[id] = e
	}
	return e
}

// locked runs fn with the live entry for id locked, creating it if needed.
func (s *SessionStore) locked(id string, fn func(*domain.Session)) {
	for {
		e := s.lookup(id, true)
		e.mu.Lock()
		if e.dead {
			e.mu.Unlock()
			continue
		}
		fn(&e.session)
		e.mu.Unlock()
		return
	}
}

// GetOrCreate returns a copy of the session, creating it if it is unseen.
// An empty id mints a new one.
func (s *SessionStore) GetOrCreate(ctx context.Context, id string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	var out domain.Session
	s.locked(id, func(sess *domain.Session) {
		out = copySession(sess)
	})
	return &out, nil
}

// Append adds turns to the session in one step.
func (s *SessionStore) Append(ctx context.Context, id string, turns ...domain.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return domain.ErrInvalidInput
	}
	s.locked(id, func(sess *domain.Session) {
		sess.Turns = append(sess.Turns, turns...)
		if s.maxTurns > 0 && len(sess.Turns) > s.maxTurns {
			sess.Turns = slices.Clone(sess.Turns[len(sess.Turns)-s.maxTurns:])
		}
		sess.UpdatedAt = s.now()
	})
	return nil
}

// History returns a copy of the turns for id, or an empty slice.
func (s *SessionStore) History(ctx context.Context, id string) ([]domain.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := s.lookup(id, false)
	if e == nil {
		return []domain.Turn{}, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead {
		return []domain.Turn{}, nil
	}
	return append([]domain.Turn{}, e.session.Turns...), nil
}

// Delete removes the session for id.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	e := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if e == nil {
		return domain.ErrSessionNotFound
	}

	e.mu.Lock()
	e.dead = true
	e.mu.Unlock()
	return nil
}

// List returns summaries of all sessions, most recently updated first.
func (s *SessionStore) List(ctx context.Context) ([]domain.SessionSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	summaries := make([]domain.SessionSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.dead {
			summaries = append(summaries, domain.SessionSummary{
				ID:        e.session.ID,
				TurnCount: len(e.session.Turns),
				Exchanges: e.session.Exchanges(),
				CreatedAt: e.session.CreatedAt,
				UpdatedAt: e.session.UpdatedAt,
			})
		}
		e.mu.Unlock()
	}

	slices.SortFunc(summaries, func(a, b domain.SessionSummary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return summaries, nil
}

func copySession(s *domain.Session) domain.Session {
	out := *s
	out.Turns = append([]domain.Turn{}, s.Turns...)
	return out
}
