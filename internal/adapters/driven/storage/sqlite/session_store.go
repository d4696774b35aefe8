package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore. Each write runs in one
// transaction; SQLite serialises writers, which also orders writes per id.
type sessionStore struct {
	store    *Store
	maxTurns int
}

var _ driven.SessionStore = (*sessionStore)(nil)

// GetOrCreate returns the session, inserting an empty one for an unseen id.
// An empty id mints a new one.
func (s *sessionStore) GetOrCreate(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		id = uuid.NewString()
	}
	now := s.store.now().UnixNano()
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, now, now)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	sess := &domain.Session{ID: id}
	var created, updated int64
	row := s.store.db.QueryRowContext(ctx, "SELECT created_at, updated_at FROM sessions WHERE id = ?", id)
	if err := row.Scan(&created, &updated); err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	sess.CreatedAt = fromNanos(created)
	sess.UpdatedAt = fromNanos(updated)

	if sess.Turns, err = s.History(ctx, id); err != nil {
		return nil, err
	}
	return sess, nil
}

// Append inserts turns and bumps the session's update time in one transaction.
func (s *sessionStore) Append(ctx context.Context, id string, turns ...domain.Turn) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := s.store.now().UnixNano()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`, id, now, now); err != nil {
		return fmt.Errorf("touching session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO turns (id, session_id, role, message, created_at) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing turn insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range turns {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, t.ID, id, string(t.Role), t.Message, t.Timestamp.UnixNano()); err != nil {
			return fmt.Errorf("inserting turn: %w", err)
		}
	}

	if s.maxTurns > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM turns WHERE session_id = ? AND seq NOT IN (
				SELECT seq FROM turns WHERE session_id = ? ORDER BY seq DESC LIMIT ?
			)
		`, id, id, s.maxTurns); err != nil {
			return fmt.Errorf("trimming turns: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing turns: %w", err)
	}
	return nil
}

// History returns turns in insertion order, or an empty slice.
func (s *sessionStore) History(ctx context.Context, id string) ([]domain.Turn, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, role, message, created_at FROM turns WHERE session_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	turns := []domain.Turn{}
	for rows.Next() {
		var t domain.Turn
		var role string
		var ts int64
		if err := rows.Scan(&t.ID, &role, &t.Message, &ts); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Role = domain.Role(role)
		t.Timestamp = fromNanos(ts)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}
	return turns, nil
}

// Delete removes the session; its turns go with it through the foreign key.
func (s *sessionStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// List returns summaries, most recently updated first.
func (s *sessionStore) List(ctx context.Context) ([]domain.SessionSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT s.id, s.created_at, s.updated_at,
			COUNT(t.seq),
			COALESCE(SUM(CASE WHEN t.role = 'user' THEN 1 ELSE 0 END), 0)
		FROM sessions s
		LEFT JOIN turns t ON t.session_id = s.id
		GROUP BY s.id
		ORDER BY s.updated_at DESC, s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	summaries := []domain.SessionSummary{}
	for rows.Next() {
		var sum domain.SessionSummary
		var created, updated int64
		if err := rows.Scan(&sum.ID, &created, &updated, &sum.TurnCount, &sum.Exchanges); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sum.CreatedAt = fromNanos(created)
		sum.UpdatedAt = fromNanos(updated)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return summaries, nil
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
