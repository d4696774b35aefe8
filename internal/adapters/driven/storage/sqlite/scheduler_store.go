package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore. Times are stored as Unix
// nanoseconds like the session tables, with 0 for the zero time.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

const taskColumns = `id, name, interval_ns, enabled, next_run, last_run, last_success, last_error`

const runColumns = `task_id, started_at, ended_at, success, error, documents, chunks, failed`

func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = ?`, taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading task %s: %w", taskID, err)
	}
	return task, nil
}

func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ScheduledTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.Name, int64(task.Interval), task.Enabled,
		toNanos(task.NextRun), toNanos(task.LastRun), toNanos(task.LastSuccess), task.LastError)
	if err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil || result.TaskID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO task_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, result.TaskID, toNanos(result.StartedAt), toNanos(result.EndedAt), result.Success,
		result.Error, result.Documents, result.Chunks, result.Failed)
	if err != nil {
		return fmt.Errorf("recording run of %s: %w", result.TaskID, err)
	}
	return nil
}

func (s *schedulerStore) TaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM task_runs
		WHERE task_id = ? ORDER BY started_at DESC, id DESC LIMIT ?
	`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history of %s: %w", taskID, err)
	}
	defer rows.Close()

	var runs []domain.TaskResult
	for rows.Next() {
		var r domain.TaskResult
		var started, ended int64
		if err := rows.Scan(&r.TaskID, &started, &ended, &r.Success,
			&r.Error, &r.Documents, &r.Chunks, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = fromNanos(started)
		r.EndedAt = fromNanos(ended)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM task_runs WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY task_id ORDER BY started_at DESC, id DESC
				) AS rn FROM task_runs
			) WHERE rn > ?
		)
	`, max(keep, 0))
	if err != nil {
		return fmt.Errorf("pruning task history: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.ScheduledTask, error) {
	var task domain.ScheduledTask
	var interval, next, last, success int64
	if err := row.Scan(&task.ID, &task.Name, &interval, &task.Enabled,
		&next, &last, &success, &task.LastError); err != nil {
		return nil, err
	}
	task.Interval = time.Duration(interval)
	task.NextRun = fromNanos(next)
	task.LastRun = fromNanos(last)
	task.LastSuccess = fromNanos(success)
	return &task, nil
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
