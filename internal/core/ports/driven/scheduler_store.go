package driven

import (
	"context"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// SchedulerStore persists task schedules and run history so the rebuild
// interval survives a restart.
type SchedulerStore interface {
	// GetTask returns the task, or nil and no error if it does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns every task.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask creates or replaces a task.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// RecordResult appends a run to the task's history.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// TaskHistory returns up to limit runs of a task, newest first.
	TaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory keeps the newest keep runs of each task.
	PruneHistory(ctx context.Context, keep int) error
}
