package driving

import (
	"context"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// Scheduler runs background tasks such as the periodic index rebuild.
type Scheduler interface {
	// Start runs the scheduler loop until ctx is cancelled or Stop is called.
	// A disabled scheduler returns immediately.
	Start(ctx context.Context) error

	// Stop signals the loop to exit and waits for running tasks.
	Stop() error

	// History returns the rebuild schedule and up to limit recent runs,
	// newest first. The task is nil if the rebuild was never scheduled.
	History(ctx context.Context, limit int) (*domain.ScheduledTask, []domain.TaskResult, error)
}

// Watcher rebuilds the index when the dataset changes.
type Watcher interface {
	// Run blocks until ctx is cancelled or the watch fails.
	Run(ctx context.Context) error
}
