package domain

import "time"

// TaskIDIndexRebuild is the built-in task that rebuilds the vector index from the dataset.
const TaskIDIndexRebuild = "index-rebuild"

// DefaultRebuildInterval matches the daily refresh of the dataset.
const DefaultRebuildInterval = 24 * time.Hour

// ScheduledTask is the persisted schedule of one recurring task.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	// NextRun is the earliest time the task may run again. A zero NextRun is due now.
	NextRun time.Time

	LastRun     time.Time
	LastSuccess time.Time
	LastError   string
}

// TaskResult records one run of a scheduled task. For the index rebuild the
// counts come from the run's IngestReport.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	Documents int
	Chunks    int
	Failed    int
}

// Duration is how long the run took.
func (r TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SchedulerConfig is the [scheduler] section of the settings.
type SchedulerConfig struct {
	// Enabled is the master switch. When false no task runs.
	Enabled bool

	TaskConfigs map[string]TaskConfig
}

// TaskConfig is the schedule of a single task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the configuration for taskID, or the zero TaskConfig.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig returns a daily index rebuild.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDIndexRebuild: {Enabled: true, Interval: DefaultRebuildInterval},
		},
	}
}
