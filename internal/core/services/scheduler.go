package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
	"github.com/custodia-labs/campus-rag/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyKeep is the number of task results retained per task.
const historyKeep = 100

// IndexRebuilder rebuilds the index unless a rebuild is already running.
type IndexRebuilder interface {
	TryRebuild(ctx context.Context) (*domain.IngestReport, error)
}

// Scheduler runs recurring background tasks. Task state lives in the
// SchedulerStore so intervals survive restarts.
type Scheduler struct {
	config    domain.SchedulerConfig
	store     driven.SchedulerStore
	rebuilder IndexRebuilder
	tick      time.Duration
	now       func() time.Time
	log       logger.Logger

	mu      sync.Mutex
	running bool
	active  map[string]bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	rebuilder IndexRebuilder,
) *Scheduler {
	return &Scheduler{
		config:    config,
		store:     store,
		rebuilder: rebuilder,
		tick:      time.Minute,
		now:       time.Now,
		log:       logger.For("scheduler"),
		active:    make(map[string]bool),
	}
}

// Start runs the scheduler loop until ctx is cancelled or Stop is called.
// A disabled scheduler returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Debug("disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		s.log.Error("failed to initialise tasks: %v", err)
	}

	return s.run(ctx, stopCh)
}

// Stop ends the loop and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	cfg := s.config.GetTaskConfig(domain.TaskIDIndexRebuild)
	return s.ensureTask(ctx, domain.TaskIDIndexRebuild, "Index Rebuild", cfg)
}

// ensureTask creates the task or applies a changed interval. An existing
// task keeps its schedule when the interval is unchanged.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	if cfg.Interval <= 0 {
		cfg.Interval = domain.DefaultRebuildInterval
	}

	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  s.now().Add(cfg.Interval),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = s.now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		s.log.Error("failed to list tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		task := tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, &task)
		}
	}
}

// runTask starts task in the background unless it is still running from an
// earlier tick.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.active[task.ID] {
		s.mu.Unlock()
		return
	}
	s.active[task.ID] = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.active, task.ID)
			s.mu.Unlock()
		}()
		s.execute(ctx, task)
	}()
}

func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) {
	if task.ID != domain.TaskIDIndexRebuild {
		s.log.Warn("unknown task ID: %s", task.ID)
		return
	}

	result := &domain.TaskResult{TaskID: task.ID, StartedAt: s.now()}
	report, err := s.runIndexRebuild(ctx)
	if errors.Is(err, domain.ErrRebuildInProgress) {
		s.log.Info("%s: rebuild already running, retrying next tick", task.ID)
		return
	}

	result.EndedAt = s.now()
	if report != nil {
		result.Documents = report.Documents
		result.Chunks = report.Chunks
		result.Failed = report.TotalFailed()
	}
	if err != nil {
		result.Error = err.Error()
		task.LastError = err.Error()
		s.log.Error("%s failed: %v", task.ID, err)
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
		s.log.Info("%s done: %d chunks from %d documents", task.ID, result.Chunks, result.Documents)
	}

	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)

	// Persist even when ctx was cancelled mid-run so the schedule advances.
	saveCtx := context.WithoutCancel(ctx)
	if saveErr := s.store.SaveTask(saveCtx, task); saveErr != nil {
		s.log.Error("failed to save task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordResult(saveCtx, result); recordErr != nil {
		s.log.Error("failed to record result for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(saveCtx, historyKeep); pruneErr != nil {
		s.log.Error("failed to prune history: %v", pruneErr)
	}
}

func (s *Scheduler) runIndexRebuild(ctx context.Context) (*domain.IngestReport, error) {
	if s.rebuilder == nil {
		return nil, nil
	}
	return s.rebuilder.TryRebuild(ctx)
}

// History returns the schedule of the index rebuild and its most recent
// runs, newest first. The task is nil before the scheduler first starts.
func (s *Scheduler) History(ctx context.Context, limit int) (*domain.ScheduledTask, []domain.TaskResult, error) {
	task, err := s.store.GetTask(ctx, domain.TaskIDIndexRebuild)
	if err != nil {
		return nil, nil, err
	}
	runs, err := s.store.TaskHistory(ctx, domain.TaskIDIndexRebuild, min(limit, historyKeep))
	if err != nil {
		return nil, nil, err
	}
	return task, runs, nil
}
