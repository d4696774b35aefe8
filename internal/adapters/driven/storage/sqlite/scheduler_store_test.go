package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

var base = time.Date(2026, 9, 1, 3, 0, 0, 123, time.UTC)

func rebuildRun(start time.Time, chunks int, err string) *domain.TaskResult {
	return &domain.TaskResult{
		TaskID:    domain.TaskIDIndexRebuild,
		StartedAt: start,
		EndedAt:   start.Add(time.Minute),
		Success:   err == "",
		Error:     err,
		Documents: chunks / 4,
		Chunks:    chunks,
		Failed:    1,
	}
}

func TestSchedulerStore_TaskRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	sched := store.SchedulerStore()

	task := &domain.ScheduledTask{
		ID:          domain.TaskIDIndexRebuild,
		Name:        "Index Rebuild",
		Interval:    domain.DefaultRebuildInterval,
		Enabled:     true,
		NextRun:     base.Add(24 * time.Hour),
		LastRun:     base,
		LastSuccess: base,
	}
	require.NoError(t, sched.SaveTask(ctx, task))

	got, err := sched.GetTask(ctx, domain.TaskIDIndexRebuild)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Index Rebuild", got.Name)
	assert.Equal(t, domain.DefaultRebuildInterval, got.Interval)
	assert.True(t, got.Enabled)
	assert.True(t, got.NextRun.Equal(task.NextRun))
	assert.True(t, got.LastRun.Equal(base))
	assert.True(t, got.LastSuccess.Equal(base))
	assert.Empty(t, got.LastError)
}

func TestSchedulerStore_ZeroTimesStayZero(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	sched := store.SchedulerStore()

	require.NoError(t, sched.SaveTask(ctx, &domain.ScheduledTask{ID: "fresh", Name: "Fresh", Interval: time.Hour}))

	got, err := sched.GetTask(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, got.NextRun.IsZero())
	assert.True(t, got.LastRun.IsZero())
	assert.True(t, got.LastSuccess.IsZero())
	assert.False(t, got.Enabled)
}

func TestSchedulerStore_SaveReplaces(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	sched := store.SchedulerStore()

	task := &domain.ScheduledTask{ID: domain.TaskIDIndexRebuild, Name: "Index Rebuild", Interval: time.Hour, Enabled: true}
	require.NoError(t, sched.SaveTask(ctx, task))

	task.Interval = 6 * time.Hour
	task.LastError = "index build failed: no chunks"
	require.NoError(t, sched.SaveTask(ctx, task))

	tasks, err := sched.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 6*time.Hour, tasks[0].Interval)
	assert.Equal(t, "index build failed: no chunks", tasks[0].LastError)
}

func TestSchedulerStore_GetMissingTask(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.SchedulerStore().GetTask(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchedulerStore_ListTasksSorted(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	sched := store.SchedulerStore()

	empty, err := sched.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, sched.SaveTask(ctx, &domain.ScheduledTask{ID: id, Name: id, Interval: time.Hour}))
	}
	tasks, err := sched.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "c", tasks[2].ID)
}

func TestSchedulerStore_InvalidInput(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	sched := store.SchedulerStore()

	assert.ErrorIs(t, sched.SaveTask(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, sched.SaveTask(ctx, &domain.ScheduledTask{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, sched.RecordResult(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, sched.RecordResult(ctx, &domain.TaskResult{}), domain.ErrInvalidInput)
}

func TestSchedulerStore_HistoryNewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	sched := store.SchedulerStore()

	require.NoError(t, sched.RecordResult(ctx, rebuildRun(base, 40, "")))
	require.NoError(t, sched.RecordResult(ctx, rebuildRun(base.Add(24*time.Hour), 0, "embedding failed")))
	require.NoError(t, sched.RecordResult(ctx, &domain.TaskResult{TaskID: "other", StartedAt: base, EndedAt: base}))

	runs, err := sched.TaskHistory(ctx, domain.TaskIDIndexRebuild, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.False(t, runs[0].Success)
	assert.Equal(t, "embedding failed", runs[0].Error)
	assert.True(t, runs[1].Success)
	assert.Equal(t, 40, runs[1].Chunks)
	assert.Equal(t, 10, runs[1].Documents)
	assert.Equal(t, 1, runs[1].Failed)
	assert.True(t, runs[1].StartedAt.Equal(base))
	assert.Equal(t, time.Minute, runs[1].Duration())

	limited, err := sched.TaskHistory(ctx, domain.TaskIDIndexRebuild, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.False(t, limited[0].Success)

	none, err := sched.TaskHistory(ctx, domain.TaskIDIndexRebuild, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSchedulerStore_PruneHistoryPerTask(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	sched := store.SchedulerStore()

	for i := range 5 {
		require.NoError(t, sched.RecordResult(ctx, rebuildRun(base.Add(time.Duration(i)*time.Hour), i, "")))
	}
	require.NoError(t, sched.RecordResult(ctx, &domain.TaskResult{TaskID: "other", StartedAt: base, EndedAt: base}))

	require.NoError(t, sched.PruneHistory(ctx, 2))

	runs, err := sched.TaskHistory(ctx, domain.TaskIDIndexRebuild, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 4, runs[0].Chunks)
	assert.Equal(t, 3, runs[1].Chunks)

	other, err := sched.TaskHistory(ctx, "other", 10)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestSchedulerStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.SchedulerStore().SaveTask(ctx, &domain.ScheduledTask{
		ID: domain.TaskIDIndexRebuild, Name: "Index Rebuild", Interval: time.Hour, Enabled: true, NextRun: base,
	}))
	require.NoError(t, first.SchedulerStore().RecordResult(ctx, rebuildRun(base, 8, "")))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	task, err := second.SchedulerStore().GetTask(ctx, domain.TaskIDIndexRebuild)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.True(t, task.NextRun.Equal(base))

	runs, err := second.SchedulerStore().TaskHistory(ctx, domain.TaskIDIndexRebuild, 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
