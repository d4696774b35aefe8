package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

func TestIndexCmd_Status(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "index")

	require.NoError(t, err)
	assert.Contains(t, out, "State:      ready")
	assert.Contains(t, out, "Vectors:    12")
	assert.Contains(t, out, "Model:      hashing-384")
}

func TestIndexCmd_StatusAfterFailedStart(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	indexService = &mockIndexService{
		status:   domain.IndexStatus{State: domain.IndexUnready, LastError: "no documents"},
		startErr: domain.ErrIndexBuild,
	}

	out, err := execute(t, "", "index")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: starting index: index build failed")
	assert.Contains(t, out, "State:      unready")
	assert.Contains(t, out, "Last error: no documents")
	assert.NotContains(t, out, "Vectors:")
}

func TestIndexCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "index", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"state": "ready"`)
	assert.Contains(t, out, `"dimensions": 384`)
}

func TestIndexRebuildCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	idx := indexService.(*mockIndexService)

	out, err := execute(t, "", "index", "rebuild")

	require.NoError(t, err)
	assert.Equal(t, 1, idx.rebuilds)
	assert.Contains(t, out, "Indexed 12 chunks from 4 documents")
	assert.Contains(t, out, "Model: hashing-384 (384 dimensions)")
	assert.Contains(t, out, "txt   loaded 1, failed 0")
}

func TestIndexRebuildCmd_Error(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	indexService = &mockIndexService{rebuildErr: domain.ErrRebuildInProgress}

	_, err := execute(t, "", "index", "rebuild")

	assert.ErrorIs(t, err, domain.ErrRebuildInProgress)
}

func TestIndexHistoryCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	start := time.Date(2026, 9, 1, 3, 0, 0, 0, time.Local)
	runner := &mockRunner{
		task: &domain.ScheduledTask{
			ID:        domain.TaskIDIndexRebuild,
			Interval:  24 * time.Hour,
			NextRun:   start.Add(24 * time.Hour),
			LastError: "index build failed",
		},
		runs: []domain.TaskResult{
			{StartedAt: start, EndedAt: start.Add(42 * time.Second), Error: "index build failed"},
			{StartedAt: start.Add(-24 * time.Hour), EndedAt: start.Add(-24*time.Hour + time.Minute), Success: true, Documents: 4, Chunks: 12, Failed: 1},
		},
	}
	scheduler = runner

	out, err := execute(t, "", "index", "history", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, 5, runner.limit)
	assert.Contains(t, out, "Every 24h0m0s, next run 2026-09-02 03:00:00")
	assert.Contains(t, out, "Last error: index build failed")
	assert.Contains(t, out, "STARTED")
	assert.Contains(t, out, "2026-09-01 03:00:00       42s  failed")
	assert.Contains(t, out, "1m0s  ok          4      12       1")
}

func TestIndexHistoryCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	scheduler = &mockRunner{}

	out, err := execute(t, "", "index", "history")

	require.NoError(t, err)
	assert.Contains(t, out, "No rebuild scheduled yet.")
	assert.Contains(t, out, "No runs recorded.")
}

func TestIndexHistoryCmd_Errors(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "index", "history")
	assert.EqualError(t, err, "scheduled rebuilds are disabled")

	scheduler = &mockRunner{historyErr: assert.AnError}
	_, err = execute(t, "", "index", "history")
	assert.ErrorIs(t, err, assert.AnError)
}
