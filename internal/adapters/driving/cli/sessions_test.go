package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

func TestSessionsCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "sessions")

	require.NoError(t, err)
	assert.Contains(t, out, "No sessions yet.")
}

func TestSessionsCmd_Table(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	now := time.Now()
	chatService = &mockChatService{SessionsFunc: func(context.Context) ([]domain.SessionSummary, error) {
		return []domain.SessionSummary{
			{ID: "sess-a", TurnCount: 4, Exchanges: 2, UpdatedAt: now},
			{ID: "sess-b", TurnCount: 2, Exchanges: 1, UpdatedAt: now.Add(-time.Hour)},
		}, nil
	}}

	out, err := execute(t, "", "sessions")

	require.NoError(t, err)
	assert.Contains(t, out, "EXCHANGES")
	assert.Regexp(t, `sess-a\s+2`, out)
	assert.Regexp(t, `sess-b\s+1`, out)
}

func TestSessionsCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	chatService = &mockChatService{SessionsFunc: func(context.Context) ([]domain.SessionSummary, error) {
		return []domain.SessionSummary{{ID: "sess-a", Exchanges: 3}}, nil
	}}

	out, err := execute(t, "", "sessions", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"session_id": "sess-a"`)
	assert.Contains(t, out, `"exchanges": 3`)
}

func TestSessionsCmd_LongNamesBackend(t *testing.T) {
	assert.Contains(t, sessionsCmd.Long, "sqlite by default")
	assert.Contains(t, sessionsCmd.Long, "current process")
}
