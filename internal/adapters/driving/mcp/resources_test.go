package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid session URI", uri: "campus://sessions/abc-123", expected: "abc-123"},
		{name: "invalid prefix", uri: "file://sessions/abc-123", expected: ""},
		{name: "nested path", uri: "campus://sessions/abc/turns", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractSessionID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleSessionResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns history as JSON", func(t *testing.T) {
		chat := &mockChatService{history: []domain.Turn{{ID: "1", Role: domain.RoleUser, Message: "hi"}}}
		server := newTestServer(t, chat, nil)

		result, err := server.handleSessionResource(ctx, makeReadResourceRequest("campus://sessions/s-1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var out HistoryOutput
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &out))
		assert.Equal(t, "s-1", out.SessionID)
		require.Len(t, out.History, 1)
		assert.Equal(t, "hi", out.History[0].Message)
		assert.Equal(t, "s-1", chat.lastSession)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		server := newTestServer(t, &mockChatService{}, nil)

		_, err := server.handleSessionResource(ctx, makeReadResourceRequest("campus://sessions/"))

		require.Error(t, err)
	})

	t.Run("service error is wrapped", func(t *testing.T) {
		server := newTestServer(t, &mockChatService{err: errors.New("db locked")}, nil)

		_, err := server.handleSessionResource(ctx, makeReadResourceRequest("campus://sessions/s-1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting history")
	})
}

func TestServer_handleSessionsResource(t *testing.T) {
	chat := &mockChatService{sessions: []domain.SessionSummary{{ID: "s-2", TurnCount: 4, Exchanges: 2}}}
	server := newTestServer(t, chat, nil)

	result, err := server.handleSessionsResource(context.Background(), makeReadResourceRequest("campus://sessions"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	var out []domain.SessionSummary
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &out))
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].Exchanges)
}
