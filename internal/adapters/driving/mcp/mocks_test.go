package mcp

import (
	"context"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	reply    *domain.ChatReply
	history  []domain.Turn
	sessions []domain.SessionSummary
	err      error

	lastMessage string
	lastSession string
}

var _ driving.ChatService = (*mockChatService)(nil)

func (m *mockChatService) Chat(_ context.Context, message, sessionID string) (*domain.ChatReply, error) {
	m.lastMessage = message
	m.lastSession = sessionID
	return m.reply, m.err
}

func (m *mockChatService) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	return nil, m.err
}

func (m *mockChatService) History(_ context.Context, sessionID string) ([]domain.Turn, error) {
	m.lastSession = sessionID
	return m.history, m.err
}

func (m *mockChatService) DeleteHistory(_ context.Context, sessionID string) error {
	m.lastSession = sessionID
	return m.err
}

func (m *mockChatService) Sessions(_ context.Context) ([]domain.SessionSummary, error) {
	return m.sessions, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	status domain.IndexStatus
}

var _ driving.IndexService = (*mockIndexService)(nil)

func (m *mockIndexService) Start(_ context.Context) error { return nil }

func (m *mockIndexService) Rebuild(_ context.Context) (*domain.IngestReport, error) {
	return domain.NewIngestReport(), nil
}

func (m *mockIndexService) TryRebuild(_ context.Context) (*domain.IngestReport, error) {
	return domain.NewIngestReport(), nil
}

func (m *mockIndexService) Status() domain.IndexStatus { return m.status }
