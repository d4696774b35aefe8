package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
	"github.com/custodia-labs/campus-rag/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// Answerer produces an answer for a single question.
type Answerer interface {
	Answer(ctx context.Context, question string) domain.Answer
}

// ChatService records question and answer exchanges in sessions.
type ChatService struct {
	answerer Answerer
	sessions driven.SessionStore
	now      func() time.Time
	log      logger.Logger
}

// NewChatService creates a chat service.
func NewChatService(answerer Answerer, sessions driven.SessionStore) *ChatService {
	return &ChatService{
		answerer: answerer,
		sessions: sessions,
		now:      time.Now,
		log:      logger.For("chat"),
	}
}

// Chat answers message within the session sessionID, creating the session
// when the id is empty or unknown. The user and assistant turns are appended
// together, and only if ctx is still live once the answer is ready.
func (s *ChatService) Chat(ctx context.Context, message, sessionID string) (*domain.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	session, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	answer := s.answerer.Answer(ctx, message)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	asked := s.now().UTC()
	answered := s.now().UTC()
	user := domain.Turn{ID: uuid.NewString(), Role: domain.RoleUser, Message: message, Timestamp: asked}
	reply := domain.Turn{ID: uuid.NewString(), Role: domain.RoleAssistant, Message: answer.Text, Timestamp: answered}
	if err := s.sessions.Append(ctx, session.ID, user, reply); err != nil {
		return nil, fmt.Errorf("record exchange: %w", err)
	}
	s.log.Debug("session %s: %d sources, degraded=%t", session.ID, len(answer.Hits), answer.Degraded)

	return &domain.ChatReply{
		Answer:      answer.Text,
		SessionID:   session.ID,
		TurnID:      reply.ID,
		Timestamp:   answered,
		Sources:     answer.Sources,
		SourceTypes: answer.SourceTypes,
		Degraded:    answer.Degraded,
	}, nil
}

// Ask answers a one-off question without touching any session.
func (s *ChatService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	answer := s.answerer.Answer(ctx, question)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &answer, nil
}

// History returns the turns of a session, empty for an unknown id.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	turns, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if turns == nil {
		turns = []domain.Turn{}
	}
	return turns, nil
}

// DeleteHistory removes a session. Unknown ids return domain.ErrSessionNotFound.
func (s *ChatService) DeleteHistory(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Sessions lists known sessions.
func (s *ChatService) Sessions(ctx context.Context) ([]domain.SessionSummary, error) {
	return s.sessions.List(ctx)
}
