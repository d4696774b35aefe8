package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// ChatInput is the input schema for the chat tool.
type ChatInput struct {
	Message   string `json:"message" jsonschema:"the question to ask about the university"`
	SessionID string `json:"session_id,omitempty" jsonschema:"session to continue; omit to start a new one"`
}

// ChatOutput is the output schema for the chat tool.
type ChatOutput struct {
	Response    string             `json:"response"`
	SessionID   string             `json:"session_id"`
	MessageID   string             `json:"message_id"`
	Timestamp   string             `json:"timestamp"`
	Sources     []domain.SourceRef `json:"sources,omitempty"`
	SourceTypes []string           `json:"source_types,omitempty"`
}

// SessionInput identifies a session.
type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"the session identifier"`
}

// HistoryOutput is the output schema for the get_history tool.
type HistoryOutput struct {
	SessionID string       `json:"session_id"`
	History   []TurnOutput `json:"history"`
}

// TurnOutput is one turn of a session history.
type TurnOutput struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// StatusOutput is the output schema for the index_status tool.
type StatusOutput struct {
	State      string `json:"state"`
	Vectors    int    `json:"vectors"`
	Dimensions int    `json:"dimensions"`
	Model      string `json:"model,omitempty"`
	BuiltAt    string `json:"built_at,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

// DeleteOutput is the output schema for the delete_history tool.
type DeleteOutput struct {
	Message string `json:"message"`
}

// StatusInput is the (empty) input schema for the index_status tool.
type StatusInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat",
		Description: "Ask a question about the university documents within a conversation session",
	}, s.handleChat)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_history",
		Description: "Get the conversation history of a session",
	}, s.handleGetHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_history",
		Description: "Delete a conversation session",
	}, s.handleDeleteHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_status",
		Description: "Report whether the document index is ready",
	}, s.handleIndexStatus)
}

func (s *Server) handleChat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatInput,
) (*mcp.CallToolResult, ChatOutput, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, ChatOutput{}, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	reply, err := s.ports.Chat.Chat(ctx, input.Message, input.SessionID)
	if err != nil {
		return nil, ChatOutput{}, err
	}

	out := ChatOutput{
		Response:  reply.Answer,
		SessionID: reply.SessionID,
		MessageID: reply.TurnID,
		Timestamp: formatTime(reply.Timestamp),
		Sources:   reply.Sources,
	}
	for _, t := range reply.SourceTypes {
		out.SourceTypes = append(out.SourceTypes, string(t))
	}
	return nil, out, nil
}

func (s *Server) handleGetHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	history, err := s.ports.Chat.History(ctx, input.SessionID)
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	return nil, historyOutput(input.SessionID, history), nil
}

func (s *Server) handleDeleteHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	err := s.ports.Chat.DeleteHistory(ctx, input.SessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, DeleteOutput{}, errors.New("Session not found") //nolint:staticcheck // user-facing text
	}
	if err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{Message: "Chat history deleted successfully"}, nil
}

func (s *Server) handleIndexStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if s.ports.Index == nil {
		return nil, StatusOutput{State: string(domain.IndexUnready)}, nil
	}
	st := s.ports.Index.Status()
	return nil, StatusOutput{
		State:      string(st.State),
		Vectors:    st.Vectors,
		Dimensions: st.Dimensions,
		Model:      st.Model,
		BuiltAt:    formatTime(st.BuiltAt),
		LastError:  st.LastError,
	}, nil
}

func historyOutput(id string, turns []domain.Turn) HistoryOutput {
	out := HistoryOutput{SessionID: id, History: make([]TurnOutput, len(turns))}
	for i, t := range turns {
		out.History[i] = TurnOutput{
			ID:        t.ID,
			Role:      string(t.Role),
			Message:   t.Message,
			Timestamp: formatTime(t.Timestamp),
		}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
