package domain

import "time"

// Role identifies the author of a turn.
type Role string

// Turn roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. It is immutable once appended.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Session groups an ordered sequence of turns under one identifier.
type Session struct {
	ID        string    `json:"session_id"`
	Turns     []Turn    `json:"history"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Exchanges counts user turns, i.e. question and answer pairs.
func (s *Session) Exchanges() int {
	return CountExchanges(s.Turns)
}

// CountExchanges counts the user turns in turns.
func CountExchanges(turns []Turn) int {
	n := 0
	for _, t := range turns {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// SessionSummary is a lightweight listing of a session.
type SessionSummary struct {
	ID        string    `json:"session_id"`
	TurnCount int       `json:"turn_count"`
	Exchanges int       `json:"exchanges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
