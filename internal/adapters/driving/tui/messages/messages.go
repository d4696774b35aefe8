// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the conversation view.
	ViewChat
	// ViewSessions lists stored sessions.
	ViewSessions
	// ViewSettings shows the configuration.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewSessions:
		return "sessions"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// AnswerReceived carries a chat reply back to the model.
type AnswerReceived struct {
	Question string
	Reply    *domain.ChatReply
	Err      error
}

// HistoryLoaded carries the turns of a resumed session.
type HistoryLoaded struct {
	SessionID string
	Turns     []domain.Turn
	Err       error
}

// SessionsLoaded carries the session listing.
type SessionsLoaded struct {
	Sessions []domain.SessionSummary
	Err      error
}

// SessionSelected asks the chat view to resume a session.
type SessionSelected struct {
	ID string
}

// SessionDeleted signals a session was removed.
type SessionDeleted struct {
	ID  string
	Err error
}

// IndexStatusLoaded carries the index state for the status bar.
type IndexStatusLoaded struct {
	Status domain.IndexStatus
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SettingsLoaded carries the current settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
