// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateSessions State = "sessions"
)

// shortIDLength is how much of a session id the bar shows.
const shortIDLength = 8

// Bar displays the session, index state and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	message    string
	sessionID  string
	indexState string
	exchanges  int
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// passive; updated via setters
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	var parts []string

	switch s.state {
	case StateThinking:
		parts = append(parts, s.styles.Warning.Render("Thinking..."))
	case StateError:
		if s.message != "" {
			parts = append(parts, s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message)))
		} else {
			parts = append(parts, s.styles.Error.Render("Error"))
		}
	case StateSessions:
		parts = append(parts, s.styles.Normal.Render("Sessions"))
	case StateReady:
		if s.message != "" {
			parts = append(parts, s.styles.Success.Render(s.message))
		} else {
			parts = append(parts, s.styles.Muted.Render("Ready"))
		}
	}

	if s.sessionID != "" {
		id := s.sessionID
		if len(id) > shortIDLength {
			id = id[:shortIDLength]
		}
		parts = append(parts, s.styles.Muted.Render(fmt.Sprintf("session %s (%d)", id, s.exchanges)))
	}
	if s.indexState != "" {
		parts = append(parts, s.styles.Muted.Render("index "+s.indexState))
	}
	return strings.Join(parts, s.styles.Muted.Render(" · "))
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateSessions {
		bindings = s.keymap.SessionsHelp()
	} else {
		bindings = s.keymap.ChatHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetSession sets the session shown in the bar.
func (s *Bar) SetSession(id string, exchanges int) {
	s.sessionID = id
	s.exchanges = exchanges
}

// SessionID returns the session shown in the bar.
func (s *Bar) SessionID() string {
	return s.sessionID
}

// SetIndexState sets the index state label.
func (s *Bar) SetIndexState(state string) {
	s.indexState = state
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.sessionID = ""
	s.exchanges = 0
}
