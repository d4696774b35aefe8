// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// SessionList displays stored sessions in a navigable list.
type SessionList struct {
	sessions []domain.SessionSummary
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSessionList creates a new session list component.
func NewSessionList(s *styles.Styles) *SessionList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SessionList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *SessionList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *SessionList) Update(msg tea.Msg) (*SessionList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *SessionList) View() string {
	if len(l.sessions) == 0 {
		return l.styles.Muted.Render("No sessions yet")
	}

	lines := make([]string, 0, len(l.sessions)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sessions (%d)", len(l.sessions))), "")

	// one line per session, window around the selection
	visible := max(l.height-4, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.sessions))

	for i := start; i < end; i++ {
		s := l.sessions[i]
		line := fmt.Sprintf("%s  %d exchanges  updated %s",
			s.ID, s.Exchanges, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
		if i == l.selected {
			lines = append(lines, l.styles.Selected.Render("> "+line))
		} else {
			lines = append(lines, l.styles.Normal.Render("  "+line))
		}
	}

	return strings.Join(lines, "\n")
}

// SetSessions replaces the listed sessions, keeping the cursor in range.
func (l *SessionList) SetSessions(sessions []domain.SessionSummary) {
	l.sessions = sessions
	if l.selected >= len(sessions) {
		l.selected = max(len(sessions)-1, 0)
	}
}

// Sessions returns the listed sessions.
func (l *SessionList) Sessions() []domain.SessionSummary {
	return l.sessions
}

// Selected returns the selected session, or nil if the list is empty.
func (l *SessionList) Selected() *domain.SessionSummary {
	if l.selected < 0 || l.selected >= len(l.sessions) {
		return nil
	}
	return &l.sessions[l.selected]
}

// SelectedIndex returns the cursor position.
func (l *SessionList) SelectedIndex() int {
	return l.selected
}

// MoveUp moves the cursor up.
func (l *SessionList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the cursor down.
func (l *SessionList) MoveDown() {
	if l.selected < len(l.sessions)-1 {
		l.selected++
	}
}

// SetSize sets the list dimensions.
func (l *SessionList) SetSize(width, height int) {
	l.width = width
	l.height = height
}
