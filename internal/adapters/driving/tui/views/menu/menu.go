// Package menu provides the start screen of the TUI.
package menu

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

// Item is one entry of the menu.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

var items = []Item{
	{Label: "Chat", Description: "Ask about courses, deadlines and campus services", View: messages.ViewChat},
	{Label: "Sessions", Description: "Resume or delete earlier conversations", View: messages.ViewSessions},
	{Label: "Settings", Description: "Choose embedding and answer providers", View: messages.ViewSettings},
	{Label: "Help", Description: "Keyboard shortcuts", View: messages.ViewHelp},
	{Label: "Quit", Quit: true},
}

// View is the start screen.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	selected int
	index    *domain.IndexStatus
	width    int
	height   int
}

// NewView creates the menu. Nil arguments fall back to the defaults.
func NewView(s *styles.Styles, keys *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if keys == nil {
		keys = keymap.DefaultKeyMap()
	}
	return &View{styles: s, keys: keys}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and opens the chosen view. Number keys jump
// straight to an item.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		k := msg.String()
		switch {
		case keymap.Matches(k, v.keys.Up):
			v.selected = (v.selected + len(items) - 1) % len(items)
		case keymap.Matches(k, v.keys.Down):
			v.selected = (v.selected + 1) % len(items)
		case keymap.Matches(k, v.keys.Select):
			return v, v.open(items[v.selected])
		case keymap.Matches(k, v.keys.Help):
			return v, v.open(Item{View: messages.ViewHelp})
		case keymap.Matches(k, v.keys.Quit):
			return v, tea.Quit
		default:
			if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(items) {
				v.selected = n - 1
				return v, v.open(items[v.selected])
			}
		}
	}
	return v, nil
}

func (v *View) open(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the menu.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Campus Assistant"))
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Answers drawn from the university's own documents"))
	b.WriteString("\n\n")

	if line := v.indexLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n\n")
	}

	for i, item := range items {
		label := fmt.Sprintf("%d  %s", i+1, item.Label)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + label))
		}
		if item.Description != "" && v.width >= 60 {
			b.WriteString(v.styles.Muted.Render("   " + item.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] move  [enter] open  [1-5] jump  [?] help  [q] quit"))
	return b.String()
}

func (v *View) indexLine() string {
	if v.index == nil {
		return ""
	}
	text := "Index: " + string(v.index.State)
	if v.index.State == domain.IndexReady {
		text += fmt.Sprintf(" (%d chunks)", v.index.Vectors)
		return v.styles.Success.Render(text)
	}
	if v.index.LastError != "" {
		text += ": " + v.index.LastError
	}
	return v.styles.Warning.Render(text)
}

// SetDimensions records the terminal size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// SetIndexStatus sets the index line shown under the title.
func (v *View) SetIndexStatus(status domain.IndexStatus) {
	v.index = &status
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.selected
}
