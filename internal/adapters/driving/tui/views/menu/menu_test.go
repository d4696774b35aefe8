package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

func press(v *View, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := v.Update(msg)
	return cmd
}

func TestNewView_Defaults(t *testing.T) {
	view := NewView(nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.keys)
	assert.Zero(t, view.Selected())
	assert.Nil(t, view.Init())
}

func TestView_NavigationWraps(t *testing.T) {
	view := NewView(nil, nil)

	press(view, "up")
	assert.Equal(t, len(items)-1, view.Selected())

	press(view, "down")
	assert.Zero(t, view.Selected())

	press(view, "j")
	press(view, "j")
	assert.Equal(t, 2, view.Selected())

	press(view, "k")
	assert.Equal(t, 1, view.Selected())
}

func TestView_EnterOpensSelectedView(t *testing.T) {
	tests := []struct {
		selected int
		want     messages.ViewType
	}{
		{0, messages.ViewChat},
		{1, messages.ViewSessions},
		{2, messages.ViewSettings},
		{3, messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			view := NewView(nil, nil)
			view.selected = tt.selected

			cmd := press(view, "enter")

			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: tt.want}, cmd())
		})
	}
}

func TestView_NumberJumps(t *testing.T) {
	view := NewView(nil, nil)

	cmd := press(view, "2")

	require.NotNil(t, cmd)
	assert.Equal(t, 1, view.Selected())
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSessions}, cmd())

	assert.Nil(t, press(view, "9"))
	assert.Equal(t, 1, view.Selected())
}

func TestView_HelpKey(t *testing.T) {
	view := NewView(nil, nil)

	cmd := press(view, "?")

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHelp}, cmd())
	assert.Zero(t, view.Selected())
}

func TestView_Quit(t *testing.T) {
	view := NewView(nil, nil)
	cmd := press(view, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	view.selected = len(items) - 1
	cmd = press(view, "enter")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestView_Render(t *testing.T) {
	view := NewView(nil, nil)
	view.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	out := view.View()

	assert.Contains(t, out, "Campus Assistant")
	assert.Contains(t, out, "> 1  Chat")
	assert.Contains(t, out, "5  Quit")
	assert.Contains(t, out, "Resume or delete earlier conversations")
	assert.NotContains(t, out, "Index:")

	view.SetDimensions(40, 20)
	assert.NotContains(t, view.View(), "Resume or delete")
}

func TestView_IndexStatusLine(t *testing.T) {
	view := NewView(nil, nil)

	view.SetIndexStatus(domain.IndexStatus{State: domain.IndexReady, Vectors: 120})
	assert.Contains(t, view.View(), "Index: ready (120 chunks)")

	view.SetIndexStatus(domain.IndexStatus{State: domain.IndexUnready, LastError: "dataset directory does not exist"})
	assert.Contains(t, view.View(), "Index: unready: dataset directory does not exist")
}
