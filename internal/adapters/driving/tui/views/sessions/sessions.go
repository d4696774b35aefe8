// Package sessions provides the stored-sessions view for the TUI.
package sessions

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
)

// View lists stored sessions and lets the user resume or delete them.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.SessionList
	statusbar *status.Bar

	chatService driving.ChatService
	ctx         context.Context

	err     error
	loading bool
	width   int
	height  int
}

// NewView creates a new sessions view.
func NewView(s *styles.Styles, km *keymap.KeyMap, chatService driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetState(status.StateSessions)

	return &View{
		styles:      s,
		keymap:      km,
		list:        list.NewSessionList(s),
		statusbar:   bar,
		chatService: chatService,
		ctx:         context.Background(),
		width:       80,
		height:      24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the session listing.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	svc, ctx := v.chatService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.SessionsLoaded{Err: fmt.Errorf("chat service not available")}
		}
		sessions, err := svc.Sessions(ctx)
		return messages.SessionsLoaded{Sessions: sessions, Err: err}
	}
}

func (v *View) remove(id string) tea.Cmd {
	svc, ctx := v.chatService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.SessionDeleted{ID: id, Err: fmt.Errorf("chat service not available")}
		}
		return messages.SessionDeleted{ID: id, Err: svc.DeleteHistory(ctx, id)}
	}
}

// Update handles messages for the sessions view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SessionsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetSessions(msg.Sessions)
		}
		return v, nil

	case messages.SessionDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.statusbar.SetMessage("Deleted " + msg.ID)
		return v, v.load()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(key, v.keymap.Select):
		if sel := v.list.Selected(); sel != nil {
			id := sel.ID
			return v, func() tea.Msg {
				return messages.SessionSelected{ID: id}
			}
		}
	case keymap.Matches(key, v.keymap.Delete):
		if sel := v.list.Selected(); sel != nil {
			return v, v.remove(sel.ID)
		}
	case keymap.Matches(key, v.keymap.Refresh):
		return v, v.Init()
	default:
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

// View renders the sessions view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Conversation sessions"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	default:
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetSize(width, height-4)
	v.statusbar.SetWidth(width)
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
