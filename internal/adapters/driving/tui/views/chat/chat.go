// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/components/markdown"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
)

// roleError marks transcript entries that report a failed request.
const roleError domain.Role = "error"

// entry is one rendered block of the transcript.
type entry struct {
	role     domain.Role
	text     string
	sources  []domain.SourceRef
	degraded bool
}

// View is the conversation view: transcript, status bar and question input.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	statusbar *status.Bar
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *markdown.Renderer
	mdStyle   string

	chatService driving.ChatService
	ctx         context.Context

	sessionID   string
	exchanges   int
	entries     []entry
	showSources bool
	thinking    bool
	err         error

	width  int
	height int
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, chatService driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.AssistantLabel

	v := &View{
		styles:      s,
		keymap:      km,
		input:       input.NewQuestionInput(s),
		statusbar:   status.NewBar(s, km),
		spinner:     sp,
		mdStyle:     markdown.StyleAuto,
		chatService: chatService,
		ctx:         context.Background(),
		showSources: true,
	}
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithMarkdownStyle selects the glamour style used for answers.
func (v *View) WithMarkdownStyle(style string) *View {
	v.mdStyle = style
	v.renderer = markdown.New(v.width-4, style)
	v.refresh()
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.input.Focus())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.HistoryLoaded:
		v.handleHistory(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(msg.String(), v.keymap.ScrollUp), keymap.Matches(msg.String(), v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	// one question at a time
	if v.thinking {
		return v, nil
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.NewSession):
		v.Reset()
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.ToggleSources):
		v.showSources = !v.showSources
		v.refresh()
		return v, nil
	case msg.Type == tea.KeyEnter:
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			return v, nil
		}
		v.input.Reset()
		v.entries = append(v.entries, entry{role: domain.RoleUser, text: question})
		v.thinking = true
		v.err = nil
		v.statusbar.SetState(status.StateThinking)
		v.refresh()
		return v, tea.Batch(v.spinner.Tick, v.ask(question))
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask returns a command that sends question within the current session.
func (v *View) ask(question string) tea.Cmd {
	svc, ctx, sessionID := v.chatService, v.ctx, v.sessionID
	return func() tea.Msg {
		if svc == nil {
			return messages.AnswerReceived{Question: question, Err: fmt.Errorf("chat service not available")}
		}
		reply, err := svc.Chat(ctx, question, sessionID)
		return messages.AnswerReceived{Question: question, Reply: reply, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.thinking = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	reply := msg.Reply
	v.sessionID = reply.SessionID
	v.exchanges++
	v.entries = append(v.entries, entry{
		role:     domain.RoleAssistant,
		text:     reply.Answer,
		sources:  reply.Sources,
		degraded: reply.Degraded,
	})
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
	v.statusbar.SetSession(v.sessionID, v.exchanges)
	v.refresh()
}

func (v *View) handleHistory(msg messages.HistoryLoaded) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.sessionID = msg.SessionID
	v.exchanges = domain.CountExchanges(msg.Turns)
	v.entries = v.entries[:0]
	for _, t := range msg.Turns {
		v.entries = append(v.entries, entry{role: t.Role, text: t.Message})
	}
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetSession(v.sessionID, v.exchanges)
	v.refresh()
}

func (v *View) setError(err error) {
	v.thinking = false
	v.err = err
	v.entries = append(v.entries, entry{role: roleError, text: err.Error()})
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.refresh()
}

// Resume returns a command that loads the history of session id.
func (v *View) Resume(id string) tea.Cmd {
	v.Reset()
	svc, ctx := v.chatService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.HistoryLoaded{SessionID: id, Err: fmt.Errorf("chat service not available")}
		}
		turns, err := svc.History(ctx, id)
		return messages.HistoryLoaded{SessionID: id, Turns: turns, Err: err}
	}
}

// Reset starts a new conversation. The next question mints a session id.
func (v *View) Reset() {
	v.sessionID = ""
	v.exchanges = 0
	v.entries = nil
	v.thinking = false
	v.err = nil
	v.input.Reset()
	v.statusbar.Clear()
	v.refresh()
}

// View renders the chat view.
func (v *View) View() string {
	header := v.styles.Title.Render("Campus Assistant")
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		v.viewport.View(),
		v.statusbar.View(),
		v.input.View(),
	)
}

// refresh re-renders the transcript into the viewport.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.entries) == 0 && !v.thinking {
		return v.styles.Muted.Render("Ask a question about the university. Answers cite the documents they draw on.")
	}

	var b strings.Builder
	for _, e := range v.entries {
		switch e.role {
		case domain.RoleUser:
			b.WriteString(v.styles.UserLabel.Render("You: ") + e.text + "\n\n")
		case domain.RoleAssistant:
			b.WriteString(v.styles.AssistantLabel.Render("Assistant:") + "\n")
			b.WriteString(v.renderer.Render(e.text) + "\n")
			if v.showSources {
				for _, src := range e.sources {
					b.WriteString(v.styles.Source.Render(v.styles.SourceTag(src.Type)+" "+src.Source) + "\n")
				}
			}
			b.WriteString("\n")
		case roleError:
			b.WriteString(v.styles.Error.Render("Error: "+e.text) + "\n\n")
		}
	}

	if v.thinking {
		b.WriteString(v.spinner.View() + " " + v.styles.Muted.Render("Thinking...") + "\n")
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	// header, status bar and bordered input take five lines
	vpHeight := max(height-6, 5)
	v.viewport = viewport.New(width, vpHeight)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.renderer = markdown.New(width-4, v.mdStyle)
	v.refresh()
}

// SetIndexState shows the index state in the status bar.
func (v *View) SetIndexState(state string) {
	v.statusbar.SetIndexState(state)
}

// SessionID returns the current session, empty before the first answer.
func (v *View) SessionID() string {
	return v.sessionID
}

// Thinking reports whether a question is in flight.
func (v *View) Thinking() bool {
	return v.thinking
}

// Transcript returns the rendered transcript.
func (v *View) Transcript() string {
	return v.renderTranscript()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
