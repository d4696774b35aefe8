// Package settings provides the settings view for the TUI.
package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
)

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionEmbedding
	SectionLLM
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyTab   = "tab"
)

// View shows the configuration and lets the user switch AI providers.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error

	section      Section
	selected     int
	focusedField int // 1 when the API key input has focus

	apiKeyInput textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	apiKeyInput := textinput.New()
	apiKeyInput.Placeholder = "Enter API key (blank to use the environment)"
	apiKeyInput.EchoMode = textinput.EchoPassword
	apiKeyInput.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		section:         SectionOverview,
		apiKeyInput:     apiKeyInput,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: fmt.Errorf("settings service not available")}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.settings = msg.Settings
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.Reset()
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.Reset()
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionEmbedding:
		return v.handleProviderKeys(msg, domain.AllEmbeddingProviders())
	case SectionLLM:
		return v.handleProviderKeys(msg, domain.AllLLMProviders())
	}
	return v, nil
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < 1 {
			v.selected++
		}
	case keyEnter:
		if v.selected == 0 {
			v.section = SectionEmbedding
			v.selected = v.providerIndex(domain.AllEmbeddingProviders(), v.current(SectionEmbedding))
		} else {
			v.section = SectionLLM
			v.selected = v.providerIndex(domain.AllLLMProviders(), v.current(SectionLLM))
		}
	}
	return v, nil
}

func (v *View) handleProviderKeys(msg tea.KeyMsg, providers []domain.AIProvider) (*View, tea.Cmd) {
	if v.focusedField == 1 {
		switch msg.String() {
		case keyTab, "shift+tab":
			v.focusedField = 0
			v.apiKeyInput.Blur()
			return v, nil
		case keyEnter:
			return v, v.save(providers[v.selected], v.apiKeyInput.Value())
		default:
			var cmd tea.Cmd
			v.apiKeyInput, cmd = v.apiKeyInput.Update(msg)
			return v, cmd
		}
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(providers)-1 {
			v.selected++
		}
	case keyTab, keyEnter:
		provider := providers[v.selected]
		if provider.RequiresAPIKey() {
			v.focusedField = 1
			return v, v.apiKeyInput.Focus()
		}
		if msg.String() == keyEnter {
			return v, v.save(provider, "")
		}
	}
	return v, nil
}

// save returns a command that applies provider to the active section.
func (v *View) save(provider domain.AIProvider, apiKey string) tea.Cmd {
	svc, section := v.settingsService, v.section
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: fmt.Errorf("settings service not available")}
		}
		if section == SectionEmbedding {
			model := domain.DefaultEmbeddingModels()[provider]
			return messages.SettingsSaved{Err: svc.SetEmbeddingProvider(provider, model, apiKey)}
		}
		model := domain.DefaultLLMModels()[provider]
		return messages.SettingsSaved{Err: svc.SetLLMProvider(provider, model, apiKey)}
	}
}

func (v *View) current(section Section) domain.AIProvider {
	if v.settings == nil {
		return ""
	}
	if section == SectionEmbedding {
		return v.settings.Embedding.Provider
	}
	return v.settings.LLM.Provider
}

func (v *View) providerIndex(providers []domain.AIProvider, current domain.AIProvider) int {
	for i, p := range providers {
		if p == current {
			return i
		}
	}
	return 0
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionEmbedding:
		b.WriteString(v.renderProviderSelect("Select Embedding Provider",
			domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels(), v.settings.Embedding.Provider))
	case SectionLLM:
		b.WriteString(v.renderProviderSelect("Select LLM Provider",
			domain.AllLLMProviders(), domain.DefaultLLMModels(), v.settings.LLM.Provider))
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder
	st := v.settings

	info := [][2]string{
		{"Dataset", st.Dataset.Path},
		{"Index", st.Index.Path},
		{"Chunking", fmt.Sprintf("%d chars, %d overlap", st.Chunking.ChunkSize, st.Chunking.Overlap)},
		{"Retrieval", fmt.Sprintf("top %d, %d tokens, temperature %.1f",
			st.Retrieval.TopK, st.Retrieval.MaxTokens, st.Retrieval.Temperature)},
		{"Sessions", string(st.Sessions.Backend)},
		{"Scheduler", fmt.Sprintf("%t", st.Scheduler.Enabled)},
		{"Watcher", fmt.Sprintf("%t (debounce %s)", st.Watcher.Enabled, st.Watcher.Debounce)},
	}
	for _, kv := range info {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %-10s %s", kv[0]+":", kv[1])))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	items := []struct {
		label      string
		provider   domain.AIProvider
		model      string
		configured bool
		keyEnv     string
	}{
		{"Embedding Provider", st.Embedding.Provider, st.Embedding.Model, st.Embedding.IsConfigured(), st.Embedding.APIKeyEnv},
		{"LLM Provider", st.LLM.Provider, st.LLM.Model, st.LLM.IsConfigured(), st.LLM.APIKeyEnv},
	}

	for i, item := range items {
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}

		value := "Not Set"
		if item.provider != "" {
			value = fmt.Sprintf("%s (%s)", item.provider.Description(), item.model)
		}
		line := fmt.Sprintf("%s%s: %s", indicator, item.label, value)

		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString(" ")
		b.WriteString(v.keyStatus(item.configured, item.keyEnv))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Warning: %s", err.Error())))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
	}

	return b.String()
}

func (v *View) keyStatus(configured bool, env string) string {
	if configured {
		return v.styles.Success.Render("[configured]")
	}
	if env != "" {
		return v.styles.Warning.Render(fmt.Sprintf("[needs API key, set %s]", env))
	}
	return v.styles.Warning.Render("[needs API key]")
}

func (v *View) renderProviderSelect(
	title string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
	current domain.AIProvider,
) string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render(title))
	b.WriteString("\n\n")

	for i, provider := range providers {
		active := i == v.selected && v.focusedField == 0
		indicator := "  "
		if active {
			indicator = "> "
		}

		mark := ""
		if provider == current {
			mark = v.styles.Success.Render(" (current)")
		}

		line := fmt.Sprintf("%s%s%s", indicator, provider.Description(), mark)
		if active {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")

		if model, ok := defaults[provider]; ok {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("    Model: %s", model)))
			b.WriteString("\n")
		}
	}

	if providers[v.selected].RequiresAPIKey() {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("API Key:"))
		b.WriteString("\n")
		b.WriteString(v.apiKeyInput.View())
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderHelp() string {
	switch {
	case v.section == SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back")
	case v.focusedField == 1:
		return v.styles.Help.Render("[tab] back to list  [enter] save  [esc] back")
	default:
		return v.styles.Help.Render("[j/k] navigate  [tab] API key  [enter] select  [esc] back")
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset returns to the overview and clears the key input.
func (v *View) Reset() {
	v.section = SectionOverview
	v.selected = 0
	v.focusedField = 0
	v.err = nil
	v.apiKeyInput.SetValue("")
	v.apiKeyInput.Blur()
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}
