package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui"
	"github.com/custodia-labs/campus-rag/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal chat for the campus assistant.

The TUI keeps a conversation with rendered answers and their sources,
lists earlier sessions to resume or delete, and edits provider settings.
The scheduled rebuild and dataset watcher run while it is open.

Controls:
  Enter    - Ask / Select
  Ctrl+N   - New session
  Ctrl+S   - Toggle sources
  Esc      - Back
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := tui.NewPorts(chatService, indexService, settingsService)
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// An unready index still serves sessions and settings; answers degrade.
	if err := startIndex(cmd.Context()); err != nil {
		logger.Warn("%v", err)
	}

	stop := runBackground(cmd.Context())
	defer stop()

	app.WithContext(cmd.Context())
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
