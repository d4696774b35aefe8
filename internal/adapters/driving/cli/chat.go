package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/campus-rag/internal/adapters/driving/tui/components/markdown"
	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the campus assistant",
	Long: `Start a conversation in the terminal. Each answer is grounded in the
indexed documents and the exchange is recorded in the session history.

Type a question and press enter. Commands:
  /new     start a new session
  exit     leave the conversation

Use --session to continue an earlier conversation.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "continue an existing session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if err := startIndex(cmd.Context()); err != nil {
		return err
	}

	sessionID := chatSession
	if sessionID != "" {
		turns, err := chatService.History(cmd.Context(), sessionID)
		if err != nil {
			return fmt.Errorf("loading session: %w", err)
		}
		cmd.Printf("Continuing session %s (%d exchanges)\n", sessionID, domain.CountExchanges(turns))
	}

	interactive := isTerminal(cmd.InOrStdin())
	renderer := newAnswerRenderer(cmd.OutOrStdout())
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if interactive {
			cmd.Print("You: ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return finishChat(cmd, sessionID)
		case "/new":
			sessionID = ""
			cmd.Println("Started a new session.")
			continue
		}

		reply, err := chatService.Chat(cmd.Context(), line, sessionID)
		if err != nil {
			return fmt.Errorf("chat failed: %w", err)
		}
		if sessionID == "" {
			cmd.Printf("(session %s)\n", reply.SessionID)
		}
		sessionID = reply.SessionID

		cmd.Println(renderer.Render(reply.Answer))
		printSources(cmd, reply.Sources)
		cmd.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return finishChat(cmd, sessionID)
}

func finishChat(cmd *cobra.Command, sessionID string) error {
	if sessionID != "" {
		cmd.Printf("Resume with: campus chat --session %s\n", sessionID)
	}
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.SourceRef) {
	if len(sources) == 0 {
		return
	}
	cmd.Println("Sources:")
	for _, s := range sources {
		cmd.Printf("  [%s] %s\n", s.Type, s.Source)
	}
}

// newAnswerRenderer renders markdown only when w is a terminal.
func newAnswerRenderer(w io.Writer) *markdown.Renderer {
	if !isTerminal(w) {
		return nil
	}
	width := 80
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}
	return markdown.New(width-2, markdown.StyleAuto)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
