package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Show or delete a session's history",
	Long: `Prints the turns of a conversation session in order.
An unknown session prints an empty history.

Sessions are kept in sqlite by default. With sessions.backend set to
memory they last only as long as the process that created them.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete a session's history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output the history as JSON")
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	sessionID := args[0]

	turns, err := chatService.History(cmd.Context(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if historyJSON {
		data, err := json.MarshalIndent(map[string]any{
			"session_id": sessionID,
			"history":    turns,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(turns) == 0 {
		cmd.Printf("No history for session %s.\n", sessionID)
		return nil
	}

	cmd.Printf("Session %s\n\n", sessionID)
	for _, t := range turns {
		cmd.Printf("[%s] %s: %s\n", t.Timestamp.Local().Format(time.DateTime), t.Role, t.Message)
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	// ErrSessionNotFound is reported by Execute.
	if err := chatService.DeleteHistory(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Println("Chat history deleted successfully")
	return nil
}
