package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sessionsJSON bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List conversation sessions",
	Long: `Lists known sessions, most recently updated first.

Sessions are kept in sqlite by default. With sessions.backend set to
memory only the sessions of the current process are listed.`,
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().BoolVar(&sessionsJSON, "json", false, "output sessions as JSON")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	sessions, err := chatService.Sessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if sessionsJSON {
		data, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal sessions: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions yet.")
		return nil
	}

	cmd.Printf("%-36s  %9s  %s\n", "SESSION", "EXCHANGES", "UPDATED")
	for _, s := range sessions {
		cmd.Printf("%-36s  %9d  %s\n", s.ID, s.Exchanges, s.UpdatedAt.Local().Format(time.DateTime))
	}
	return nil
}
