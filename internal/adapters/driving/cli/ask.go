package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Answers one question from the indexed documents without recording
it in any session. Use 'campus chat' for a conversation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON form of an answer.
type askOutput struct {
	Answer      string              `json:"answer"`
	Sources     []domain.SourceRef  `json:"sources"`
	SourceTypes []domain.SourceType `json:"source_types"`
	Degraded    bool                `json:"degraded"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if err := startIndex(cmd.Context()); err != nil {
		return err
	}

	answer, err := chatService.Ask(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		out := askOutput{
			Answer:      answer.Text,
			Sources:     answer.Sources,
			SourceTypes: answer.SourceTypes,
			Degraded:    answer.Degraded,
		}
		if out.Sources == nil {
			out.Sources = []domain.SourceRef{}
		}
		if out.SourceTypes == nil {
			out.SourceTypes = []domain.SourceType{}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(newAnswerRenderer(cmd.OutOrStdout()).Render(answer.Text))
	printSources(cmd, answer.Sources)
	return nil
}
