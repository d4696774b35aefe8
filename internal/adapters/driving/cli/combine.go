package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var combineOutput string

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Write every dataset document to one text file",
	Long: `Loads every document in the dataset, normalises its text and writes it
to a single file, each section tagged with its source file and page or type.
Use -o - to write to stdout.`,
	Args: cobra.NoArgs,
	RunE: runCombine,
}

func init() {
	combineCmd.Flags().StringVarP(&combineOutput, "output", "o", "combined.txt", "output file, - for stdout")
	rootCmd.AddCommand(combineCmd)
}

func runCombine(cmd *cobra.Command, _ []string) error {
	if combiner == nil {
		return errors.New("combiner not configured")
	}

	var w io.Writer = cmd.OutOrStdout()
	summary := cmd.ErrOrStderr()
	if combineOutput != "-" {
		f, err := os.Create(combineOutput)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
		summary = cmd.OutOrStdout()
	}

	report, err := combiner.Combine(cmd.Context(), w)
	if err != nil {
		return fmt.Errorf("combine failed: %w", err)
	}

	if combineOutput != "-" {
		fmt.Fprintf(summary, "Combined %d documents into %s\n", report.Documents, combineOutput)
	}
	printReport(summary, report)
	return nil
}
