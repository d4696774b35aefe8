package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
)

var (
	indexJSON    bool
	historyLimit int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Show the index status",
	Long: `Loads the persisted index, building it when missing or unreadable,
and shows what it was built from.`,
	Args: cobra.NoArgs,
	RunE: runIndexStatus,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the index from the dataset",
	Long: `Loads every dataset file, chunks and embeds it, then persists and
publishes the new index. Files that fail to load are reported and skipped.`,
	Args: cobra.NoArgs,
	RunE: runIndexRebuild,
}

var indexHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show scheduled rebuild runs",
	Long: `Shows the periodic rebuild schedule and its most recent runs.
Runs are recorded by the background scheduler started with chat, tui and mcp.`,
	Args: cobra.NoArgs,
	RunE: runIndexHistory,
}

func init() {
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "output status as JSON")
	indexHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexHistoryCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	if err := startIndex(cmd.Context()); err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}
	status := indexService.Status()

	if indexJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("State:      %s\n", status.State)
	if status.Path != "" {
		cmd.Printf("Path:       %s\n", status.Path)
	}
	if status.State == domain.IndexReady {
		cmd.Printf("Vectors:    %d\n", status.Vectors)
		cmd.Printf("Dimensions: %d\n", status.Dimensions)
		cmd.Printf("Model:      %s\n", status.Model)
		cmd.Printf("Built:      %s\n", status.BuiltAt.Local().Format(time.DateTime))
	}
	if status.LastError != "" {
		cmd.Printf("Last error: %s\n", status.LastError)
	}
	return nil
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	cmd.Println("Rebuilding index...")
	start := time.Now()
	report, err := indexService.Rebuild(cmd.Context())
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	status := indexService.Status()
	cmd.Printf("Indexed %d chunks from %d documents in %s\n",
		report.Chunks, report.Documents, time.Since(start).Round(time.Millisecond))
	if status.Model != "" {
		cmd.Printf("Model: %s (%d dimensions)\n", status.Model, status.Dimensions)
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func runIndexHistory(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduled rebuilds are disabled")
	}
	task, runs, err := scheduler.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read rebuild history: %w", err)
	}

	if task == nil {
		cmd.Println("No rebuild scheduled yet.")
	} else {
		cmd.Printf("Every %s, next run %s\n", task.Interval, task.NextRun.Local().Format(time.DateTime))
		if task.LastError != "" {
			cmd.Printf("Last error: %s\n", task.LastError)
		}
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	cmd.Println()
	cmd.Printf("%-19s  %8s  %-6s  %5s  %6s  %6s\n", "STARTED", "TOOK", "RESULT", "DOCS", "CHUNKS", "FAILED")
	for _, r := range runs {
		result := "ok"
		if !r.Success {
			result = "failed"
		}
		cmd.Printf("%-19s  %8s  %-6s  %5d  %6d  %6d\n",
			r.StartedAt.Local().Format(time.DateTime), r.Duration().Round(time.Second),
			result, r.Documents, r.Chunks, r.Failed)
	}
	return nil
}

// printReport writes per-type tallies and every skipped file.
func printReport(w io.Writer, report *domain.IngestReport) {
	if report == nil {
		return
	}

	types := make([]domain.SourceType, 0, len(report.Loaded)+len(report.Failed))
	for t := range report.Loaded {
		types = append(types, t)
	}
	for t := range report.Failed {
		if _, ok := report.Loaded[t]; !ok {
			types = append(types, t)
		}
	}
	slices.Sort(types)

	for _, t := range types {
		fmt.Fprintf(w, "  %-5s loaded %d, failed %d\n", t, report.Loaded[t], report.Failed[t])
	}
	if report.Empty > 0 {
		fmt.Fprintf(w, "  %d files had no text\n", report.Empty)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(w, "  skipped %s: %s\n", f.Path, f.Error)
	}
}
