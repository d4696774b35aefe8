// Package cli provides the campus command line.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driving"
	"github.com/custodia-labs/campus-rag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Core services, injected by main through the bootstrap or set directly in tests.
var (
	chatService     driving.ChatService
	indexService    driving.IndexService
	combiner        driving.Combiner
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	watcher         driving.Watcher
)

// Services bundles the core services the commands call.
type Services struct {
	Chat     driving.ChatService
	Index    driving.IndexService
	Combiner driving.Combiner
	Settings driving.SettingsService

	// Scheduler and Watcher run alongside the long-lived commands (tui, mcp).
	// Either may be nil when disabled.
	Scheduler driving.Scheduler
	Watcher   driving.Watcher
}

// Bootstrap builds the services for a config directory. The returned
// cleanup is called once the command finishes.
type Bootstrap func(ctx context.Context, configDir string) (*Services, func(), error)

var (
	bootstrap Bootstrap
	teardown  func()
)

// SetBootstrap registers the function that wires services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects services directly.
func SetServices(s *Services) {
	chatService = s.Chat
	indexService = s.Index
	combiner = s.Combiner
	settingsService = s.Settings
	scheduler = s.Scheduler
	watcher = s.Watcher
}

var rootCmd = &cobra.Command{
	Use:   "campus",
	Short: "Question answering over university documents",
	Long: `campus indexes a directory of university documents (pdf, docx, doc,
txt and json) and answers questions about them with a language model,
keeping a history per conversation session.

Run 'campus chat' to start a conversation, or 'campus tui' for the
interactive terminal UI.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if teardown != nil {
			teardown()
			teardown = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.campus-rag)")
	rootCmd.SetOut(os.Stdout)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || cmd == versionCmd {
		return nil
	}
	svc, done, err := bootstrap(cmd.Context(), configDir)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(svc)
	teardown = done
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if errors.Is(err, domain.ErrSessionNotFound) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Session not found")
		return 1
	}
	fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	return 1
}

// startIndex loads or builds the index unless it is already serving.
func startIndex(ctx context.Context) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	if indexService.Status().State == domain.IndexReady {
		return nil
	}
	if err := indexService.Start(ctx); err != nil {
		return fmt.Errorf("starting index: %w", err)
	}
	return nil
}

// runBackground starts the scheduler and watcher until the returned stop is called.
func runBackground(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{}, 2)
	running := 0

	if scheduler != nil {
		running++
		go func() {
			defer func() { done <- struct{}{} }()
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
	}
	if watcher != nil {
		running++
		go func() {
			defer func() { done <- struct{}{} }()
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("watcher stopped: %v", err)
			}
		}()
	}

	return func() {
		cancel()
		if scheduler != nil {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("scheduler stop error: %v", err)
			}
		}
		for range running {
			<-done
		}
	}
}
