// Package cli provides the command-line interface for gourmet.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pantry-labs/gourmet-cli/internal/adapters/driven/config/file"
	"github.com/pantry-labs/gourmet-cli/internal/adapters/driven/dataset/csv"
	"github.com/pantry-labs/gourmet-cli/internal/adapters/driven/storage/memory"
	"github.com/pantry-labs/gourmet-cli/internal/adapters/driven/storage/sqlite"
	"github.com/pantry-labs/gourmet-cli/internal/core/ports/driven"
	"github.com/pantry-labs/gourmet-cli/internal/core/services"
	"github.com/pantry-labs/gourmet-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "gourmet",
	Short: "Conversational recipe search",
	Long: `Gourmet finds recipes by dish name or by the ingredients you have,
one recipe at a time, resuming where the last answer left off.

Run "gourmet chat" for a local chat session, "gourmet serve" to run
the Telegram bot, or "gourmet search" for one-shot queries.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.gourmet)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles the wired collaborators for one command run.
type app struct {
	cfg       *file.Config
	source    *csv.Source
	sessions  driven.SessionStore
	scanner   *services.Scanner
	formatter *services.Formatter

	closers []func() error
}

// buildApp loads configuration and wires the driven side. The messenger
// is transport-specific, so commands attach their own conversation via
// newConversation.
func buildApp() (*app, error) {
	cfg, err := file.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	source, err := csv.NewSource(cfg.Dataset.Path, cfg.Dataset.URL, cfg.Dataset.ChunkSize)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}

	a := &app{
		cfg:       cfg,
		source:    source,
		scanner:   services.NewScanner(source),
		formatter: services.NewFormatter(cfg.Telegram.MessageLimit),
	}
	a.closers = append(a.closers, source.Close)

	switch cfg.Sessions.Backend {
	case "memory":
		a.sessions = memory.NewSessionStore()
	default:
		store, err := sqlite.NewStore(cfg.Sessions.DataDir)
		if err != nil {
			source.Close()
			return nil, fmt.Errorf("opening session store: %w", err)
		}
		a.sessions = store
		a.closers = append(a.closers, store.Close)
	}

	return a, nil
}

// newConversation wires the state machine over the given messenger.
func (a *app) newConversation(messenger driven.Messenger) *services.Conversation {
	timeout := time.Duration(a.cfg.Search.TimeoutSeconds) * time.Second
	return services.NewConversation(a.sessions, messenger, a.scanner, a.formatter, a.source, timeout)
}

// Close releases everything buildApp opened.
func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			logger.Warn("Close: %v", err)
		}
	}
}
