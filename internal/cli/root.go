package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	logger *slog.Logger
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "alias",
		Short: "Alias, the word guessing party game",
		Long: `alias runs the Alias party game in your terminal.

Teams take turns: the presenter describes the secret word and their team
guesses before the countdown runs out. Play on one device with "alias play",
or share a room with other devices when a backend is configured.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "Room backend URL: memory://, redis://, postgres:// or http(s):// (env: ALIAS_BACKEND_URL)")
	pf.StringVar(&cfg.BackendKey, "backend-key", cfg.BackendKey, "Room backend anon key (env: ALIAS_BACKEND_KEY)")
	pf.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: ALIAS_OUTPUT)")
	pf.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output (env: ALIAS_VERBOSE)")
	bindEnv(pf)

	// Add subcommands
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
