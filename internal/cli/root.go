// Package cli implements the sensai command tree. Commands build one
// Session, run an operation against the coaching backend, and render the
// result as styled text or JSON.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifesprint/sensai/internal/remote"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	ServerURL    string
	Token        string
	JournalPath  string
	SettingsPath string

	// Coach overrides the remote gateway (for testing). If nil, an HTTP
	// client is built from ServerURL and Token.
	Coach remote.Coach
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sensai CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sensai",
		Short: "sensai - agile coaching for one",
		Long:  "A personal coaching client that runs your life like a well-coached sprint.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			logLevel := slog.LevelWarn
			if opts.Verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ServerURL, "server", envOr("SENSAI_SERVER", "http://localhost:8000"), "coaching backend base URL")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", os.Getenv("SENSAI_TOKEN"), "bearer token for the backend")
	cmd.PersistentFlags().StringVar(&opts.JournalPath, "journal", envOr("SENSAI_JOURNAL", ""), "path to the local action journal (SQLite); empty disables journaling")
	cmd.PersistentFlags().StringVar(&opts.SettingsPath, "settings", "", "path to the local settings file (default ~/.sensai/settings.yaml)")

	cmd.AddCommand(NewStandupCommand(opts))
	cmd.AddCommand(NewSprintCommand(opts))
	cmd.AddCommand(NewCoachCommand(opts))
	cmd.AddCommand(NewWheelCommand(opts))
	cmd.AddCommand(NewMessagesCommand(opts))
	cmd.AddCommand(NewSettingsCommand(opts))
	cmd.AddCommand(NewIntakeCommand(opts))
	cmd.AddCommand(NewAnalyticsCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
