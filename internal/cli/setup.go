package cli

import (
	"github.com/spf13/cobra"

	"github.com/lifesprint/sensai/internal/journal"
	"github.com/lifesprint/sensai/internal/remote"
	"github.com/lifesprint/sensai/internal/session"
)

// buildSession assembles a Session from the global flags. The returned
// cleanup closes the journal; call it when the command finishes.
func buildSession(opts *RootOptions) (*session.Session, func(), error) {
	coach := opts.Coach
	if coach == nil {
		coach = remote.NewClient(opts.ServerURL, opts.Token)
	}

	cleanup := func() {}
	sessionOpts := []session.Option{}
	if opts.JournalPath != "" {
		j, err := journal.Open(opts.JournalPath)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		cleanup = func() { _ = j.Close() }
		sessionOpts = append(sessionOpts, session.WithRecorder(j))
	}

	return session.New(coach, sessionOpts...), cleanup, nil
}

// formatter builds an OutputFormatter for a command.
func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
}
