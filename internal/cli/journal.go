package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifesprint/sensai/internal/journal"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Action string
	Since  string
	Limit  int
}

// NewJournalCommand creates the journal command for browsing the local
// action log.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "journal",
		Short:         "Browse the local action journal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter by action name")
	cmd.Flags().StringVar(&opts.Since, "since", "", "only entries recorded at or after this RFC3339 time")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum entries to show")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	out := formatter(opts.RootOptions, cmd)
	if opts.JournalPath == "" {
		return WrapExitError(ExitCommandError, "no journal configured: pass --journal or set SENSAI_JOURNAL", nil)
	}

	filter := journal.Filter{Action: opts.Action, Limit: opts.Limit}
	if opts.Since != "" {
		since, err := time.Parse(time.RFC3339, opts.Since)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --since value", err)
		}
		filter.Since = since
	}

	j, err := journal.Open(opts.JournalPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	entries, err := j.List(cmd.Context(), filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	return out.Emit(entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, styleMuted.Render("journal is empty"))
			return
		}
		for _, e := range entries {
			fmt.Fprintf(w, "%s %s %s\n",
				styleMuted.Render(fmt.Sprintf("#%d", e.Seq)),
				styleTitle.Render(e.Action),
				styleMuted.Render(e.RecordedAt.Format("2006-01-02 15:04:05")))
		}
	})
}
