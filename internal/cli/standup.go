package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/remote"
)

// StandupOptions holds flags for the standup subcommands.
type StandupOptions struct {
	*RootOptions
	Yesterday []string
	Today     []string
	Blockers  []string
	Mood      string
	Notes     string
	Reason    string
}

// NewStandupCommand creates the standup command group.
func NewStandupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StandupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "standup",
		Short: "Daily standup check-in",
	}

	show := &cobra.Command{
		Use:           "show",
		Short:         "Show today's standup",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStandupShow(opts, cmd)
		},
	}

	complete := &cobra.Command{
		Use:   "complete",
		Short: "Complete today's standup",
		Long: `Report yesterday's completions, today's focus, and any blockers.

Example:
  sensai standup complete --today "Write report:3" --yesterday "Fix bike:2" --blocker "Waiting on plumber" --mood good`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStandupComplete(opts, cmd)
		},
	}
	complete.Flags().StringArrayVar(&opts.Yesterday, "yesterday", nil, "task completed yesterday, as \"title:points\"")
	complete.Flags().StringArrayVar(&opts.Today, "today", nil, "task to focus on today, as \"title:points\"")
	complete.Flags().StringArrayVar(&opts.Blockers, "blocker", nil, "blocker description")
	complete.Flags().StringVar(&opts.Mood, "mood", "", "how you're feeling")
	complete.Flags().StringVar(&opts.Notes, "notes", "", "free-form notes")

	skip := &cobra.Command{
		Use:           "skip",
		Short:         "Skip today's standup",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStandupSkip(opts, cmd)
		},
	}
	skip.Flags().StringVar(&opts.Reason, "reason", "", "why today is skipped")

	convert := &cobra.Command{
		Use:           "convert-blocker <blocker-id>",
		Short:         "Promote a blocker into a tracked task",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvertBlocker(opts, cmd, args[0])
		},
	}

	cmd.AddCommand(show, complete, skip, convert)
	return cmd
}

func runStandupShow(opts *StandupOptions, cmd *cobra.Command) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	standup, err := s.Ceremonies.Today(cmd.Context())
	if err != nil {
		return out.Fail("remote_failure", "could not fetch today's standup", err)
	}
	return out.Emit(standup, func(w io.Writer) { renderStandup(w, standup) })
}

func runStandupComplete(opts *StandupOptions, cmd *cobra.Command) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	req := remote.CompleteStandupRequest{
		CompletedYesterday: parseTasks(opts.Yesterday),
		FocusToday:         parseTasks(opts.Today),
		Mood:               opts.Mood,
		Notes:              opts.Notes,
	}
	for _, description := range opts.Blockers {
		req.Blockers = append(req.Blockers, entity.StandupBlocker{Description: description})
	}

	standup, err := s.Ceremonies.CompleteStandup(cmd.Context(), req)
	if err != nil {
		return out.Fail("standup_rejected", err.Error(), err)
	}
	return out.Emit(standup, func(w io.Writer) {
		renderStandup(w, standup)
		renderMessages(w, s.Feed.Messages())
	})
}

func runStandupSkip(opts *StandupOptions, cmd *cobra.Command) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	standup, err := s.Ceremonies.SkipStandup(cmd.Context(), opts.Reason)
	if err != nil {
		return out.Fail("standup_rejected", err.Error(), err)
	}
	return out.Emit(standup, func(w io.Writer) { renderStandup(w, standup) })
}

func runConvertBlocker(opts *StandupOptions, cmd *cobra.Command, blockerID string) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	standup, err := s.Ceremonies.ConvertBlocker(cmd.Context(), blockerID)
	if err != nil {
		return out.Fail("convert_rejected", err.Error(), err)
	}
	return out.Emit(standup, func(w io.Writer) { renderStandup(w, standup) })
}

// parseTasks parses "title:points" flag values. A missing or malformed
// points suffix defaults to 1.
func parseTasks(values []string) []entity.StandupTask {
	tasks := make([]entity.StandupTask, 0, len(values))
	for _, v := range values {
		title := v
		points := 1
		if idx := strings.LastIndex(v, ":"); idx > 0 {
			if n, ok := parsePoints(v[idx+1:]); ok {
				title = v[:idx]
				points = n
			}
		}
		tasks = append(tasks, entity.StandupTask{Title: title, Points: points})
	}
	return tasks
}

func parsePoints(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if s == "" {
		return 0, false
	}
	return n, true
}
