package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/lifesprint/sensai/internal/entity"
	"github.com/lifesprint/sensai/internal/remote"
	"github.com/lifesprint/sensai/internal/session"
)

// SprintOptions holds flags for the sprint ceremony subcommands.
type SprintOptions struct {
	*RootOptions
	TaskIDs   []string
	Notes     string
	Worked    []string
	Blocked   []string
	Learnings []string
}

// NewSprintCommand creates the sprint command group. Each subcommand starts
// its ceremony when needed and then completes it, so a single invocation
// walks the full not-started to completed path.
func NewSprintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SprintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Sprint ceremonies",
	}

	plan := &cobra.Command{
		Use:   "plan",
		Short: "Run sprint planning",
		Long: `Start sprint planning and commit the selected tasks.

Example:
  sensai sprint plan --task t1 --task t2 --notes "light week"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanning(opts, cmd)
		},
	}
	plan.Flags().StringArrayVar(&opts.TaskIDs, "task", nil, "task ID to commit (repeatable)")
	plan.Flags().StringVar(&opts.Notes, "notes", "", "planning notes")

	review := &cobra.Command{
		Use:           "review",
		Short:         "Run sprint review",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(opts, cmd)
		},
	}
	review.Flags().StringVar(&opts.Notes, "notes", "", "review notes")

	retro := &cobra.Command{
		Use:           "retro",
		Short:         "Run sprint retrospective",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRetro(opts, cmd)
		},
	}
	retro.Flags().StringArrayVar(&opts.Worked, "worked", nil, "something that worked (repeatable)")
	retro.Flags().StringArrayVar(&opts.Blocked, "blocked", nil, "something that blocked (repeatable)")
	retro.Flags().StringArrayVar(&opts.Learnings, "learning", nil, "a learning to carry forward (repeatable)")

	status := &cobra.Command{
		Use:           "status",
		Short:         "Show ceremony progress",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCeremonyStatus(opts, cmd)
		},
	}

	cmd.AddCommand(plan, review, retro, status)
	return cmd
}

func runPlanning(opts *SprintOptions, cmd *cobra.Command) error {
	return runCeremony(opts, cmd, entity.CeremonyPlanning, func(s *session.Session) (entity.SprintCeremony, error) {
		return s.Ceremonies.CompletePlanning(cmd.Context(), remote.PlanningRequest{
			SelectedTaskIDs: opts.TaskIDs,
			Notes:           opts.Notes,
		})
	})
}

func runReview(opts *SprintOptions, cmd *cobra.Command) error {
	return runCeremony(opts, cmd, entity.CeremonyReview, func(s *session.Session) (entity.SprintCeremony, error) {
		return s.Ceremonies.CompleteReview(cmd.Context(), remote.ReviewRequest{Notes: opts.Notes})
	})
}

func runRetro(opts *SprintOptions, cmd *cobra.Command) error {
	return runCeremony(opts, cmd, entity.CeremonyRetrospective, func(s *session.Session) (entity.SprintCeremony, error) {
		return s.Ceremonies.CompleteRetrospective(cmd.Context(), remote.RetrospectiveRequest{
			Worked:    opts.Worked,
			Blocked:   opts.Blocked,
			Learnings: opts.Learnings,
		})
	})
}

// runCeremony starts the ceremony if it is not already in progress, then
// completes it and prints the canonical record plus any synthesized
// celebration.
func runCeremony(opts *SprintOptions, cmd *cobra.Command, ceremonyType entity.CeremonyType, complete func(*session.Session) (entity.SprintCeremony, error)) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	if _, err := s.Ceremonies.Start(cmd.Context(), ceremonyType); err != nil {
		return out.Fail("ceremony_rejected", err.Error(), err)
	}

	ceremony, err := complete(s)
	if err != nil {
		return out.Fail("ceremony_rejected", err.Error(), err)
	}
	return out.Emit(ceremony, func(w io.Writer) {
		renderCeremony(w, ceremony)
		renderMessages(w, s.Feed.Messages())
	})
}

func runCeremonyStatus(opts *SprintOptions, cmd *cobra.Command) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	ceremonies := s.Ceremonies.List()
	return out.Emit(ceremonies, func(w io.Writer) {
		for _, c := range ceremonies {
			renderCeremony(w, c)
		}
	})
}
