package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/lifesprint/sensai/internal/entity"
)

// CoachOptions holds flags for the coach subcommands.
type CoachOptions struct {
	*RootOptions
	History bool
	Action  string
	Reason  string
}

// NewCoachCommand creates the coach command group for interventions.
func NewCoachCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CoachOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Coaching interventions",
	}

	list := &cobra.Command{
		Use:           "list",
		Short:         "List active interventions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterventionList(opts, cmd)
		},
	}
	list.Flags().BoolVar(&opts.History, "history", false, "show acknowledged interventions instead")

	ack := &cobra.Command{
		Use:   "ack <intervention-id>",
		Short: "Acknowledge an intervention",
		Long: `Acknowledge, override, or defer an intervention.

Overriding requires a reason and is only allowed for high-urgency warnings:
  sensai coach ack int-42 --action override --reason "deadline is external"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterventionAck(opts, cmd, args[0])
		},
	}
	ack.Flags().StringVar(&opts.Action, "action", string(entity.ActionAcknowledge), "acknowledge | override | defer")
	ack.Flags().StringVar(&opts.Reason, "reason", "", "override reason")

	dismiss := &cobra.Command{
		Use:           "dismiss <intervention-id>",
		Short:         "Hide a nudge locally until the next fetch",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterventionDismiss(opts, cmd, args[0])
		},
	}

	cmd.AddCommand(list, ack, dismiss)
	return cmd
}

func runInterventionList(opts *CoachOptions, cmd *cobra.Command) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	if err := s.Refresh(cmd.Context()); err != nil {
		return out.Fail("remote_failure", "could not refresh interventions", err)
	}

	if opts.History {
		history := s.Interventions.History()
		return out.Emit(history, func(w io.Writer) { renderInterventions(w, "History", history) })
	}
	active := s.Interventions.Active()
	return out.Emit(active, func(w io.Writer) { renderInterventions(w, "Active", active) })
}

func runInterventionAck(opts *CoachOptions, cmd *cobra.Command, id string) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	if err := s.Refresh(cmd.Context()); err != nil {
		return out.Fail("remote_failure", "could not refresh interventions", err)
	}

	ack, err := s.Interventions.Acknowledge(cmd.Context(), id, entity.AckAction(opts.Action), opts.Reason)
	if err != nil {
		return out.Fail("ack_rejected", err.Error(), err)
	}
	return out.Emit(ack, func(w io.Writer) {
		renderInterventions(w, "Acknowledged", []entity.Intervention{ack})
	})
}

func runInterventionDismiss(opts *CoachOptions, cmd *cobra.Command, id string) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	if err := s.Refresh(cmd.Context()); err != nil {
		return out.Fail("remote_failure", "could not refresh interventions", err)
	}

	if err := s.Interventions.Dismiss(id); err != nil {
		return out.Fail("dismiss_rejected", err.Error(), err)
	}
	active := s.Interventions.Active()
	return out.Emit(active, func(w io.Writer) { renderInterventions(w, "Active", active) })
}
