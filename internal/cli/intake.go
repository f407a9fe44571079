package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lifesprint/sensai/internal/remote"
)

// IntakeOptions holds flags for the intake command.
type IntakeOptions struct {
	*RootOptions
	Type string
}

// NewIntakeCommand creates the intake command.
func NewIntakeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IntakeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "intake <text...>",
		Short: "Turn free text into a structured draft",
		Long: `Send free text through the backend's structuring pipeline and show the
draft it proposes. Nothing is created until the draft is approved.

Example:
  sensai intake "fix the bike this weekend, maybe 3 points"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntake(opts, cmd, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&opts.Type, "type", string(remote.DraftTask), "draft type (task|challenge|event|bill|note)")

	return cmd
}

func runIntake(opts *IntakeOptions, cmd *cobra.Command, content string) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	draft, err := s.Intake(cmd.Context(), remote.IntakeRequest{
		Type:    remote.DraftType(opts.Type),
		Content: content,
	})
	if err != nil {
		return out.Fail("remote_failure", "intake failed", err)
	}
	return out.Emit(draft, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s\n", styleTitle.Render("Draft"), styleMuted.Render("("+draft.ID+")"))
		fmt.Fprintf(w, "  type:   %s\n", draft.Type)
		fmt.Fprintf(w, "  title:  %s\n", draft.Title)
		if draft.Points > 0 {
			fmt.Fprintf(w, "  points: %d\n", draft.Points)
		}
	})
}
