package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/lifesprint/sensai/internal/cache"
	"github.com/lifesprint/sensai/internal/entity"
)

// WheelOptions holds flags for the wheel subcommands.
type WheelOptions struct {
	*RootOptions
	Title  string
	Points int
}

// NewWheelCommand creates the life-wheel command group.
func NewWheelCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WheelOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "wheel",
		Short: "Life-wheel balance",
	}

	show := &cobra.Command{
		Use:           "show",
		Short:         "Show the current life-wheel balance",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWheelShow(opts, cmd)
		},
	}

	recover := &cobra.Command{
		Use:           "recover <dimension>",
		Short:         "Schedule a recovery task for a neglected dimension",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWheelRecover(opts, cmd, args[0])
		},
	}
	recover.Flags().StringVar(&opts.Title, "title", "", "task title (required)")
	recover.Flags().IntVar(&opts.Points, "points", 1, "story points")
	_ = recover.MarkFlagRequired("title")

	cmd.AddCommand(show, recover)
	return cmd
}

func runWheelShow(opts *WheelOptions, cmd *cobra.Command) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	if err := s.Refresh(cmd.Context()); err != nil {
		return out.Fail("remote_failure", "could not refresh life wheel", err)
	}
	wheel, _ := cache.GetAs[entity.LifeWheelMetrics](s.Cache, entity.KindLifeWheel)
	return out.Emit(wheel, func(w io.Writer) { renderWheel(w, wheel) })
}

func runWheelRecover(opts *WheelOptions, cmd *cobra.Command, dimension string) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	wheel, err := s.AddRecoveryTask(cmd.Context(), entity.RecoveryTask{
		Title:     opts.Title,
		Points:    opts.Points,
		Dimension: dimension,
	})
	if err != nil {
		return out.Fail("remote_failure", "could not add recovery task", err)
	}
	return out.Emit(wheel, func(w io.Writer) {
		renderWheel(w, wheel)
		renderMessages(w, s.Feed.Messages())
	})
}
