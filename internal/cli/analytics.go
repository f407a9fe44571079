package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// AnalyticsOptions holds flags for the analytics command.
type AnalyticsOptions struct {
	*RootOptions
	Period string
}

// NewAnalyticsCommand creates the analytics command.
func NewAnalyticsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyticsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "analytics",
		Short:         "Show trailing completion analytics",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalytics(opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Period, "period", "week", "reporting period (week|sprint|month)")

	return cmd
}

func runAnalytics(opts *AnalyticsOptions, cmd *cobra.Command) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	report, err := s.Analytics(cmd.Context(), opts.Period)
	if err != nil {
		return out.Fail("remote_failure", "could not fetch analytics", err)
	}
	return out.Emit(report, func(w io.Writer) {
		fmt.Fprintln(w, styleTitle.Render("Analytics: "+report.Period))
		fmt.Fprintf(w, "  tasks completed:  %d\n", report.CompletedTasks)
		fmt.Fprintf(w, "  points completed: %d\n", report.CompletedPoints)
		fmt.Fprintf(w, "  completion rate:  %.0f%%\n", report.CompletionRate*100)
		if report.MoodTrend != "" {
			fmt.Fprintf(w, "  mood trend:       %s\n", report.MoodTrend)
		}
	})
}
