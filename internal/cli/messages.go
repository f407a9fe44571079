package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// MessagesOptions holds flags for the messages command.
type MessagesOptions struct {
	*RootOptions
	MarkRead bool
}

// NewMessagesCommand creates the messages command.
func NewMessagesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MessagesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "messages",
		Short:         "Show the coach message feed",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMessages(opts, cmd)
		},
	}
	cmd.Flags().BoolVar(&opts.MarkRead, "mark-read", false, "mark everything read after showing")

	return cmd
}

func runMessages(opts *MessagesOptions, cmd *cobra.Command) error {
	s, cleanup, err := buildSession(opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()
	out := formatter(opts.RootOptions, cmd)

	// Open rather than Refresh: showing the feed counts as opening the
	// app, which synthesizes the greeting.
	if _, err := s.Open(cmd.Context()); err != nil {
		return out.Fail("remote_failure", "could not refresh messages", err)
	}

	messages := s.Feed.Messages()
	unread := s.Feed.UnreadCount()
	if opts.MarkRead {
		s.Feed.MarkAllRead()
	}

	return out.Emit(messages, func(w io.Writer) {
		if unread > 0 {
			fmt.Fprintln(w, styleUnread.Render(fmt.Sprintf("%d unread", unread)))
		}
		renderMessages(w, messages)
	})
}
