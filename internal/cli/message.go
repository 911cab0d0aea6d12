package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// handlerFunc is one of the msg.Handler raw entry points.
type handlerFunc func(ctx context.Context, raw []byte) ([]byte, error)

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <json>",
		Short: "Send a raw execute message",
		Long: `Validate and apply a raw execute message. Pass "-" to read it from stdin.

Examples:
  todo exec '{"new_entry":{"description":"buy milk","priority":"High"}}'
  todo exec '{"update_entry":{"id":1,"status":"Done"}}'
  todo exec '{"delete_entry":{"id":1}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMessage(rootOpts, cmd, args[0], func(s *session) handlerFunc {
				return s.handler.Execute
			})
		},
	}
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <json>",
		Short: "Send a raw query message",
		Long: `Validate and answer a raw query message. Pass "-" to read it from stdin.

Examples:
  todo query '{"query_entry":{"id":1}}'
  todo query '{"query_list":{"start_after":10,"limit":5}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMessage(rootOpts, cmd, args[0], func(s *session) handlerFunc {
				return s.handler.Query
			})
		},
	}
}

func runMessage(opts *RootOptions, cmd *cobra.Command, arg string, pick func(*session) handlerFunc) error {
	raw := []byte(arg)
	if arg == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read message from stdin", err)
		}
		raw = b
	}

	return withSession(opts, cmd, func(s *session, f *OutputFormatter) error {
		out, err := pick(s)(s.ctx, raw)
		if err != nil {
			return err
		}
		return f.Success(rawView{json: out})
	})
}
