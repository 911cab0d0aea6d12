package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/todolist/internal/msg"
	"github.com/roach88/todolist/internal/todo"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the list and record its owner",
		Long: `Initialize the list, recording the owner if one is given.

Existing entries and the id counter are left untouched, so init is safe to
run against a database that is already in use.

Example:
  todo init --owner alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ownerPtr *string
			if cmd.Flags().Changed("owner") {
				ownerPtr = &owner
			}

			return withSession(rootOpts, cmd, func(s *session, f *OutputFormatter) error {
				if err := s.engine.Instantiate(s.ctx, ownerPtr); err != nil {
					return err
				}
				return f.Success(instantiateView{msg.InstantiateResponse{
					Method: msg.MethodInstantiate,
					Owner:  ownerPtr,
				}})
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner of the list")

	return cmd
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Create a new entry",
		Long: `Create a new entry with status ToDo.

Examples:
  todo add "buy milk"
  todo add "file taxes" --priority High`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session, f *OutputFormatter) error {
				m := &msg.NewEntry{Description: args[0]}
				if cmd.Flags().Changed("priority") {
					p, err := todo.ParsePriority(priority)
					if err != nil {
						return err
					}
					m.Priority = &p
				}

				resp, err := s.handler.HandleExecute(s.ctx, msg.ExecuteMsg{NewEntry: m})
				if err != nil {
					return err
				}
				f.VerboseLog("created entry %d", resp.ID)
				return f.Success(executeView{resp})
			})
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority (None|Low|Medium|High)")

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var description, status, priority string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of an entry",
		Long: `Overwrite the given fields of an entry. Fields not given keep their
current value; with no flags the entry is returned unchanged.

Examples:
  todo update 3 --status Done
  todo update 3 --description "buy oat milk" --priority Low`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session, f *OutputFormatter) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				m := &msg.UpdateEntry{ID: id}
				if cmd.Flags().Changed("description") {
					m.Description = &description
				}
				if cmd.Flags().Changed("status") {
					st, err := todo.ParseStatus(status)
					if err != nil {
						return err
					}
					m.Status = &st
				}
				if cmd.Flags().Changed("priority") {
					p, err := todo.ParsePriority(priority)
					if err != nil {
						return err
					}
					m.Priority = &p
				}

				resp, err := s.handler.HandleExecute(s.ctx, msg.ExecuteMsg{UpdateEntry: m})
				if err != nil {
					return err
				}
				return f.Success(executeView{resp})
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "new status (ToDo|InProgress|Done|Cancelled)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "new priority (None|Low|Medium|High)")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Long: `Delete an entry. Its id is never reissued.

Example:
  todo delete 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session, f *OutputFormatter) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				resp, err := s.handler.HandleExecute(s.ctx, msg.ExecuteMsg{
					DeleteEntry: &msg.DeleteEntry{ID: id},
				})
				if err != nil {
					return err
				}
				return f.Success(executeView{resp})
			})
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session, f *OutputFormatter) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				e, err := s.engine.Get(s.ctx, id)
				if err != nil {
					return err
				}
				return f.Success(entryView{msg.NewEntryResponse(e)})
			})
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var startAfter uint64
	var limit uint32

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries in id order",
		Long: fmt.Sprintf(`List entries in ascending id order.

At most %d entries are returned when --limit is not given, and never more
than %d. Use --start-after with the last id of a page to fetch the next one.

Examples:
  todo list
  todo list --start-after 10 --limit 20`, todo.DefaultLimit, todo.MaxLimit),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := &msg.QueryList{}
			if cmd.Flags().Changed("start-after") {
				q.StartAfter = &startAfter
			}
			if cmd.Flags().Changed("limit") {
				q.Limit = &limit
			}

			return withSession(rootOpts, cmd, func(s *session, f *OutputFormatter) error {
				resp, err := s.handler.HandleQuery(s.ctx, msg.QueryMsg{QueryList: q})
				if err != nil {
					return err
				}
				list, ok := resp.(msg.ListResponse)
				if !ok {
					return fmt.Errorf("unexpected list response %T", resp)
				}
				return f.Success(listView{list})
			})
		},
	}

	cmd.Flags().Uint64Var(&startAfter, "start-after", 0, "only list ids greater than this")
	cmd.Flags().Uint32VarP(&limit, "limit", "n", todo.DefaultLimit, "maximum number of entries")

	return cmd
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the owner and the next id to be issued",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session, f *OutputFormatter) error {
				owner, ok, err := s.engine.Owner(s.ctx)
				if err != nil {
					return err
				}
				next, err := s.engine.PeekID(s.ctx)
				if err != nil {
					return err
				}

				v := infoView{
					Backend:  rootOpts.Backend,
					Database: rootOpts.Database,
					NextID:   next,
				}
				if ok {
					v.Owner = &owner
				}
				return f.Success(v)
			})
		},
	}
}

// parseID parses an entry id argument.
func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, todo.NewInvalidInputError(fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}
