package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/burrow/internal/board"
	"github.com/dyluth/burrow/internal/printer"
	"github.com/dyluth/burrow/internal/resolver"
)

var getUser string

var getCmd = &cobra.Command{
	Use:   "get TODO_ID",
	Short: "Show a single todo",
	Long: `Show complete details of a single todo as pretty-printed JSON.

TODO_ID may be a full UUID or a unique prefix of at least 6 characters.

Examples:
  # Get by full UUID
  burrow get 550e8400-e29b-41d4-a716-446655440000 --user alice

  # Get by short prefix
  burrow get 550e84 --user alice`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getUser, "user", "u", "", "Username owning the todo (required)")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := resolveUser(ctx, store, cmd, getUser)
	if err != nil {
		return err
	}

	todoID, err := resolver.ResolveTodoID(ctx, store, user.ID, args[0])
	if err != nil {
		if resolver.IsNotFoundError(err) {
			return printer.Error(
				fmt.Sprintf("no todo found matching '%s'", args[0]),
				"The specified todo does not exist for this user.",
				[]string{fmt.Sprintf("List todos:\n  burrow ls --user %s", getUser)},
			)
		}
		if resolver.IsAmbiguousError(err) {
			fmt.Fprintln(os.Stderr, resolver.FormatAmbiguousError(err.(*resolver.AmbiguousError)))
			return fmt.Errorf("ambiguous todo ID")
		}
		return err
	}

	if err := board.GetTodo(ctx, store, user.ID, todoID, os.Stdout); err != nil {
		return fmt.Errorf("failed to get todo: %w", err)
	}

	return nil
}
