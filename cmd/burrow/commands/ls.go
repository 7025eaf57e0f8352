package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/burrow/internal/board"
	"github.com/dyluth/burrow/internal/printer"
	"github.com/dyluth/burrow/internal/timespec"
)

var (
	lsUser         string
	lsOutputFormat string
	lsUnreadOnly   bool
	lsOpenOnly     bool
	lsTitleGlob    string
	lsSince        string
	lsUntil        string
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List a user's todos",
	Long: `List a user's todos, newest first.

Output Formats:
  default - Human-readable table with ID, state, read flag, age, and title
  jsonl   - Line-delimited JSON of complete todo objects

Examples:
  # List all of alice's todos
  burrow ls --user alice

  # Only open, unread todos
  burrow ls --user alice --unread --open

  # Todos created in the last hour
  burrow ls --user alice --since 1h

  # Export as JSONL for scripting
  burrow ls --user alice --output=jsonl | jq -r '.id'`,
	RunE: runLs,
}

func init() {
	lsCmd.Flags().StringVarP(&lsUser, "user", "u", "", "Username whose todos to list (required)")
	lsCmd.Flags().StringVarP(&lsOutputFormat, "output", "o", "default", "Output format (default or jsonl)")
	lsCmd.Flags().BoolVar(&lsUnreadOnly, "unread", false, "Only todos not yet marked read")
	lsCmd.Flags().BoolVar(&lsOpenOnly, "open", false, "Only todos not yet completed")
	lsCmd.Flags().StringVar(&lsTitleGlob, "title", "", "Glob pattern to match against todo titles")
	lsCmd.Flags().StringVar(&lsSince, "since", "", "Only todos created after this time (duration like '1h' or RFC3339)")
	lsCmd.Flags().StringVar(&lsUntil, "until", "", "Only todos created before this time (duration like '1h' or RFC3339)")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var outputFormat board.OutputFormat
	switch lsOutputFormat {
	case "default":
		outputFormat = board.OutputFormatDefault
	case "jsonl":
		outputFormat = board.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", lsOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	store, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := resolveUser(ctx, store, cmd, lsUser)
	if err != nil {
		return err
	}

	sinceMS, untilMS, err := timespec.ParseRange(lsSince, lsUntil)
	if err != nil {
		return printer.Error(
			"invalid time range",
			fmt.Sprintf("Error: %v", err),
			[]string{"Use a duration like '1h30m' or an RFC3339 timestamp."},
		)
	}

	filters := &board.FilterCriteria{
		SinceTimestampMs: sinceMS,
		UntilTimestampMs: untilMS,
		TitleGlob:        lsTitleGlob,
		UnreadOnly:       lsUnreadOnly,
		OpenOnly:         lsOpenOnly,
	}

	if err := board.ListTodos(ctx, store, user.ID, outputFormat, filters, os.Stdout); err != nil {
		return fmt.Errorf("failed to list todos: %w", err)
	}

	return nil
}
