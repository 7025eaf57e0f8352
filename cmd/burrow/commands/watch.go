package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/burrow/internal/printer"
	"github.com/dyluth/burrow/internal/watch"
)

var watchOutputFormat string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live todo events",
	Long: `Stream todo events from the store's Pub/Sub channel as they occur.

Shows every create, update, and delete across all users. Runs until
interrupted with Ctrl-C.

Output Formats:
  default - Human-readable output with timestamps
  json    - Line-delimited JSON for programmatic processing

Examples:
  # Watch all todo activity
  burrow watch

  # Export events as JSON
  burrow watch --output=json > events.jsonl`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var outputFormat watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		outputFormat = watch.OutputFormatDefault
	case "json":
		outputFormat = watch.OutputFormatJSON
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if outputFormat == watch.OutputFormatDefault {
		printer.Info("Watching todo events (Ctrl-C to stop)...\n")
	}

	return watch.StreamEvents(ctx, store, outputFormat, os.Stdout)
}
