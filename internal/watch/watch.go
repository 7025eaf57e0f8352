// Package watch streams todo mutation events for the burrow CLI.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dyluth/burrow/pkg/taskboard"
)

// OutputFormat specifies how to render streamed events.
type OutputFormat string

const (
	// OutputFormatDefault is human-readable output with timestamps
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON is line-delimited JSON for programmatic processing
	OutputFormatJSON OutputFormat = "json"
)

// StreamEvents subscribes to the todo events channel and writes each event
// to w as it arrives. Blocks until the context is cancelled or the
// subscription's event channel closes. Unmarshal errors from the
// subscription are reported to stderr and skipped.
func StreamEvents(ctx context.Context, store *taskboard.Client, format OutputFormat, w io.Writer) error {
	sub, err := store.SubscribeTodoEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to todo events: %w", err)
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case subErr, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "⚠️  Skipping malformed event: %v\n", subErr)

		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := writeEvent(w, event, format); err != nil {
				return err
			}
		}
	}
}

func writeEvent(w io.Writer, event *taskboard.TodoEvent, format OutputFormat) error {
	switch format {
	case OutputFormatJSON:
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", string(data))
		return err
	default:
		_, err := fmt.Fprintln(w, FormatEvent(event, time.Now()))
		return err
	}
}

// FormatEvent renders a single event as a human-readable line.
func FormatEvent(event *taskboard.TodoEvent, now time.Time) string {
	emoji := "•"
	switch event.Action {
	case taskboard.TodoActionCreated:
		emoji = "✚"
	case taskboard.TodoActionUpdated:
		emoji = "✎"
	case taskboard.TodoActionDeleted:
		emoji = "✖"
	}

	title := event.Todo.Title
	if len(title) > 40 {
		title = title[:37] + "..."
	}

	return fmt.Sprintf("[%s] %s %s %s %q",
		now.Format("15:04:05"),
		emoji,
		event.Action,
		shortID(event.Todo.ID),
		title,
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
