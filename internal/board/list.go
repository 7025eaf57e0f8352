// Package board renders a user's todos for the burrow CLI.
package board

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dyluth/burrow/pkg/taskboard"
)

// OutputFormat specifies how to format the todo list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format with truncated titles
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete todos as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// FilterCriteria defines filtering options for the ls command.
// All filters are ANDed together.
type FilterCriteria struct {
	SinceTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64  // Unix timestamp in milliseconds, 0 = no filter
	TitleGlob        string // Glob pattern for the todo title, empty = no filter
	UnreadOnly       bool   // Only todos not yet marked read
	OpenOnly         bool   // Only todos not yet completed
}

// matchesFilter returns true if the todo matches all filter criteria.
func (fc *FilterCriteria) matchesFilter(todo *taskboard.Todo) bool {
	if fc.SinceTimestampMs > 0 && todo.CreatedAtMs < fc.SinceTimestampMs {
		return false
	}
	if fc.UntilTimestampMs > 0 && todo.CreatedAtMs > fc.UntilTimestampMs {
		return false
	}

	if fc.TitleGlob != "" {
		matched, err := filepath.Match(fc.TitleGlob, todo.Title)
		if err != nil || !matched {
			return false
		}
	}

	if fc.UnreadOnly && todo.Read {
		return false
	}
	if fc.OpenOnly && todo.Completed {
		return false
	}

	return true
}

// ListTodos retrieves a user's todos and writes them to the provided writer,
// newest first. Applies filter criteria if provided.
func ListTodos(ctx context.Context, store *taskboard.Client, ownerID string, format OutputFormat, filters *FilterCriteria, w io.Writer) error {
	all, err := store.ListTodos(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to list todos: %w", err)
	}

	todos := make([]*taskboard.Todo, 0, len(all))
	for _, todo := range all {
		if filters != nil && !filters.matchesFilter(todo) {
			continue
		}
		todos = append(todos, todo)
	}

	switch format {
	case OutputFormatDefault:
		FormatTable(w, todos)
	case OutputFormatJSONL:
		if err := FormatJSONL(w, todos); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}
