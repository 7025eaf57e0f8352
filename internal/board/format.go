package board

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/burrow/pkg/taskboard"
)

// FormatTable writes todos as a formatted table to the provided writer.
// Columns: ID (truncated), STATE, READ, AGE, and TITLE (truncated).
// Returns the number of todos formatted.
func FormatTable(w io.Writer, todos []*taskboard.Todo) int {
	if len(todos) == 0 {
		fmt.Fprintf(w, "No todos found\n")
		return 0
	}

	// Print header row
	fmt.Fprintf(w, "%-10s %-6s %-7s %-8s %s\n",
		"ID", "STATE", "READ", "AGE", "TITLE")
	fmt.Fprintf(w, "%-10s %-6s %-7s %-8s %s\n",
		"----------", "------", "-------", "--------", "----------------------------------------")

	// Print data rows
	for _, todo := range todos {
		fmt.Fprintf(w, "%-10s %-6s %-7s %-8s %s\n",
			formatID(todo.ID),
			formatState(todo.Completed),
			formatRead(todo.Read),
			formatTimestamp(todo.CreatedAtMs),
			formatTitle(todo.Title),
		)
	}

	// Print count
	countMsg := "todo"
	if len(todos) != 1 {
		countMsg = "todos"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(todos), countMsg)

	return len(todos)
}

// FormatJSONL writes todos as line-delimited JSON (JSONL) to the provided
// writer, one todo per line. This format is ideal for processing with jq.
func FormatJSONL(w io.Writer, todos []*taskboard.Todo) error {
	for _, todo := range todos {
		data, err := json.Marshal(todo)
		if err != nil {
			return fmt.Errorf("failed to marshal todo to JSON: %w", err)
		}

		_, err = fmt.Fprintf(w, "%s\n", string(data))
		if err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// FormatSingleJSON writes a single todo as pretty-printed JSON to the
// provided writer. Used by the get command.
func FormatSingleJSON(w io.Writer, todo *taskboard.Todo) error {
	data, err := json.MarshalIndent(todo, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal todo to JSON: %w", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	fmt.Fprintln(w)

	return nil
}

// formatID truncates a todo ID to first 8 characters for compact display.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatState renders the completion flag for table display.
func formatState(completed bool) string {
	if completed {
		return "done"
	}
	return "open"
}

// formatRead renders the read flag for table display.
func formatRead(read bool) string {
	if read {
		return "read"
	}
	return "unread"
}

// formatTitle truncates the title to its first line, max 40 characters.
// Empty titles never reach storage, but render "-" just in case.
func formatTitle(title string) string {
	if title == "" {
		return "-"
	}

	lines := strings.Split(title, "\n")
	var firstLine string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			firstLine = trimmed
			break
		}
	}

	if firstLine == "" {
		return "-"
	}

	if len(firstLine) > 40 {
		return firstLine[:37] + "..."
	}

	return firstLine
}

// formatTimestamp formats a Unix timestamp in milliseconds as relative time
// like "2m ago" or "1h ago".
func formatTimestamp(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	t := time.Unix(timestampMs/1000, (timestampMs%1000)*1000000)
	diff := time.Since(t)

	if diff < time.Minute {
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
