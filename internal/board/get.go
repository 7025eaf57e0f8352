package board

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/dyluth/burrow/pkg/taskboard"
)

// GetTodo retrieves a single todo by (owner, id) and writes it as
// pretty-printed JSON to the writer. Returns an error if the todo ID is
// invalid or the todo does not exist for this owner.
func GetTodo(ctx context.Context, store *taskboard.Client, ownerID, todoID string, w io.Writer) error {
	if _, err := uuid.Parse(todoID); err != nil {
		return fmt.Errorf("invalid todo ID format: must be a valid UUID")
	}

	todo, err := store.GetTodo(ctx, ownerID, todoID)
	if err != nil {
		if taskboard.IsNotFound(err) {
			return &TodoNotFoundError{TodoID: todoID}
		}
		return fmt.Errorf("failed to fetch todo: %w", err)
	}

	if err := FormatSingleJSON(w, todo); err != nil {
		return fmt.Errorf("failed to format todo: %w", err)
	}

	return nil
}

// TodoNotFoundError represents a specific "todo not found" error.
// This allows callers to distinguish not-found errors from other failures.
type TodoNotFoundError struct {
	TodoID string
}

func (e *TodoNotFoundError) Error() string {
	return fmt.Sprintf("todo with ID '%s' not found", e.TodoID)
}

// IsNotFound returns true if the error is a TodoNotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*TodoNotFoundError)
	return ok
}
