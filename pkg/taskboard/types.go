// Package taskboard provides type-safe Go definitions and Redis schema patterns
// for Burrow's record store. The taskboard is where all Burrow components
// (HTTP server, CLI) interact via well-defined data structures stored in Redis.
//
// Users and todos are stored as Redis hashes keyed by UUID. Every todo is
// owned by exactly one user; owner-scoped reads make a todo unreachable
// through any other user's identity.
package taskboard

import (
	"fmt"

	"github.com/google/uuid"
)

// User represents a registered account. The password hash never leaves the
// store layer in JSON form.
type User struct {
	ID           string `json:"id"`            // UUID - unique identifier for this user
	Username     string `json:"username"`      // Unique, case-sensitive login name
	PasswordHash string `json:"-"`             // bcrypt hash, never serialized
	CreatedAtMs  int64  `json:"created_at_ms"` // Unix timestamp in milliseconds when the user registered
}

// Todo represents a single task item owned by one user.
// The two boolean flags are independent - completing a todo does not mark
// it read, and neither transition is restricted.
type Todo struct {
	ID          string `json:"id"`            // UUID - unique identifier for this todo
	Title       string `json:"title"`         // Required, non-empty
	Description string `json:"description"`   // Optional, defaults to empty
	Read        bool   `json:"read"`          // Set via MarkTodoRead, defaults to false
	Completed   bool   `json:"completed"`     // Defaults to false
	OwnerID     string `json:"owner_id"`      // UUID of the owning user, set at creation, never reassigned
	CreatedAtMs int64  `json:"created_at_ms"` // Unix timestamp in milliseconds when the todo was created
	UpdatedAtMs int64  `json:"updated_at_ms"` // Unix timestamp in milliseconds of the last mutation
}

// TodoEvent is published on the todo events channel after every successful
// todo mutation. Action describes what happened to the embedded todo.
type TodoEvent struct {
	Action TodoAction `json:"action"`
	Todo   Todo       `json:"todo"`
}

// TodoAction identifies the mutation that produced a TodoEvent.
type TodoAction string

const (
	// TodoActionCreated indicates the todo was just created
	TodoActionCreated TodoAction = "created"

	// TodoActionUpdated indicates one or more fields changed (including read)
	TodoActionUpdated TodoAction = "updated"

	// TodoActionDeleted indicates the todo was removed
	TodoActionDeleted TodoAction = "deleted"
)

// Validate checks if the User has valid field values.
// Returns an error if any validation fails.
func (u *User) Validate() error {
	if !isValidUUID(u.ID) {
		return fmt.Errorf("invalid user ID: not a valid UUID")
	}

	if u.Username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if u.PasswordHash == "" {
		return fmt.Errorf("password hash cannot be empty")
	}

	return nil
}

// Validate checks if the Todo has valid field values.
func (t *Todo) Validate() error {
	if !isValidUUID(t.ID) {
		return fmt.Errorf("invalid todo ID: not a valid UUID")
	}

	if t.Title == "" {
		return fmt.Errorf("todo title cannot be empty")
	}

	if !isValidUUID(t.OwnerID) {
		return fmt.Errorf("invalid owner ID: not a valid UUID")
	}

	return nil
}

// Validate checks if the TodoAction is a valid enum value.
func (a TodoAction) Validate() error {
	switch a {
	case TodoActionCreated, TodoActionUpdated, TodoActionDeleted:
		return nil
	default:
		return fmt.Errorf("unknown todo action: %q", a)
	}
}

// isValidUUID checks if a string is a valid UUID format.
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
