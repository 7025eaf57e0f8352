// Package resolver resolves short todo-ID prefixes to full UUIDs for the CLI.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyluth/burrow/pkg/taskboard"
)

// MinShortIDLength is the minimum required length for short ID prefixes.
// Set to 6 characters to balance usability with collision avoidance.
const MinShortIDLength = 6

// ResolveTodoID resolves a short ID prefix to a full todo UUID, scoped to
// the given owner. Returns the full UUID if exactly one of the owner's
// todos matches.
//
// The function handles three cases:
// 1. Input is already a full UUID (36 chars, 4 hyphens) - validates existence
// 2. Input is too short (< 6 chars) - returns validation error
// 3. Input is a short prefix - scans for matches and returns unique result
func ResolveTodoID(ctx context.Context, store *taskboard.Client, ownerID, shortID string) (string, error) {
	// If input is already a full UUID, verify it exists for this owner
	if len(shortID) == 36 && strings.Count(shortID, "-") == 4 {
		_, err := store.GetTodo(ctx, ownerID, shortID)
		if err != nil {
			if taskboard.IsNotFound(err) {
				return "", &NotFoundError{ShortID: shortID}
			}
			return "", fmt.Errorf("failed to verify todo existence: %w", err)
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	// Scan for matching IDs, then keep only the ones this owner can see
	candidates, err := store.ScanTodoIDs(ctx, shortID)
	if err != nil {
		return "", fmt.Errorf("failed to search for todo: %w", err)
	}

	var matches []string
	for _, id := range candidates {
		if _, err := store.GetTodo(ctx, ownerID, id); err != nil {
			if taskboard.IsNotFound(err) {
				continue
			}
			return "", fmt.Errorf("failed to check todo ownership: %w", err)
		}
		matches = append(matches, id)
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no todos matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no todos found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple todos matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d todos", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError creates a user-friendly message for ambiguous short
// IDs, listing up to 10 matching UUIDs.
func FormatAmbiguousError(err *AmbiguousError) string {
	msg := fmt.Sprintf("Error: ambiguous short ID '%s' matches %d todos:\n", err.ShortID, len(err.Matches))

	displayCount := len(err.Matches)
	if displayCount > 10 {
		displayCount = 10
	}

	for i := 0; i < displayCount; i++ {
		msg += fmt.Sprintf("  %s\n", err.Matches[i])
	}

	if len(err.Matches) > 10 {
		msg += fmt.Sprintf("  ...and %d more\n", len(err.Matches)-10)
	}

	msg += "\nUse a longer prefix to uniquely identify the todo."
	return msg
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
