package taskboard

import (
	"fmt"
	"strconv"
)

// Serialization helpers for converting between Go structs and Redis hashes
//
// Redis stores data as string-to-string maps (hashes). Numeric and boolean
// fields are stringified into single hash fields, which keeps every field
// individually readable with HGET while staying round-trip safe.

// UserToHash converts a User struct to a Redis hash format.
func UserToHash(u *User) map[string]interface{} {
	return map[string]interface{}{
		"id":            u.ID,
		"username":      u.Username,
		"password_hash": u.PasswordHash,
		"created_at_ms": u.CreatedAtMs,
	}
}

// HashToUser converts a Redis hash to a User struct.
func HashToUser(hash map[string]string) (*User, error) {
	createdAtMs, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}

	user := &User{
		ID:           hash["id"],
		Username:     hash["username"],
		PasswordHash: hash["password_hash"],
		CreatedAtMs:  createdAtMs,
	}

	return user, nil
}

// TodoToHash converts a Todo struct to a Redis hash format.
func TodoToHash(t *Todo) map[string]interface{} {
	return map[string]interface{}{
		"id":            t.ID,
		"title":         t.Title,
		"description":   t.Description,
		"read":          strconv.FormatBool(t.Read),
		"completed":     strconv.FormatBool(t.Completed),
		"owner_id":      t.OwnerID,
		"created_at_ms": t.CreatedAtMs,
		"updated_at_ms": t.UpdatedAtMs,
	}
}

// HashToTodo converts a Redis hash to a Todo struct.
func HashToTodo(hash map[string]string) (*Todo, error) {
	read, err := strconv.ParseBool(hash["read"])
	if err != nil {
		return nil, fmt.Errorf("invalid read field: %w", err)
	}

	completed, err := strconv.ParseBool(hash["completed"])
	if err != nil {
		return nil, fmt.Errorf("invalid completed field: %w", err)
	}

	createdAtMs, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}

	updatedAtMs, err := strconv.ParseInt(hash["updated_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at_ms field: %w", err)
	}

	todo := &Todo{
		ID:          hash["id"],
		Title:       hash["title"],
		Description: hash["description"],
		Read:        read,
		Completed:   completed,
		OwnerID:     hash["owner_id"],
		CreatedAtMs: createdAtMs,
		UpdatedAtMs: updatedAtMs,
	}

	return todo, nil
}
