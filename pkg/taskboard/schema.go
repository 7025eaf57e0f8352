package taskboard

import "fmt"

// Redis key pattern helpers
//
// All Burrow keys live under a single "burrow:" prefix so a shared Redis
// server stays easy to inspect and clean up.
//
// Key pattern: burrow:{entity}:{id}
// Channel pattern: burrow:{event_type}_events

// UserKey returns the Redis key for a user record.
// Pattern: burrow:user:{user_id}
func UserKey(userID string) string {
	return fmt.Sprintf("burrow:user:%s", userID)
}

// UsernameKey returns the Redis key for the username uniqueness index.
// The value is the owning user's UUID.
// Pattern: burrow:username:{username}
func UsernameKey(username string) string {
	return fmt.Sprintf("burrow:username:%s", username)
}

// TodoKey returns the Redis key for a todo record.
// Pattern: burrow:todo:{todo_id}
func TodoKey(todoID string) string {
	return fmt.Sprintf("burrow:todo:%s", todoID)
}

// OwnerTodosKey returns the Redis key for a user's todo index ZSET.
// Members are todo UUIDs scored by creation time in milliseconds, which
// gives List its creation-order guarantee.
// Pattern: burrow:user:{user_id}:todos
func OwnerTodosKey(userID string) string {
	return fmt.Sprintf("burrow:user:%s:todos", userID)
}

// TodoEventsChannel returns the Pub/Sub channel name for todo events.
// Pattern: burrow:todo_events
func TodoEventsChannel() string {
	return "burrow:todo_events"
}
