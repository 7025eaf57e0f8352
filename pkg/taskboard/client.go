package taskboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUsernameTaken is returned by CreateUser when the username index
// already points at another user.
var ErrUsernameTaken = errors.New("username already taken")

// Client provides Redis operations for the taskboard.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new taskboard client.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
func NewClient(redisOpts *redis.Options) *Client {
	return &Client{
		rdb: redis.NewClient(redisOpts),
	}
}

// Close closes the Redis connection. Implements io.Closer.
// After calling Close(), the client should not be used.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
// Returns an error if Redis is not reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// RedisClient exposes the underlying Redis client for SCAN-based tooling
// (short-ID resolution in the CLI). Prefer the typed methods for everything else.
func (c *Client) RedisClient() *redis.Client {
	return c.rdb
}

// CreateUser writes a user to Redis after claiming the username index.
// Returns ErrUsernameTaken if another user already holds the username.
// Usernames are case-sensitive: "Alice" and "alice" are distinct accounts.
func (c *Client) CreateUser(ctx context.Context, u *User) error {
	// Validate user
	if err := u.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	// Claim the username index first; SETNX makes the uniqueness check atomic
	claimed, err := c.rdb.SetNX(ctx, UsernameKey(u.Username), u.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim username index: %w", err)
	}
	if !claimed {
		return ErrUsernameTaken
	}

	// Write the user record
	key := UserKey(u.ID)
	if err := c.rdb.HSet(ctx, key, UserToHash(u)).Err(); err != nil {
		// Release the index so the username is not burned by a half-write
		c.rdb.Del(ctx, UsernameKey(u.Username))
		return fmt.Errorf("failed to write user to Redis: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID.
// Returns (nil, redis.Nil) if the user doesn't exist.
// Use IsNotFound() to check for not-found errors.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	key := UserKey(userID)

	// Read hash from Redis
	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read user from Redis: %w", err)
	}

	// Check if key exists (HGetAll returns empty map for non-existent keys)
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	user, err := HashToUser(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize user: %w", err)
	}

	return user, nil
}

// GetUserByUsername retrieves a user via the username index.
// Returns (nil, redis.Nil) if no user holds the username.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	userID, err := c.rdb.Get(ctx, UsernameKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("failed to read username index: %w", err)
	}

	return c.GetUser(ctx, userID)
}

// CreateTodo writes a todo to Redis, indexes it under its owner, and
// publishes a created event.
//
// The todo is stored as a Redis hash at burrow:todo:{id}; the owner's ZSET
// index is scored by creation time so ListTodos can return newest-first.
func (c *Client) CreateTodo(ctx context.Context, t *Todo) error {
	// Validate todo
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid todo: %w", err)
	}

	// Write to Redis
	key := TodoKey(t.ID)
	if err := c.rdb.HSet(ctx, key, TodoToHash(t)).Err(); err != nil {
		return fmt.Errorf("failed to write todo to Redis: %w", err)
	}

	// Index under the owner
	z := redis.Z{Score: float64(t.CreatedAtMs), Member: t.ID}
	if err := c.rdb.ZAdd(ctx, OwnerTodosKey(t.OwnerID), z).Err(); err != nil {
		return fmt.Errorf("failed to index todo under owner: %w", err)
	}

	// Publish event
	if err := c.publishTodoEvent(ctx, TodoActionCreated, t); err != nil {
		return err
	}

	return nil
}

// GetTodo retrieves a todo by (owner, id) jointly.
// Returns (nil, redis.Nil) if the todo doesn't exist OR is owned by a
// different user - callers cannot distinguish the two, so one principal
// can never probe for the existence of another's todos.
func (c *Client) GetTodo(ctx context.Context, ownerID, todoID string) (*Todo, error) {
	key := TodoKey(todoID)

	// Read hash from Redis
	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read todo from Redis: %w", err)
	}

	// Check if key exists
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	todo, err := HashToTodo(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize todo: %w", err)
	}

	// Owner scoping: a foreign-owned todo is reported exactly like a
	// missing one
	if todo.OwnerID != ownerID {
		return nil, redis.Nil
	}

	return todo, nil
}

// ListTodos returns all todos owned by the given user, newest first.
// Returns an empty slice (not nil) when the user has no todos.
func (c *Client) ListTodos(ctx context.Context, ownerID string) ([]*Todo, error) {
	// Newest-first via the creation-time scored index
	ids, err := c.rdb.ZRevRange(ctx, OwnerTodosKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read todo index: %w", err)
	}

	todos := make([]*Todo, 0, len(ids))
	for _, id := range ids {
		todo, err := c.GetTodo(ctx, ownerID, id)
		if err != nil {
			// Index entries can outlive their hash briefly; skip rather
			// than fail the whole listing
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		todos = append(todos, todo)
	}

	return todos, nil
}

// UpdateTodo replaces an existing todo with new data (full HSET replacement)
// and publishes an updated event. The caller is expected to have loaded the
// todo through GetTodo so the owner scope has already been enforced.
func (c *Client) UpdateTodo(ctx context.Context, t *Todo) error {
	// Validate todo
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid todo: %w", err)
	}

	// Write to Redis (full replacement)
	key := TodoKey(t.ID)
	if err := c.rdb.HSet(ctx, key, TodoToHash(t)).Err(); err != nil {
		return fmt.Errorf("failed to update todo in Redis: %w", err)
	}

	// Publish event
	if err := c.publishTodoEvent(ctx, TodoActionUpdated, t); err != nil {
		return err
	}

	return nil
}

// DeleteTodo removes a todo after an owner-scoped lookup.
// Returns redis.Nil if no todo matches the (owner, id) pair - including
// when the id exists but belongs to another user.
func (c *Client) DeleteTodo(ctx context.Context, ownerID, todoID string) error {
	// Owner-scoped lookup first; the fetched record also feeds the event
	todo, err := c.GetTodo(ctx, ownerID, todoID)
	if err != nil {
		return err
	}

	if err := c.rdb.Del(ctx, TodoKey(todoID)).Err(); err != nil {
		return fmt.Errorf("failed to delete todo from Redis: %w", err)
	}

	if err := c.rdb.ZRem(ctx, OwnerTodosKey(ownerID), todoID).Err(); err != nil {
		return fmt.Errorf("failed to remove todo from owner index: %w", err)
	}

	// Publish event
	if err := c.publishTodoEvent(ctx, TodoActionDeleted, todo); err != nil {
		return err
	}

	return nil
}

// MarkTodoRead sets read=true on an owner-scoped todo and persists it.
// The operation is idempotent - marking an already-read todo succeeds and
// leaves read=true. Returns the updated todo, or redis.Nil if no todo
// matches the (owner, id) pair.
func (c *Client) MarkTodoRead(ctx context.Context, ownerID, todoID string) (*Todo, error) {
	todo, err := c.GetTodo(ctx, ownerID, todoID)
	if err != nil {
		return nil, err
	}

	todo.Read = true
	todo.UpdatedAtMs = time.Now().UnixMilli()

	if err := c.UpdateTodo(ctx, todo); err != nil {
		return nil, err
	}

	return todo, nil
}

// publishTodoEvent publishes a TodoEvent to the todo events channel.
func (c *Client) publishTodoEvent(ctx context.Context, action TodoAction, t *Todo) error {
	event := TodoEvent{Action: action, Todo: *t}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal todo event: %w", err)
	}

	if err := c.rdb.Publish(ctx, TodoEventsChannel(), eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish todo event: %w", err)
	}

	return nil
}

// Subscription represents an active Pub/Sub subscription to todo events.
// Caller must call Close() when done to clean up resources.
// Subscriptions deliver full event objects via the Events() channel.
type Subscription struct {
	events <-chan *TodoEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of todo events.
// The channel will be closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *TodoEvent {
	return s.events
}

// Errors returns the channel of subscription errors.
// Errors include JSON unmarshaling failures and other non-fatal issues.
// The subscription continues after errors - messages are skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeTodoEvents subscribes to todo mutation events.
// Returns a Subscription that delivers full event objects.
// Caller must call subscription.Close() when done.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10) to prevent blocking.
// If the subscriber is too slow, events may be dropped by Redis Pub/Sub (at-most-once delivery).
func (c *Client) SubscribeTodoEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, TodoEventsChannel())

	// Create buffered channels for events and errors
	eventsChan := make(chan *TodoEvent, 10)
	errorsChan := make(chan error, 10)

	// Create cancellation context
	subCtx, cancelFunc := context.WithCancel(ctx)

	// Start goroutine to process messages
	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				// Unmarshal event from JSON
				var event TodoEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					// Send error on error channel, skip message
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal todo event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				// Send event on events channel
				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// ScanTodoIDs returns the IDs of all todos whose ID starts with the given
// prefix. Used by the CLI's short-ID resolver. Uses Redis SCAN so it never
// blocks the server.
func (c *Client) ScanTodoIDs(ctx context.Context, prefix string) ([]string, error) {
	pattern := fmt.Sprintf("burrow:todo:%s*", prefix)
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()

	var ids []string
	for iter.Next(ctx) {
		key := iter.Val()
		ids = append(ids, key[len("burrow:todo:"):])
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan todos: %w", err)
	}

	return ids, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
// Use this to check if GetUser, GetTodo, or an owner-scoped mutation
// returned "not found".
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
