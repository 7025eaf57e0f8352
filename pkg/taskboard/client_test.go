package taskboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestClient creates a test client connected to a miniredis instance
func setupTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

// newTestUser returns a valid user with a fresh UUID
func newTestUser(username string) *User {
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		CreatedAtMs:  time.Now().UnixMilli(),
	}
}

// newTestTodo returns a valid todo owned by the given user
func newTestTodo(ownerID, title string) *Todo {
	now := time.Now().UnixMilli()
	return &Todo{
		ID:          uuid.New().String(),
		Title:       title,
		Description: "",
		OwnerID:     ownerID,
		CreatedAtMs: now,
		UpdatedAtMs: now,
	}
}

func TestPing(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	err := client.Ping(ctx)
	assert.NoError(t, err)
}

func TestCreateUser(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	t.Run("creates valid user", func(t *testing.T) {
		user := newTestUser("alice")

		err := client.CreateUser(ctx, user)
		assert.NoError(t, err)

		// Verify it was written
		retrieved, err := client.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, retrieved.ID)
		assert.Equal(t, "alice", retrieved.Username)
		assert.Equal(t, user.PasswordHash, retrieved.PasswordHash)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		first := newTestUser("bob")
		require.NoError(t, client.CreateUser(ctx, first))

		second := newTestUser("bob")
		err := client.CreateUser(ctx, second)
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("usernames are case-sensitive", func(t *testing.T) {
		require.NoError(t, client.CreateUser(ctx, newTestUser("Carol")))
		assert.NoError(t, client.CreateUser(ctx, newTestUser("carol")))
	})

	t.Run("rejects invalid user", func(t *testing.T) {
		user := &User{
			ID:       "not-a-uuid",
			Username: "dave",
		}

		err := client.CreateUser(ctx, user)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid user")
	})
}

func TestGetUserByUsername(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	t.Run("resolves via the index", func(t *testing.T) {
		user := newTestUser("erin")
		require.NoError(t, client.CreateUser(ctx, user))

		retrieved, err := client.GetUserByUsername(ctx, "erin")
		require.NoError(t, err)
		assert.Equal(t, user.ID, retrieved.ID)
	})

	t.Run("returns not found for unknown username", func(t *testing.T) {
		_, err := client.GetUserByUsername(ctx, "nobody")
		assert.True(t, IsNotFound(err))
	})
}

func TestCreateTodo(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	owner := newTestUser("alice")
	require.NoError(t, client.CreateUser(ctx, owner))

	t.Run("creates valid todo", func(t *testing.T) {
		todo := newTestTodo(owner.ID, "Buy milk")

		err := client.CreateTodo(ctx, todo)
		assert.NoError(t, err)

		retrieved, err := client.GetTodo(ctx, owner.ID, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", retrieved.Title)
		assert.Equal(t, "", retrieved.Description)
		assert.False(t, retrieved.Read)
		assert.False(t, retrieved.Completed)
		assert.Equal(t, owner.ID, retrieved.OwnerID)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		todo := newTestTodo(owner.ID, "")

		err := client.CreateTodo(ctx, todo)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid todo")
	})

	t.Run("publishes event after creation", func(t *testing.T) {
		sub, err := client.SubscribeTodoEvents(ctx)
		require.NoError(t, err)
		defer sub.Close()

		todo := newTestTodo(owner.ID, "Event test")
		require.NoError(t, client.CreateTodo(ctx, todo))

		select {
		case event := <-sub.Events():
			assert.Equal(t, TodoActionCreated, event.Action)
			assert.Equal(t, todo.ID, event.Todo.ID)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for todo event")
		}
	})
}

func TestGetTodoOwnerScoping(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	alice := newTestUser("alice")
	mallory := newTestUser("mallory")
	require.NoError(t, client.CreateUser(ctx, alice))
	require.NoError(t, client.CreateUser(ctx, mallory))

	todo := newTestTodo(alice.ID, "Alice's secret")
	require.NoError(t, client.CreateTodo(ctx, todo))

	t.Run("owner can read", func(t *testing.T) {
		retrieved, err := client.GetTodo(ctx, alice.ID, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, todo.ID, retrieved.ID)
	})

	t.Run("foreign owner gets not found", func(t *testing.T) {
		_, err := client.GetTodo(ctx, mallory.ID, todo.ID)
		assert.True(t, IsNotFound(err))
	})

	t.Run("foreign miss is identical to genuine miss", func(t *testing.T) {
		_, foreignErr := client.GetTodo(ctx, mallory.ID, todo.ID)
		_, missingErr := client.GetTodo(ctx, mallory.ID, uuid.New().String())
		assert.Equal(t, foreignErr, missingErr)
	})
}

func TestListTodos(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	owner := newTestUser("alice")
	require.NoError(t, client.CreateUser(ctx, owner))

	t.Run("empty list for new user", func(t *testing.T) {
		todos, err := client.ListTodos(ctx, owner.ID)
		require.NoError(t, err)
		assert.NotNil(t, todos)
		assert.Len(t, todos, 0)
	})

	t.Run("returns todos newest first", func(t *testing.T) {
		base := time.Now().UnixMilli()
		for i, title := range []string{"first", "second", "third"} {
			todo := newTestTodo(owner.ID, title)
			todo.CreatedAtMs = base + int64(i)
			todo.UpdatedAtMs = todo.CreatedAtMs
			require.NoError(t, client.CreateTodo(ctx, todo))
		}

		todos, err := client.ListTodos(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, todos, 3)
		assert.Equal(t, "third", todos[0].Title)
		assert.Equal(t, "second", todos[1].Title)
		assert.Equal(t, "first", todos[2].Title)
	})

	t.Run("does not include other users' todos", func(t *testing.T) {
		other := newTestUser("bob")
		require.NoError(t, client.CreateUser(ctx, other))
		require.NoError(t, client.CreateTodo(ctx, newTestTodo(other.ID, "Bob's todo")))

		todos, err := client.ListTodos(ctx, other.ID)
		require.NoError(t, err)
		require.Len(t, todos, 1)
		assert.Equal(t, "Bob's todo", todos[0].Title)
	})
}

func TestUpdateTodo(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	owner := newTestUser("alice")
	require.NoError(t, client.CreateUser(ctx, owner))

	t.Run("replaces fields", func(t *testing.T) {
		todo := newTestTodo(owner.ID, "Original")
		require.NoError(t, client.CreateTodo(ctx, todo))

		todo.Title = "Changed"
		todo.Completed = true
		require.NoError(t, client.UpdateTodo(ctx, todo))

		retrieved, err := client.GetTodo(ctx, owner.ID, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, "Changed", retrieved.Title)
		assert.True(t, retrieved.Completed)
		assert.False(t, retrieved.Read)
	})
}

func TestDeleteTodo(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	alice := newTestUser("alice")
	mallory := newTestUser("mallory")
	require.NoError(t, client.CreateUser(ctx, alice))
	require.NoError(t, client.CreateUser(ctx, mallory))

	t.Run("deletes owned todo", func(t *testing.T) {
		todo := newTestTodo(alice.ID, "Ephemeral")
		require.NoError(t, client.CreateTodo(ctx, todo))

		err := client.DeleteTodo(ctx, alice.ID, todo.ID)
		assert.NoError(t, err)

		// Gone from the record store and from the listing
		_, err = client.GetTodo(ctx, alice.ID, todo.ID)
		assert.True(t, IsNotFound(err))

		todos, err := client.ListTodos(ctx, alice.ID)
		require.NoError(t, err)
		for _, remaining := range todos {
			assert.NotEqual(t, todo.ID, remaining.ID)
		}
	})

	t.Run("delete of deleted id returns not found", func(t *testing.T) {
		todo := newTestTodo(alice.ID, "Twice deleted")
		require.NoError(t, client.CreateTodo(ctx, todo))
		require.NoError(t, client.DeleteTodo(ctx, alice.ID, todo.ID))

		err := client.DeleteTodo(ctx, alice.ID, todo.ID)
		assert.True(t, IsNotFound(err))
	})

	t.Run("foreign owner cannot delete", func(t *testing.T) {
		todo := newTestTodo(alice.ID, "Protected")
		require.NoError(t, client.CreateTodo(ctx, todo))

		err := client.DeleteTodo(ctx, mallory.ID, todo.ID)
		assert.True(t, IsNotFound(err))

		// Still present for the real owner
		_, err = client.GetTodo(ctx, alice.ID, todo.ID)
		assert.NoError(t, err)
	})
}

func TestMarkTodoRead(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	owner := newTestUser("alice")
	require.NoError(t, client.CreateUser(ctx, owner))

	t.Run("sets read flag", func(t *testing.T) {
		todo := newTestTodo(owner.ID, "Unread")
		require.NoError(t, client.CreateTodo(ctx, todo))

		updated, err := client.MarkTodoRead(ctx, owner.ID, todo.ID)
		require.NoError(t, err)
		assert.True(t, updated.Read)
		assert.False(t, updated.Completed)
	})

	t.Run("is idempotent", func(t *testing.T) {
		todo := newTestTodo(owner.ID, "Read twice")
		require.NoError(t, client.CreateTodo(ctx, todo))

		_, err := client.MarkTodoRead(ctx, owner.ID, todo.ID)
		require.NoError(t, err)

		updated, err := client.MarkTodoRead(ctx, owner.ID, todo.ID)
		require.NoError(t, err)
		assert.True(t, updated.Read)
	})

	t.Run("foreign owner gets not found", func(t *testing.T) {
		mallory := newTestUser("mallory")
		require.NoError(t, client.CreateUser(ctx, mallory))

		todo := newTestTodo(owner.ID, "Not yours")
		require.NoError(t, client.CreateTodo(ctx, todo))

		_, err := client.MarkTodoRead(ctx, mallory.ID, todo.ID)
		assert.True(t, IsNotFound(err))
	})
}

func TestScanTodoIDs(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	owner := newTestUser("alice")
	require.NoError(t, client.CreateUser(ctx, owner))

	todo := newTestTodo(owner.ID, "Scannable")
	require.NoError(t, client.CreateTodo(ctx, todo))

	t.Run("finds by prefix", func(t *testing.T) {
		ids, err := client.ScanTodoIDs(ctx, todo.ID[:8])
		require.NoError(t, err)
		assert.Contains(t, ids, todo.ID)
	})

	t.Run("no matches for unknown prefix", func(t *testing.T) {
		ids, err := client.ScanTodoIDs(ctx, "zzzzzzzz")
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}
