package board

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/burrow/pkg/taskboard"
)

func setupStore(t *testing.T) *taskboard.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	store := taskboard.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { store.Close() })

	return store
}

func newTodo(t *testing.T, store *taskboard.Client, ownerID, title string, createdAtMs int64) *taskboard.Todo {
	t.Helper()

	todo := &taskboard.Todo{
		ID:          uuid.New().String(),
		Title:       title,
		OwnerID:     ownerID,
		CreatedAtMs: createdAtMs,
		UpdatedAtMs: createdAtMs,
	}
	require.NoError(t, store.CreateTodo(context.Background(), todo))
	return todo
}

func TestListTodos(t *testing.T) {
	ctx := context.Background()

	t.Run("no todos - default format", func(t *testing.T) {
		store := setupStore(t)

		var buf bytes.Buffer
		err := ListTodos(ctx, store, uuid.New().String(), OutputFormatDefault, nil, &buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "No todos found")
	})

	t.Run("no todos - JSONL format is empty", func(t *testing.T) {
		store := setupStore(t)

		var buf bytes.Buffer
		err := ListTodos(ctx, store, uuid.New().String(), OutputFormatJSONL, nil, &buf)
		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})

	t.Run("table output, newest first", func(t *testing.T) {
		store := setupStore(t)
		ownerID := uuid.New().String()

		now := time.Now().UnixMilli()
		newTodo(t, store, ownerID, "older todo", now-1000)
		newTodo(t, store, ownerID, "newer todo", now)

		var buf bytes.Buffer
		err := ListTodos(ctx, store, ownerID, OutputFormatDefault, nil, &buf)
		require.NoError(t, err)

		output := buf.String()
		assert.Contains(t, output, "older todo")
		assert.Contains(t, output, "newer todo")
		assert.Contains(t, output, "2 todos found")
		assert.Less(t, strings.Index(output, "newer todo"), strings.Index(output, "older todo"))
	})

	t.Run("JSONL output is one object per line", func(t *testing.T) {
		store := setupStore(t)
		ownerID := uuid.New().String()

		now := time.Now().UnixMilli()
		newTodo(t, store, ownerID, "first", now-1000)
		newTodo(t, store, ownerID, "second", now)

		var buf bytes.Buffer
		err := ListTodos(ctx, store, ownerID, OutputFormatJSONL, nil, &buf)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)

		for _, line := range lines {
			var todo taskboard.Todo
			require.NoError(t, json.Unmarshal([]byte(line), &todo))
			assert.Equal(t, ownerID, todo.OwnerID)
		}
	})

	t.Run("does not show other owners' todos", func(t *testing.T) {
		store := setupStore(t)
		ownerID := uuid.New().String()

		newTodo(t, store, uuid.New().String(), "not yours", time.Now().UnixMilli())

		var buf bytes.Buffer
		err := ListTodos(ctx, store, ownerID, OutputFormatDefault, nil, &buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "No todos found")
	})

	t.Run("unknown format is rejected", func(t *testing.T) {
		store := setupStore(t)

		var buf bytes.Buffer
		err := ListTodos(ctx, store, uuid.New().String(), OutputFormat("yaml"), nil, &buf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown output format")
	})
}

func TestListTodosFilters(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	ownerID := uuid.New().String()

	now := time.Now().UnixMilli()
	old := newTodo(t, store, ownerID, "buy milk", now-10000)
	recent := newTodo(t, store, ownerID, "write report", now)

	// Mark one read, complete the other
	_, err := store.MarkTodoRead(ctx, ownerID, old.ID)
	require.NoError(t, err)

	recent.Completed = true
	require.NoError(t, store.UpdateTodo(ctx, recent))

	t.Run("since filter drops older todos", func(t *testing.T) {
		var buf bytes.Buffer
		filters := &FilterCriteria{SinceTimestampMs: now - 5000}
		require.NoError(t, ListTodos(ctx, store, ownerID, OutputFormatDefault, filters, &buf))

		assert.Contains(t, buf.String(), "write report")
		assert.NotContains(t, buf.String(), "buy milk")
	})

	t.Run("until filter drops newer todos", func(t *testing.T) {
		var buf bytes.Buffer
		filters := &FilterCriteria{UntilTimestampMs: now - 5000}
		require.NoError(t, ListTodos(ctx, store, ownerID, OutputFormatDefault, filters, &buf))

		assert.Contains(t, buf.String(), "buy milk")
		assert.NotContains(t, buf.String(), "write report")
	})

	t.Run("title glob", func(t *testing.T) {
		var buf bytes.Buffer
		filters := &FilterCriteria{TitleGlob: "buy *"}
		require.NoError(t, ListTodos(ctx, store, ownerID, OutputFormatDefault, filters, &buf))

		assert.Contains(t, buf.String(), "buy milk")
		assert.NotContains(t, buf.String(), "write report")
	})

	t.Run("unread only", func(t *testing.T) {
		var buf bytes.Buffer
		filters := &FilterCriteria{UnreadOnly: true}
		require.NoError(t, ListTodos(ctx, store, ownerID, OutputFormatDefault, filters, &buf))

		assert.Contains(t, buf.String(), "write report")
		assert.NotContains(t, buf.String(), "buy milk")
	})

	t.Run("open only", func(t *testing.T) {
		var buf bytes.Buffer
		filters := &FilterCriteria{OpenOnly: true}
		require.NoError(t, ListTodos(ctx, store, ownerID, OutputFormatDefault, filters, &buf))

		assert.Contains(t, buf.String(), "buy milk")
		assert.NotContains(t, buf.String(), "write report")
	})
}
