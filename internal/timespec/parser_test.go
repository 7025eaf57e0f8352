package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("empty spec is rejected", func(t *testing.T) {
		_, err := Parse("")
		require.Error(t, err)
	})

	t.Run("RFC3339 timestamp", func(t *testing.T) {
		ms, err := Parse("2026-01-02T15:04:05Z")
		require.NoError(t, err)

		want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC).UnixMilli()
		assert.Equal(t, want, ms)
	})

	t.Run("duration is relative to now", func(t *testing.T) {
		ms, err := Parse("1h")
		require.NoError(t, err)

		want := time.Now().Add(-time.Hour).UnixMilli()
		assert.InDelta(t, want, ms, 1000)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := Parse("yesterday")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid time specification")
	})
}

func TestParseRange(t *testing.T) {
	t.Run("both empty means no bounds", func(t *testing.T) {
		since, until, err := ParseRange("", "")
		require.NoError(t, err)
		assert.Zero(t, since)
		assert.Zero(t, until)
	})

	t.Run("since only", func(t *testing.T) {
		since, until, err := ParseRange("30m", "")
		require.NoError(t, err)
		assert.Positive(t, since)
		assert.Zero(t, until)
	})

	t.Run("since after until is rejected", func(t *testing.T) {
		_, _, err := ParseRange("1h", "2h")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--since must be before --until")
	})

	t.Run("invalid since is reported with flag name", func(t *testing.T) {
		_, _, err := ParseRange("nope", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --since")
	})
}
