package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("hash verifies against original password", func(t *testing.T) {
		hash, err := HashPassword("hunter2")
		require.NoError(t, err)
		assert.NotEqual(t, "hunter2", hash)
		assert.True(t, VerifyPassword("hunter2", hash))
	})

	t.Run("wrong password fails verification", func(t *testing.T) {
		hash, err := HashPassword("hunter2")
		require.NoError(t, err)
		assert.False(t, VerifyPassword("hunter3", hash))
	})

	t.Run("hashes are salted", func(t *testing.T) {
		first, err := HashPassword("hunter2")
		require.NoError(t, err)
		second, err := HashPassword("hunter2")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("garbage hash never verifies", func(t *testing.T) {
		assert.False(t, VerifyPassword("hunter2", "not-a-bcrypt-hash"))
	})
}
