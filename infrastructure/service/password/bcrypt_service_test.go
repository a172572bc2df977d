package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptPasswordService(t *testing.T) {
	service := NewBcryptPasswordService(bcrypt.MinCost)

	t.Run("HashPassword", func(t *testing.T) {
		hash, err := service.HashPassword("test-password-123")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, "test-password-123", hash)
	})

	t.Run("HashEmptyPassword", func(t *testing.T) {
		_, err := service.HashPassword("")
		assert.Error(t, err)
	})

	t.Run("ComparePassword", func(t *testing.T) {
		hash, err := service.HashPassword("test-password-123")
		require.NoError(t, err)
		assert.NoError(t, service.ComparePassword(hash, "test-password-123"))
	})

	t.Run("CompareWrongPassword", func(t *testing.T) {
		hash, err := service.HashPassword("test-password-123")
		require.NoError(t, err)
		assert.ErrorIs(t, service.ComparePassword(hash, "wrong-password-456"), ErrPasswordMismatch)
	})

	t.Run("CompareEmptyInputs", func(t *testing.T) {
		assert.ErrorIs(t, service.ComparePassword("", "password"), ErrPasswordMismatch)
		assert.ErrorIs(t, service.ComparePassword("$2a$10$abc", ""), ErrPasswordMismatch)
	})

	t.Run("CompareCorruptHash", func(t *testing.T) {
		err := service.ComparePassword("not-a-bcrypt-hash", "password")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("InvalidCostFallsBackToDefault", func(t *testing.T) {
		assert.Equal(t, bcrypt.DefaultCost, NewBcryptPasswordService(0).cost)
		assert.Equal(t, bcrypt.DefaultCost, NewBcryptPasswordService(99).cost)
	})
}
