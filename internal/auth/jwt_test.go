package auth

import (
	"testing"
	"time"

	"collabhub_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	t.Parallel()

	manager := NewTokenManager("test-secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		token, err := manager.Generate("user-1", models.UserRoleAdmin)
		require.NoError(t, err)

		claims, err := manager.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, models.UserRoleAdmin, claims.Role)
		assert.Equal(t, "user-1", claims.Subject)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenManager("test-secret", -time.Minute)
		token, err := expired.Generate("user-1", models.UserRoleUser)
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", time.Hour)
		token, err := other.Generate("user-1", models.UserRoleUser)
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := manager.Parse("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswords(t *testing.T) {
	t.Parallel()

	t.Run("hash and verify", func(t *testing.T) {
		hash, err := HashPassword("sup3rsecret")
		require.NoError(t, err)
		assert.True(t, CheckPassword(hash, "sup3rsecret"))
		assert.False(t, CheckPassword(hash, "wrongpass1"))
	})

	t.Run("strength policy", func(t *testing.T) {
		assert.NoError(t, ValidatePasswordStrength("abcdefg1"))
		assert.ErrorIs(t, ValidatePasswordStrength("short1"), ErrPasswordTooWeak)
		assert.ErrorIs(t, ValidatePasswordStrength("allletters"), ErrPasswordTooWeak)
		assert.ErrorIs(t, ValidatePasswordStrength("12345678"), ErrPasswordTooWeak)
	})
}
