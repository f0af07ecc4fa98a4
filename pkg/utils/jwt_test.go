package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ride-admin-backend/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 7, Email: "admin@example.com", Role: models.UserRoleAdmin}

	token, err := GenerateToken(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestValidateTokenRejects(t *testing.T) {
	user := &models.User{ID: 1, Role: models.UserRoleAdmin}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken(user, "secret", time.Hour)
		require.NoError(t, err)
		_, err = ValidateToken(token, "other")
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken(user, "secret", -time.Minute)
		require.NoError(t, err)
		_, err = ValidateToken(token, "secret")
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("other signing method", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1, Role: "admin"}).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = ValidateToken(token, "secret")
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateToken("not-a-token", "secret")
		assert.Error(t, err)
	})
}
