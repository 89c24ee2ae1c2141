package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("unit-test-secret-0123456789", time.Hour)

	token, err := m.GenerateAccessToken(42, "sam", "Server")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "sam", claims.Username)
	assert.Equal(t, "Server", claims.Role)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestTokenManager_Rejects(t *testing.T) {
	issued := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager("unit-test-secret-0123456789", time.Hour)
	m.now = func() time.Time { return issued }
	token, err := m.GenerateAccessToken(1, "alice", "Admin")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("another-secret-9876543210", time.Hour)
		other.now = m.now
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenManager("unit-test-secret-0123456789", time.Hour)
		later.now = func() time.Time { return issued.Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := m.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestOptionalInt64(t *testing.T) {
	v, err := OptionalInt64("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = OptionalInt64("17")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(17), *v)

	_, err = OptionalInt64("seventeen")
	assert.Error(t, err)
}
