package services

import (
	"context"
	"testing"

	"restaurant_ops_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.CreateUser(ctx, CreateUserRequest{Username: "chef", Password: "s3cret-pass", FullName: "Head Chef", Role: models.RoleCook})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Empty(t, user.PasswordHash)
	assert.True(t, user.IsActive)

	t.Run("login", func(t *testing.T) {
		resp, err := env.auth.Login(ctx, LoginRequest{Username: "chef", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, "token-chef-Cook", resp.AccessToken)
		assert.Empty(t, resp.User.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, LoginRequest{Username: "chef", Password: "nope-nope"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.auth.Login(ctx, LoginRequest{Username: "ghost", Password: "s3cret-pass"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("create validation", func(t *testing.T) {
		_, err := env.auth.CreateUser(ctx, CreateUserRequest{Username: "chef", Password: "another-pass", Role: models.RoleCook})
		require.ErrorIs(t, err, ErrConflict)
		_, err = env.auth.CreateUser(ctx, CreateUserRequest{Username: "waiter", Password: "another-pass", Role: "Owner"})
		require.ErrorIs(t, err, ErrValidation)
		_, err = env.auth.CreateUser(ctx, CreateUserRequest{Username: "waiter", Password: "short", Role: models.RoleServer})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("profile", func(t *testing.T) {
		profile, err := env.auth.GetUserProfile(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "chef", profile.Username)
		_, err = env.auth.GetUserProfile(ctx, 404)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}
