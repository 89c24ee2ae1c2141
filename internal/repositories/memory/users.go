package memory

import (
	"context"
	"fmt"

	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"
)

type authRepository struct {
	s *Store
}

// NewAuthRepository returns an AuthRepository over the store.
func NewAuthRepository(s *Store) repositories.AuthRepository {
	return &authRepository{s: s}
}

func (r *authRepository) CreateUser(_ context.Context, _ repositories.SQLExecutor, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username %q", repositories.ErrDuplicateKey, user.Username)
		}
	}
	r.s.data.nextUserID++
	user.ID = r.s.data.nextUserID
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *authRepository) FindUserByUsername(_ context.Context, _ repositories.SQLExecutor, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.data.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *authRepository) FindUserByID(_ context.Context, _ repositories.SQLExecutor, userID int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.data.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u.PasswordHash = ""
	return &u, nil
}
