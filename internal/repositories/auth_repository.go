package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant_ops_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// AuthRepository defines the interface for authentication-related database operations.
type AuthRepository interface {
	CreateUser(ctx context.Context, exec SQLExecutor, user *models.User) error
	FindUserByUsername(ctx context.Context, exec SQLExecutor, username string) (*models.User, error) // PasswordHash populated
	FindUserByID(ctx context.Context, exec SQLExecutor, userID int64) (*models.User, error)
}

// authRepository implements the AuthRepository interface.
type authRepository struct{}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository() AuthRepository {
	return &authRepository{}
}

const userColumns = `id, username, password_hash, full_name, role, is_active, created_at, updated_at`

// CreateUser inserts a new user. The password must already be hashed into user.PasswordHash.
func (r *authRepository) CreateUser(ctx context.Context, exec SQLExecutor, user *models.User) error {
	query := `INSERT INTO users (username, password_hash, full_name, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	err := exec.QueryRowxContext(ctx, query,
		user.Username, user.PasswordHash, user.FullName, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return mapPQError(err, "creating user")
	}
	return nil
}

// FindUserByUsername retrieves a user together with the password hash for login checks.
func (r *authRepository) FindUserByUsername(ctx context.Context, exec SQLExecutor, username string) (*models.User, error) {
	user := &models.User{}
	err := sqlx.GetContext(ctx, exec, user, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by username %s: %v", ErrDatabaseError, username, err)
	}
	return user, nil
}

// FindUserByID retrieves a user profile. The password hash is cleared.
func (r *authRepository) FindUserByID(ctx context.Context, exec SQLExecutor, userID int64) (*models.User, error) {
	user := &models.User{}
	err := sqlx.GetContext(ctx, exec, user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}
