package models

import "time"

// Staff roles carried in access tokens
const (
	RoleAdmin  = "Admin"
	RoleServer = "Server"
	RoleCook   = "Cook"
)

// IsValidRole checks if the provided role name is known.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleServer, RoleCook:
		return true
	default:
		return false
	}
}

// User represents a staff member who can sign in
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Credentials for login request
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
