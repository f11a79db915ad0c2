// ABOUTME: User record type and store interface for credential persistence
// ABOUTME: Usernames are unique; the password is held only as a bcrypt hash

package store

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when a requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when creating a user with a taken username.
var ErrUsernameExists = errors.New("username already exists")

// User is a stored credential record. The core only ever reads it by
// username; registration is the single write path.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash
	Role         string // wire form, e.g. "ROLE_ADMIN"
	CreatedAt    time.Time
}

// UserStore defines the interface for credential persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ListUsers(ctx context.Context) ([]*User, error)
	CountUsers(ctx context.Context) (int, error)

	// Close releases any resources held by the store
	Close() error
}
