// Package users is the local user directory backing the offline identity
// provider.
package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

// User is a row of the users table.
type User struct {
	ID                 string
	Email              string
	PasswordHash       []byte
	Name               string
	Country            string
	Confirmed          bool
	MustChangePassword bool
	// TokenVersion is embedded in issued session tokens; bumping it revokes
	// every token issued before.
	TokenVersion int64
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Confirm(ctx context.Context, id string) error
	BumpTokenVersion(ctx context.Context, id string) (int64, error)
}
