package auth

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")

	// Duplicate errors are returned both by the fast-path existence checks
	// and by Create when the store's unique indexes reject a late insert.
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// Store is the durable user record boundary. Lookups return
// ErrAccountNotFound when no matching row exists; matching is exact and
// case-sensitive.
type Store interface {
	GetByUsername(ctx context.Context, username string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, account Account) error
}
