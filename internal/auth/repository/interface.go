package repository

import (
	"context"
)

// UserReader looks users up for login and profile reads.
type UserReader interface {
	// GetUserByLogin matches the username exactly or the email case-insensitively.
	GetUserByLogin(ctx context.Context, login string) (User, error)
	GetUserByID(ctx context.Context, userID int64) (User, error)
}

// Ensure Repository implements UserReader
var _ UserReader = (*Repository)(nil)
