package repositories

import (
	"context"

	"github.com/SscSPs/terminal_banking/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// GetUserByUsername returns apperrors.ErrNotFound when no user has the username.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetUserByID returns apperrors.ErrNotFound when no user has the id.
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// CreateUser inserts a user and returns the stored row. Unique violations on
	// username or email surface as apperrors.ErrStore wrapping apperrors.ErrAlreadyExists.
	CreateUser(ctx context.Context, username, passwordHash, email string) (*domain.User, error)
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
