package repositories

import (
	"context"

	"github.com/SscSPs/terminal_banking/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// GetAccountByID looks an account up by its primary key.
	GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)

	// GetAccountsByUserID returns every account owned by the user, oldest first.
	GetAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// CreateAccount inserts a zero-balance account owned by userID.
	CreateAccount(ctx context.Context, userID int64, accountType domain.AccountType, interestRate decimal.Decimal) (*domain.Account, error)

	// UpdateBalance adds the signed delta to the stored balance and returns the new
	// balance. It fails with apperrors.ErrNotFound for an unknown account and with
	// apperrors.ErrInsufficientFunds when the result would be negative.
	UpdateBalance(ctx context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
