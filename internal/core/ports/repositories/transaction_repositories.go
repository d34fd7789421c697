package repositories

import (
	"context"

	"github.com/SscSPs/terminal_banking/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations on the ledger
type TransactionReader interface {
	// GetTransactionsByAccount returns the account's ledger ordered newest-first.
	GetTransactionsByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error)
}

// TransactionWriter appends rows to the ledger
type TransactionWriter interface {
	// AddTransaction appends one immutable ledger row with a signed amount.
	AddTransaction(ctx context.Context, accountID int64, kind domain.TransactionType, amount decimal.Decimal, description string) (*domain.Transaction, error)
}

// TransactionRepositoryFacade combines all ledger repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
