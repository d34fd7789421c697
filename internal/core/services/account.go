package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/SscSPs/terminal_banking/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	DefaultDepositDescription    = "Deposit"
	DefaultWithdrawalDescription = "Withdrawal"
	DefaultTransferDescription   = "Transfer"
	TransferReversalDescription  = "Transfer reversal"
	InterestPaymentDescription   = "Interest payment"
)

// Account is a loaded account bound to the ledger that mutates it. The embedded
// Balance is a cache of the store's value and is refreshed after every leg.
type Account struct {
	domain.Account
	ledger *LedgerService
}

// TransferResult holds the two committed legs of a transfer.
type TransferResult struct {
	Debit  *domain.Transaction
	Credit *domain.Transaction
}

// Loaded reports whether the account came from the store.
func (a *Account) Loaded() bool {
	return a != nil && a.ledger != nil
}

// Snapshot returns a copy of the account fields.
func (a *Account) Snapshot() domain.Account {
	return a.Account
}

// Deposit credits amount to the account. An empty description records "Deposit".
func (a *Account) Deposit(ctx context.Context, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !a.Loaded() {
		return nil, errAccountNotLoaded
	}
	if description == "" {
		description = DefaultDepositDescription
	}

	unlock := a.ledger.locks.lock(a.AccountID)
	defer unlock()
	return a.ledger.recordLeg(ctx, a, domain.Deposit, amount, description)
}

// Withdraw debits amount from the account. An empty description records "Withdrawal".
func (a *Account) Withdraw(ctx context.Context, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !a.Loaded() {
		return nil, errAccountNotLoaded
	}
	if description == "" {
		description = DefaultWithdrawalDescription
	}

	unlock := a.ledger.locks.lock(a.AccountID)
	defer unlock()
	if amount.GreaterThan(a.Balance) {
		return nil, insufficientFunds(a, amount)
	}
	return a.ledger.recordLeg(ctx, a, domain.Withdrawal, amount.Neg(), description)
}

// Transfer moves amount to target in two legs. When the credit leg fails the
// debit is compensated with a "Transfer reversal" deposit and the error is
// returned. Between the legs the funds are in neither account.
func (a *Account) Transfer(ctx context.Context, target *Account, amount decimal.Decimal, description string) (*TransferResult, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !a.Loaded() || !target.Loaded() {
		return nil, errAccountNotLoaded
	}
	if a.AccountID == target.AccountID {
		return nil, apperrors.ErrSameAccount
	}

	unlock := a.ledger.locks.lock(a.AccountID, target.AccountID)
	defer unlock()
	if amount.GreaterThan(a.Balance) {
		return nil, insufficientFunds(a, amount)
	}

	logger := a.ledger.GetLogger(ctx).With(
		slog.Int64("source_account_id", a.AccountID),
		slog.Int64("target_account_id", target.AccountID),
		slog.String("amount", amount.StringFixed(domain.MoneyScale)))

	debit, err := a.ledger.recordLeg(ctx, a, domain.Withdrawal, amount.Neg(),
		transferMemo(fmt.Sprintf("Transfer to %d", target.AccountID), description))
	if err != nil {
		return nil, fmt.Errorf("transfer debit failed: %w", err)
	}

	credit, err := target.ledger.recordLeg(ctx, target, domain.Deposit, amount,
		transferMemo(fmt.Sprintf("Transfer from %d", a.AccountID), description))
	if err == nil {
		logger.Info("Transfer completed")
		return &TransferResult{Debit: debit, Credit: credit}, nil
	}

	logger.Warn("Transfer credit failed, reversing debit", slog.String("error", err.Error()))
	if _, revErr := a.ledger.recordLeg(ctx, a, domain.Deposit, amount, TransferReversalDescription); revErr != nil {
		logger.Error("Transfer reversal failed, funds in flight",
			slog.String("error", err.Error()),
			slog.String("reversal_error", revErr.Error()))
		return nil, errors.Join(fmt.Errorf("transfer credit failed: %w", err), fmt.Errorf("transfer reversal failed: %w", revErr))
	}
	return nil, fmt.Errorf("transfer credit failed, debit reversed: %w", err)
}

// ApplyInterest deposits the interest owed as "Interest payment". A zero interest
// amount succeeds without touching the ledger and returns a nil transaction.
func (a *Account) ApplyInterest(ctx context.Context) (*domain.Transaction, error) {
	if !a.Loaded() {
		return nil, errAccountNotLoaded
	}

	unlock := a.ledger.locks.lock(a.AccountID)
	defer unlock()
	interest := a.CalculateInterest()
	if !interest.IsPositive() {
		a.ledger.LogDebug(ctx, "No interest to apply", slog.Int64("account_id", a.AccountID))
		return nil, nil
	}
	return a.ledger.recordLeg(ctx, a, domain.Deposit, interest, InterestPaymentDescription)
}

// Transactions returns the account ledger newest-first. An unloaded account has
// no transactions.
func (a *Account) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	if !a.Loaded() {
		return []domain.Transaction{}, nil
	}
	return a.ledger.transactions(ctx, a.AccountID)
}

func insufficientFunds(a *Account, amount decimal.Decimal) error {
	return fmt.Errorf("%w: balance %s is less than %s", apperrors.ErrInsufficientFunds,
		a.Balance.StringFixed(domain.MoneyScale), amount.StringFixed(domain.MoneyScale))
}

func transferMemo(base, description string) string {
	if description == "" || description == DefaultTransferDescription {
		return base
	}
	return base + ": " + description
}
