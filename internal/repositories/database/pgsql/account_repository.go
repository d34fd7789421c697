package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/SscSPs/terminal_banking/internal/core/domain"
	portsrepo "github.com/SscSPs/terminal_banking/internal/core/ports/repositories"
	"github.com/SscSPs/terminal_banking/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(db Querier) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository{db: db}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `id, user_id, account_type, balance, interest_rate, created_at`

// Helper to convert models.Account from DB to domain.Account
func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:    m.AccountID,
		UserID:       m.UserID,
		AccountType:  domain.AccountType(m.AccountType),
		Balance:      m.Balance,
		InterestRate: m.InterestRate,
		CreatedAt:    m.CreatedAt,
	}
}

// GetAccountByID retrieves an account by its primary key.
func (r *PgxAccountRepository) GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	msg := fmt.Sprintf("failed to find account %d", accountID)
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return nil, mapError(msg, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, mapError(msg, err)
	}
	acc := toDomainAccount(m)
	return &acc, nil
}

// GetAccountsByUserID lists the accounts owned by a user in creation order.
func (r *PgxAccountRepository) GetAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error) {
	msg := fmt.Sprintf("failed to list accounts of user %d", userID)
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, mapError(msg, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, mapError(msg, err)
	}
	accounts := make([]domain.Account, len(ms))
	for i, m := range ms {
		accounts[i] = toDomainAccount(m)
	}
	return accounts, nil
}

// CreateAccount inserts a zero-balance account.
func (r *PgxAccountRepository) CreateAccount(ctx context.Context, userID int64, accountType domain.AccountType, interestRate decimal.Decimal) (*domain.Account, error) {
	rows, err := r.db.Query(ctx,
		`INSERT INTO accounts (user_id, account_type, interest_rate) VALUES ($1, $2, $3) RETURNING `+accountColumns,
		userID, string(accountType), interestRate)
	if err != nil {
		return nil, mapError("failed to create account", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, mapError("failed to create account", err)
	}
	acc := toDomainAccount(m)
	return &acc, nil
}

// UpdateBalance applies a signed delta in a single statement. The WHERE clause
// refuses a result below zero; an empty result is then disambiguated into a
// missing account or insufficient funds.
func (r *PgxAccountRepository) UpdateBalance(ctx context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	msg := fmt.Sprintf("failed to update balance of account %d", accountID)
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx,
		`UPDATE accounts SET balance = balance + $1 WHERE id = $2 AND balance + $1 >= 0 RETURNING balance`,
		delta, accountID).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, mapError(msg, err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); err != nil {
		return decimal.Zero, mapError(msg, err)
	}
	if !exists {
		return decimal.Zero, apperrors.ErrNotFound
	}
	return decimal.Zero, apperrors.ErrInsufficientFunds
}
