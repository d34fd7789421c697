package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/terminal_banking/internal/core/domain"
	portsrepo "github.com/SscSPs/terminal_banking/internal/core/ports/repositories"
	"github.com/SscSPs/terminal_banking/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(db Querier) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository{db: db}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `id, account_id, transaction_type, amount, description, created_at`

func toDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		AccountID:       m.AccountID,
		TransactionType: domain.TransactionType(m.TransactionType),
		Amount:          m.Amount,
		Description:     m.Description,
		CreatedAt:       m.CreatedAt,
	}
}

// AddTransaction appends a ledger row.
func (r *PgxTransactionRepository) AddTransaction(ctx context.Context, accountID int64, kind domain.TransactionType, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	msg := fmt.Sprintf("failed to record %s on account %d", kind, accountID)
	rows, err := r.db.Query(ctx,
		`INSERT INTO transactions (account_id, transaction_type, amount, description)
		 VALUES ($1, $2, $3, $4) RETURNING `+transactionColumns,
		accountID, string(kind), amount, description)
	if err != nil {
		return nil, mapError(msg, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		return nil, mapError(msg, err)
	}
	txn := toDomainTransaction(m)
	return &txn, nil
}

// GetTransactionsByAccount returns the ledger newest-first; id breaks ties
// between rows sharing a timestamp.
func (r *PgxTransactionRepository) GetTransactionsByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	msg := fmt.Sprintf("failed to list transactions of account %d", accountID)
	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE account_id = $1 ORDER BY created_at DESC, id DESC`,
		accountID)
	if err != nil {
		return nil, mapError(msg, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		return nil, mapError(msg, err)
	}
	txns := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		txns[i] = toDomainTransaction(m)
	}
	return txns, nil
}
