package pgsql

import (
	"context"
	"errors"

	portsrepo "github.com/SscSPs/terminal_banking/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the PostgreSQL LedgerStore. A Store returned to a RunInTx callback is
// bound to that transaction.
type Store struct {
	*PgxUserRepository
	*PgxAccountRepository
	*PgxTransactionRepository
	base BaseRepository
	pool txBeginner
	inTx bool
}

// NewStore creates a ledger store backed by the pool.
func NewStore(pool *pgxpool.Pool) *Store {
	s := newStore(pool, false)
	s.pool = pool
	return s
}

func newStore(db Querier, inTx bool) *Store {
	return &Store{
		PgxUserRepository:        newPgxUserRepository(db),
		PgxAccountRepository:     newPgxAccountRepository(db),
		PgxTransactionRepository: newPgxTransactionRepository(db),
		base:                     BaseRepository{db: db},
		inTx:                     inTx,
	}
}

var _ portsrepo.LedgerStore = (*Store)(nil)

// RunInTx runs fn in one database transaction, committing only when fn returns
// nil. Calls on a transaction-bound store join the current transaction.
func (s *Store) RunInTx(ctx context.Context, fn portsrepo.TxFunc) (err error) {
	if s.inTx {
		return fn(ctx, s)
	}

	tx, err := s.base.Begin(ctx, s.pool)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := s.base.Rollback(ctx, tx); rbErr != nil {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if err = fn(ctx, newStore(tx, true)); err != nil {
		return err
	}
	return s.base.Commit(ctx, tx)
}
