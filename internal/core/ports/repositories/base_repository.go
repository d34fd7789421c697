package repositories

import "context"

// TxFunc is the unit of work executed by a TransactionManager. The store passed to
// it must be used for every operation that belongs to the unit.
type TxFunc func(ctx context.Context, tx LedgerStore) error

// TransactionManager runs a unit of work atomically: either every write made
// through the transactional store commits, or none does.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn TxFunc) error
}
