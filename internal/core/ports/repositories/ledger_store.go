package repositories

// LedgerStore is the durable storage consumed by the ledger and user services.
type LedgerStore interface {
	UserRepositoryFacade
	AccountRepositoryFacade
	TransactionRepositoryFacade
	TransactionManager
}
