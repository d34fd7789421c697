package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/SscSPs/terminal_banking/internal/core/domain"
	"github.com/SscSPs/terminal_banking/internal/core/ports/events"
	portsrepo "github.com/SscSPs/terminal_banking/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// LedgerService mediates every balance change. Each change is paired with exactly
// one ledger row inside a single store transaction.
type LedgerService struct {
	BaseService
	store     portsrepo.LedgerStore
	publisher events.Publisher
	locks     *accountLocks
}

// LedgerOption configures a LedgerService.
type LedgerOption func(*LedgerService)

// WithPublisher sets the publisher that receives an event for every committed ledger row.
func WithPublisher(publisher events.Publisher) LedgerOption {
	return func(s *LedgerService) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// NewLedgerService creates a ledger service on top of the given store.
func NewLedgerService(store portsrepo.LedgerStore, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		store:     store,
		publisher: events.NoopPublisher{},
		locks:     newAccountLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadAccount fetches the authoritative copy of an account by its primary key.
func (s *LedgerService) LoadAccount(ctx context.Context, accountID int64) (*Account, error) {
	acc, err := s.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, storeFailure("failed to load account", err)
	}
	return s.bind(*acc), nil
}

func (s *LedgerService) bind(acc domain.Account) *Account {
	return &Account{Account: acc, ledger: s}
}

// recordLeg applies delta to the account balance and appends the matching ledger
// row as one atomic unit. The caller must hold the account lock.
func (s *LedgerService) recordLeg(ctx context.Context, acc *Account, kind domain.TransactionType, delta decimal.Decimal, description string) (*domain.Transaction, error) {
	var (
		newBalance decimal.Decimal
		txn        *domain.Transaction
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerStore) error {
		balance, err := tx.UpdateBalance(ctx, acc.AccountID, delta)
		if err != nil {
			return err
		}
		recorded, err := tx.AddTransaction(ctx, acc.AccountID, kind, delta, description)
		if err != nil {
			return err
		}
		newBalance, txn = balance, recorded
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Ledger leg failed",
			slog.Int64("account_id", acc.AccountID),
			slog.String("kind", string(kind)),
			slog.String("amount", delta.StringFixed(domain.MoneyScale)))
		return nil, storeFailure(fmt.Sprintf("failed to record %s on account %d", kind, acc.AccountID), err)
	}

	acc.Balance = newBalance
	s.LogInfo(ctx, "Ledger leg recorded",
		slog.Int64("account_id", acc.AccountID),
		slog.Int64("transaction_id", txn.TransactionID),
		slog.String("kind", string(kind)),
		slog.String("amount", delta.StringFixed(domain.MoneyScale)),
		slog.String("balance", newBalance.StringFixed(domain.MoneyScale)))
	s.publish(ctx, txn)
	return txn, nil
}

func (s *LedgerService) publish(ctx context.Context, txn *domain.Transaction) {
	err := s.publisher.PublishTransaction(ctx, events.TransactionRecorded{
		TransactionID: txn.TransactionID,
		AccountID:     txn.AccountID,
		Kind:          string(txn.TransactionType),
		Amount:        txn.Amount,
		Description:   txn.Description,
		CreatedAt:     txn.CreatedAt,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to publish ledger event", slog.Int64("transaction_id", txn.TransactionID))
	}
}

func (s *LedgerService) transactions(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	txns, err := s.store.GetTransactionsByAccount(ctx, accountID)
	if err != nil {
		return nil, storeFailure("failed to list transactions", err)
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return txns, nil
}

var errAccountNotLoaded = fmt.Errorf("%w: account not loaded", apperrors.ErrNotFound)
