package services_test

import (
	"context"
	"errors"
	"sync"

	"github.com/SscSPs/terminal_banking/internal/core/domain"
	"github.com/SscSPs/terminal_banking/internal/core/ports/events"
	portsrepo "github.com/SscSPs/terminal_banking/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockLedgerStore is a mock type for the LedgerStore interface
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockLedgerStore) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockLedgerStore) CreateUser(ctx context.Context, username, passwordHash, email string) (*domain.User, error) {
	args := m.Called(ctx, username, passwordHash, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockLedgerStore) GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerStore) GetAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockLedgerStore) CreateAccount(ctx context.Context, userID int64, accountType domain.AccountType, interestRate decimal.Decimal) (*domain.Account, error) {
	args := m.Called(ctx, userID, accountType, interestRate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockLedgerStore) UpdateBalance(ctx context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerStore) AddTransaction(ctx context.Context, accountID int64, kind domain.TransactionType, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, kind, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerStore) GetTransactionsByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// RunInTx runs fn against the mock itself.
func (m *MockLedgerStore) RunInTx(ctx context.Context, fn portsrepo.TxFunc) error {
	return fn(ctx, m)
}

var errConnectionReset = errors.New("connection reset by peer")

// faultyStore fails AddTransaction for credits to the listed accounts, after the
// balance update of the same unit has already been applied.
type faultyStore struct {
	portsrepo.LedgerStore
	failCreditsTo map[int64]bool
}

func (f *faultyStore) RunInTx(ctx context.Context, fn portsrepo.TxFunc) error {
	return f.LedgerStore.RunInTx(ctx, func(ctx context.Context, tx portsrepo.LedgerStore) error {
		return fn(ctx, &faultyStore{LedgerStore: tx, failCreditsTo: f.failCreditsTo})
	})
}

func (f *faultyStore) AddTransaction(ctx context.Context, accountID int64, kind domain.TransactionType, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if f.failCreditsTo[accountID] && amount.IsPositive() {
		return nil, errConnectionReset
	}
	return f.LedgerStore.AddTransaction(ctx, accountID, kind, amount, description)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.TransactionRecorded
	err    error
}

func (p *recordingPublisher) PublishTransaction(_ context.Context, event events.TransactionRecorded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []events.TransactionRecorded {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.TransactionRecorded(nil), p.events...)
}
