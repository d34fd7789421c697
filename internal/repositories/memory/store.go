package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/SscSPs/terminal_banking/internal/core/domain"
	portsrepo "github.com/SscSPs/terminal_banking/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// Store is an in-process LedgerStore. It enforces the same constraints as the
// PostgreSQL schema: unique username and email (case-sensitive), existing owners
// and accounts, and balances within DECIMAL(10,2) that never go negative.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

type state struct {
	users        map[int64]domain.User
	accounts     map[int64]domain.Account
	transactions []domain.Transaction
	lastUserID   int64
	lastAcctID   int64
	lastTxnID    int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used for created_at values.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		state: &state{
			users:    make(map[int64]domain.User),
			accounts: make(map[int64]domain.Account),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portsrepo.LedgerStore = (*Store)(nil)

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetUserByUsername(ctx, username)
}

func (s *Store) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetUserByID(ctx, userID)
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CreateUser(ctx, username, passwordHash, email)
}

func (s *Store) GetAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetAccountByID(ctx, accountID)
}

func (s *Store) GetAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetAccountsByUserID(ctx, userID)
}

func (s *Store) CreateAccount(ctx context.Context, userID int64, accountType domain.AccountType, interestRate decimal.Decimal) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CreateAccount(ctx, userID, accountType, interestRate)
}

func (s *Store) UpdateBalance(ctx context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().UpdateBalance(ctx, accountID, delta)
}

func (s *Store) AddTransaction(ctx context.Context, accountID int64, kind domain.TransactionType, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().AddTransaction(ctx, accountID, kind, amount, description)
}

func (s *Store) GetTransactionsByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetTransactionsByAccount(ctx, accountID)
}

// RunInTx holds the store lock for the whole unit and restores the previous
// state when fn fails.
func (s *Store) RunInTx(ctx context.Context, fn portsrepo.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(ctx, s.view()); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) view() *txView {
	return &txView{state: s.state, now: s.now}
}

func (st *state) clone() *state {
	return &state{
		users:        maps.Clone(st.users),
		accounts:     maps.Clone(st.accounts),
		transactions: slices.Clone(st.transactions),
		lastUserID:   st.lastUserID,
		lastAcctID:   st.lastAcctID,
		lastTxnID:    st.lastTxnID,
	}
}

// txView operates on the state without locking; the owning Store holds the lock.
type txView struct {
	state *state
	now   func() time.Time
}

var _ portsrepo.LedgerStore = (*txView)(nil)

func (v *txView) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range v.state.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (v *txView) GetUserByID(_ context.Context, userID int64) (*domain.User, error) {
	u, ok := v.state.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (v *txView) CreateUser(_ context.Context, username, passwordHash, email string) (*domain.User, error) {
	for _, u := range v.state.users {
		if u.Username == username {
			return nil, apperrors.NewStoreError("username already exists", apperrors.ErrAlreadyExists)
		}
		if u.Email == email {
			return nil, apperrors.NewStoreError("email already exists", apperrors.ErrAlreadyExists)
		}
	}
	v.state.lastUserID++
	u := domain.User{
		UserID:       v.state.lastUserID,
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		CreatedAt:    v.now(),
	}
	v.state.users[u.UserID] = u
	return &u, nil
}

func (v *txView) GetAccountByID(_ context.Context, accountID int64) (*domain.Account, error) {
	a, ok := v.state.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (v *txView) GetAccountsByUserID(_ context.Context, userID int64) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0)
	for _, a := range v.state.accounts {
		if a.UserID == userID {
			accounts = append(accounts, a)
		}
	}
	slices.SortFunc(accounts, func(a, b domain.Account) int {
		return cmp.Compare(a.AccountID, b.AccountID)
	})
	return accounts, nil
}

func (v *txView) CreateAccount(_ context.Context, userID int64, accountType domain.AccountType, interestRate decimal.Decimal) (*domain.Account, error) {
	if _, ok := v.state.users[userID]; !ok {
		return nil, apperrors.NewStoreError("account owner does not exist", fmt.Errorf("user %d: %w", userID, apperrors.ErrNotFound))
	}
	v.state.lastAcctID++
	a := domain.Account{
		AccountID:    v.state.lastAcctID,
		UserID:       userID,
		AccountType:  accountType,
		Balance:      decimal.Zero,
		InterestRate: interestRate,
		CreatedAt:    v.now(),
	}
	v.state.accounts[a.AccountID] = a
	return &a, nil
}

func (v *txView) UpdateBalance(_ context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	a, ok := v.state.accounts[accountID]
	if !ok {
		return decimal.Zero, apperrors.ErrNotFound
	}
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, apperrors.ErrInsufficientFunds
	}
	if next.GreaterThan(domain.MaxAmount) {
		return decimal.Zero, apperrors.NewStoreError("balance out of range",
			fmt.Errorf("account %d: %s exceeds %s", accountID, next, domain.MaxAmount))
	}
	a.Balance = next
	v.state.accounts[accountID] = a
	return next, nil
}

func (v *txView) AddTransaction(_ context.Context, accountID int64, kind domain.TransactionType, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if _, ok := v.state.accounts[accountID]; !ok {
		return nil, apperrors.NewStoreError("transaction account does not exist", fmt.Errorf("account %d: %w", accountID, apperrors.ErrNotFound))
	}
	if !kind.IsValid() {
		return nil, apperrors.NewStoreError("invalid transaction type", fmt.Errorf("%q", kind))
	}
	v.state.lastTxnID++
	t := domain.Transaction{
		TransactionID:   v.state.lastTxnID,
		AccountID:       accountID,
		TransactionType: kind,
		Amount:          amount,
		Description:     description,
		CreatedAt:       v.now(),
	}
	v.state.transactions = append(v.state.transactions, t)
	return &t, nil
}

// GetTransactionsByAccount orders by created_at then id, both descending.
func (v *txView) GetTransactionsByAccount(_ context.Context, accountID int64) ([]domain.Transaction, error) {
	txns := make([]domain.Transaction, 0)
	for _, t := range v.state.transactions {
		if t.AccountID == accountID {
			txns = append(txns, t)
		}
	}
	slices.SortStableFunc(txns, func(a, b domain.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.TransactionID, a.TransactionID)
	})
	return txns, nil
}

// RunInTx on a view joins the enclosing unit.
func (v *txView) RunInTx(ctx context.Context, fn portsrepo.TxFunc) error {
	return fn(ctx, v)
}
