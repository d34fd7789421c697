package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/SscSPs/terminal_banking/internal/core/domain"
	portsrepo "github.com/SscSPs/terminal_banking/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// Session is the identity and selected account of one client. Sessions are
// independent of each other; several may be open in one process.
type Session struct {
	BaseService
	store  portsrepo.LedgerStore
	ledger *LedgerService

	mu      sync.RWMutex
	user    *domain.User
	current *Account
}

// User returns the logged-in user.
func (s *Session) User() (*domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user != nil
}

// Authenticated reports whether a user is logged in.
func (s *Session) Authenticated() bool {
	_, ok := s.User()
	return ok
}

// Logout clears the identity and the selected account.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.current = nil
}

// CreateAccount opens a zero-balance account for the logged-in user. Checking
// accounts always carry a zero interest rate.
func (s *Session) CreateAccount(ctx context.Context, accountType domain.AccountType, interestRate decimal.Decimal) (*Account, error) {
	user, ok := s.User()
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}
	if accountType != domain.Savings && accountType != domain.Checking {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, accountType)
	}
	if accountType == domain.Checking {
		interestRate = decimal.Zero
	}
	if err := domain.ValidateInterestRate(interestRate); err != nil {
		return nil, err
	}

	acc, err := s.store.CreateAccount(ctx, user.UserID, accountType, interestRate)
	if err != nil {
		s.LogError(ctx, err, "Failed to create account", slog.Int64("user_id", user.UserID))
		return nil, storeFailure("failed to create account", err)
	}
	s.LogInfo(ctx, "Account created",
		slog.Int64("user_id", user.UserID),
		slog.Int64("account_id", acc.AccountID),
		slog.String("account_type", string(acc.AccountType)))
	return s.ledger.bind(*acc), nil
}

// Accounts lists the accounts of the logged-in user; none when logged out.
func (s *Session) Accounts(ctx context.Context) ([]domain.Account, error) {
	user, ok := s.User()
	if !ok {
		return []domain.Account{}, nil
	}
	accounts, err := s.store.GetAccountsByUserID(ctx, user.UserID)
	if err != nil {
		return nil, storeFailure("failed to list accounts", err)
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// LoadOwnedAccount loads an account by id and checks that the logged-in user owns
// it. Accounts of other users are reported as not found.
func (s *Session) LoadOwnedAccount(ctx context.Context, accountID int64) (*Account, error) {
	user, ok := s.User()
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}
	acc, err := s.ledger.LoadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.UserID != user.UserID {
		s.LogInfo(ctx, "Account access denied",
			slog.Int64("user_id", user.UserID),
			slog.Int64("account_id", accountID))
		return nil, fmt.Errorf("%w: account %d", apperrors.ErrNotFound, accountID)
	}
	return acc, nil
}

// SelectAccount makes an owned account the current one.
func (s *Session) SelectAccount(ctx context.Context, accountID int64) (*Account, error) {
	acc, err := s.LoadOwnedAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = acc
	return acc, nil
}

// CurrentAccount returns the selected account.
func (s *Session) CurrentAccount() (*Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// LoadAccount loads any account by id, e.g. the target of a transfer.
func (s *Session) LoadAccount(ctx context.Context, accountID int64) (*Account, error) {
	if !s.Authenticated() {
		return nil, apperrors.ErrNotAuthenticated
	}
	return s.ledger.LoadAccount(ctx, accountID)
}
