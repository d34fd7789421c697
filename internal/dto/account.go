package dto

import (
	"time"

	"github.com/SscSPs/terminal_banking/internal/core/domain"
)

// CreateAccountRequest defines the data needed to open an account. InterestRate
// is a percentage; when omitted Savings accounts get the configured rate.
type CreateAccountRequest struct {
	AccountType  string `json:"accountType" binding:"required,oneof=Savings Checking savings checking"`
	InterestRate string `json:"interestRate"`
}

// AmountRequest carries a money amount as a decimal string, e.g. "12.50".
type AmountRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description" binding:"max=255"`
}

// TransferRequest moves an amount to another account.
type TransferRequest struct {
	TargetAccountID int64  `json:"targetAccountID" binding:"required,gt=0"`
	Amount          string `json:"amount" binding:"required"`
	Description     string `json:"description" binding:"max=255"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID    int64              `json:"accountID"`
	UserID       int64              `json:"userID"`
	AccountType  domain.AccountType `json:"accountType"`
	Balance      string             `json:"balance"`
	InterestRate string             `json:"interestRate"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// ListAccountsResponse wraps the accounts of the caller.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:    acc.AccountID,
		UserID:       acc.UserID,
		AccountType:  acc.AccountType,
		Balance:      acc.Balance.StringFixed(domain.MoneyScale),
		InterestRate: acc.InterestRate.StringFixed(domain.MoneyScale),
		CreatedAt:    acc.CreatedAt,
	}
}

// ToListAccountsResponse converts a slice of domain.Account to ListAccountsResponse DTO
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	resp := ListAccountsResponse{Accounts: make([]AccountResponse, len(accounts))}
	for i := range accounts {
		resp.Accounts[i] = ToAccountResponse(&accounts[i])
	}
	return resp
}
