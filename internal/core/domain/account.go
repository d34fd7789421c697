package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccountType defines the product type of an account.
type AccountType string

const (
	Savings  AccountType = "Savings"
	Checking AccountType = "Checking"
)

// ParseAccountType accepts the account type case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "savings":
		return Savings, nil
	case "checking":
		return Checking, nil
	default:
		return "", fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, s)
	}
}

// Account is the persisted state of one account.
type Account struct {
	AccountID    int64           `json:"accountID"`
	UserID       int64           `json:"userID"`
	AccountType  AccountType     `json:"accountType"`
	Balance      decimal.Decimal `json:"balance"`
	InterestRate decimal.Decimal `json:"interestRate"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// CalculateInterest returns balance × rate/100 rounded to cents for Savings
// accounts and zero for every other type.
func (a Account) CalculateInterest() decimal.Decimal {
	if !strings.EqualFold(string(a.AccountType), string(Savings)) {
		return decimal.Zero
	}
	return a.Balance.Mul(a.InterestRate.Div(hundred)).Round(MoneyScale)
}

// ValidateAmount checks that amount is a positive value representable in a
// DECIMAL(10,2) column.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: amount %s has more than %d decimal places", apperrors.ErrInvalidAmount, amount, MoneyScale)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: amount %s exceeds %s", apperrors.ErrInvalidAmount, amount, MaxAmount)
	}
	return nil
}

// ValidateInterestRate checks that rate is a non-negative DECIMAL(5,2) percentage.
func ValidateInterestRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: interest rate cannot be negative", apperrors.ErrValidation)
	}
	if rate.GreaterThan(MaxInterestRate) || !rate.Equal(rate.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: interest rate %s does not fit DECIMAL(5,2)", apperrors.ErrValidation, rate)
	}
	return nil
}

// ParseAmount parses user input into an amount and validates it.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", apperrors.ErrInvalidAmount, s)
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}
