package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountID    int64           `db:"id"`
	UserID       int64           `db:"user_id"`
	AccountType  string          `db:"account_type"`
	Balance      decimal.Decimal `db:"balance"`
	InterestRate decimal.Decimal `db:"interest_rate"`
	CreatedAt    time.Time       `db:"created_at"`
}
