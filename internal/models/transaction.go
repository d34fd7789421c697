package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the append-only transactions table. Amount is signed.
type Transaction struct {
	TransactionID   int64           `db:"id"`
	AccountID       int64           `db:"account_id"`
	TransactionType string          `db:"transaction_type"`
	Amount          decimal.Decimal `db:"amount"`
	Description     string          `db:"description"`
	CreatedAt       time.Time       `db:"created_at"`
}
