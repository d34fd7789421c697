package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates the direction of a ledger row.
type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	return t == Deposit || t == Withdrawal
}

// Transaction is an immutable ledger row. Amount is signed: positive for deposits,
// negative for withdrawals.
type Transaction struct {
	TransactionID   int64           `json:"transactionID"`
	AccountID       int64           `json:"accountID"`
	TransactionType TransactionType `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// SumAmounts returns the signed total of the given ledger rows.
func SumAmounts(txns []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}
