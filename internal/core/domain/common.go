package domain

import "github.com/shopspring/decimal"

// Column limits of the persisted schema: DECIMAL(10,2) for money, DECIMAL(5,2) for rates.
const (
	MoneyScale = 2
)

var (
	// MaxAmount is the largest value a DECIMAL(10,2) column can hold.
	MaxAmount = decimal.RequireFromString("99999999.99")
	// MaxInterestRate is the largest value a DECIMAL(5,2) column can hold.
	MaxInterestRate = decimal.RequireFromString("999.99")

	hundred = decimal.NewFromInt(100)
)
