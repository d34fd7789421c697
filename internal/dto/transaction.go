package dto

import (
	"time"

	"github.com/SscSPs/terminal_banking/internal/core/domain"
)

// TransactionResponse is one ledger row. Amount is signed.
type TransactionResponse struct {
	TransactionID   int64                  `json:"transactionID"`
	AccountID       int64                  `json:"accountID"`
	TransactionType domain.TransactionType `json:"transactionType"`
	Amount          string                 `json:"amount"`
	Description     string                 `json:"description"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// ListTransactionsResponse wraps a ledger ordered newest-first.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// LedgerOperationResponse reports a deposit, withdrawal or interest payment.
// Transaction is nil when no row was written.
type LedgerOperationResponse struct {
	Account     AccountResponse      `json:"account"`
	Transaction *TransactionResponse `json:"transaction"`
}

// TransferResponse reports both legs of a transfer and the new source state.
type TransferResponse struct {
	Account AccountResponse     `json:"account"`
	Debit   TransactionResponse `json:"debit"`
	Credit  TransactionResponse `json:"credit"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.TransactionID,
		AccountID:       txn.AccountID,
		TransactionType: txn.TransactionType,
		Amount:          txn.Amount.StringFixed(domain.MoneyScale),
		Description:     txn.Description,
		CreatedAt:       txn.CreatedAt,
	}
}

// ToListTransactionsResponse converts a ledger to ListTransactionsResponse DTO
func ToListTransactionsResponse(txns []domain.Transaction) ListTransactionsResponse {
	resp := ListTransactionsResponse{Transactions: make([]TransactionResponse, len(txns))}
	for i := range txns {
		resp.Transactions[i] = ToTransactionResponse(&txns[i])
	}
	return resp
}
