package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecorded is emitted after a ledger row has been committed.
type TransactionRecorded struct {
	TransactionID int64           `json:"transaction_id"`
	AccountID     int64           `json:"account_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Publisher delivers ledger events to downstream consumers.
type Publisher interface {
	PublishTransaction(ctx context.Context, event TransactionRecorded) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishTransaction(context.Context, TransactionRecorded) error { return nil }

func (NoopPublisher) Close() error { return nil }
