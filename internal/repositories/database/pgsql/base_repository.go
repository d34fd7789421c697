package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories run
// unchanged inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txBeginner starts transactions; implemented by *pgxpool.Pool.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db Querier
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context, db txBeginner) (pgx.Tx, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewStoreError("failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewStoreError("failed to rollback transaction", err)
	}
	return nil
}

// PostgreSQL error codes the store translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapError converts a driver error into the application taxonomy. Every fault
// other than a missing row is an apperrors.ErrStore.
func mapError(msg string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperrors.NewStoreError(msg, fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName))
		case pgForeignKeyViolation:
			return apperrors.NewStoreError(msg, fmt.Errorf("%w: %s", apperrors.ErrNotFound, pgErr.ConstraintName))
		case pgCheckViolation:
			return apperrors.NewStoreError(msg, fmt.Errorf("constraint %s violated: %w", pgErr.ConstraintName, err))
		}
	}
	return apperrors.NewStoreError(msg, err)
}
