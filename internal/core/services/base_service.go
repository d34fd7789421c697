package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/SscSPs/terminal_banking/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// storeFailure keeps business outcomes reported by the store as they are and
// folds every other fault into apperrors.ErrStore.
func storeFailure(msg string, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrStore),
		errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrAlreadyExists):
		return err
	default:
		return apperrors.NewStoreError(msg, err)
	}
}
