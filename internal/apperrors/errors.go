package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrAlreadyExists indicates that an attempt was made to create a resource that already exists.
var ErrAlreadyExists = errors.New("resource already exists")

// ErrInvalidAmount indicates a non-positive, over-precise or out-of-range amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInsufficientFunds indicates a debit larger than the available balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidCredentials indicates a failed password check.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNotAuthenticated indicates an operation that requires a logged-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrSameAccount indicates a transfer whose source and target are the same account.
var ErrSameAccount = errors.New("cannot transfer to the same account")

// ErrStore indicates an underlying persistence failure.
var ErrStore = errors.New("store error")

// AppError carries a transport status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewStoreError wraps a persistence fault so that errors.Is(err, ErrStore) holds
// while the original cause stays reachable through errors.Is / errors.As.
func NewStoreError(message string, cause error) error {
	wrapped := ErrStore
	if cause != nil {
		wrapped = fmt.Errorf("%w: %w", ErrStore, cause)
	}
	return NewAppError(http.StatusInternalServerError, message, wrapped)
}

// StatusCode maps an error from the taxonomy onto an HTTP status code.
func StatusCode(err error) int {
	var appErr *AppError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrValidation), errors.Is(err, ErrSameAccount):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.As(err, &appErr) && appErr.Code != 0:
		return appErr.Code
	default:
		return http.StatusInternalServerError
	}
}
