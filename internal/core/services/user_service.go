package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/terminal_banking/internal/apperrors"
	"github.com/SscSPs/terminal_banking/internal/core/domain"
	portsrepo "github.com/SscSPs/terminal_banking/internal/core/ports/repositories"
	"github.com/SscSPs/terminal_banking/internal/utils"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the bcrypt input limit; validator's max counts runes.
const maxPasswordBytes = 72

type registration struct {
	Username string `validate:"required,min=3,max=50"`
	Password string `validate:"required,min=8,max=72"`
	Email    string `validate:"required,email,max=255"`
}

// UserService registers and authenticates users and opens sessions for them.
type UserService struct {
	BaseService
	store      portsrepo.LedgerStore
	ledger     *LedgerService
	validate   *validator.Validate
	bcryptCost int
}

// UserOption configures a UserService.
type UserOption func(*UserService)

// WithBcryptCost overrides the bcrypt work factor used for new password hashes.
func WithBcryptCost(cost int) UserOption {
	return func(s *UserService) {
		s.bcryptCost = cost
	}
}

// NewUserService creates a user service. Sessions it opens use ledger for
// account operations.
func NewUserService(store portsrepo.LedgerStore, ledger *LedgerService, opts ...UserOption) *UserService {
	s := &UserService{
		store:      store,
		ledger:     ledger,
		validate:   validator.New(),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with a bcrypt hash of password.
func (s *UserService) Register(ctx context.Context, username, password, email string) (*domain.User, error) {
	in := registration{
		Username: strings.TrimSpace(username),
		Password: password,
		Email:    strings.TrimSpace(email),
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, describeValidation(err))
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", apperrors.ErrValidation, maxPasswordBytes)
	}

	_, err := s.store.GetUserByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: username %q is taken", apperrors.ErrAlreadyExists, in.Username)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, storeFailure("failed to look up username", err)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, in.Username, hash, in.Email)
	if err != nil {
		s.LogError(ctx, err, "Failed to create user", slog.String("username", in.Username))
		return nil, storeFailure("failed to create user", err)
	}
	s.LogInfo(ctx, "User registered", slog.Int64("user_id", user.UserID), slog.String("username", user.Username))
	return user, nil
}

// Login verifies the password and opens a session for the user.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
		}
		return nil, storeFailure("failed to look up user", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogInfo(ctx, "Login rejected", slog.String("username", user.Username))
		return nil, apperrors.ErrInvalidCredentials
	}

	s.LogInfo(ctx, "User logged in", slog.Int64("user_id", user.UserID))
	return s.openSession(user), nil
}

// SessionForUser opens a session for an already authenticated user id.
func (s *UserService) SessionForUser(ctx context.Context, userID int64) (*Session, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrNotAuthenticated, err)
		}
		return nil, storeFailure("failed to load user", err)
	}
	return s.openSession(user), nil
}

// NewSession returns an anonymous session bound to this service.
func (s *UserService) NewSession() *Session {
	return &Session{store: s.store, ledger: s.ledger}
}

func (s *UserService) openSession(user *domain.User) *Session {
	session := s.NewSession()
	session.user = user
	return session
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
