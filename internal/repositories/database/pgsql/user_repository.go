package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/terminal_banking/internal/core/domain"
	portsrepo "github.com/SscSPs/terminal_banking/internal/core/ports/repositories"
	"github.com/SscSPs/terminal_banking/internal/models"
	"github.com/jackc/pgx/v5"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db Querier) *PgxUserRepository {
	return &PgxUserRepository{BaseRepository{db: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const userColumns = `id, username, password_hash, email, created_at`

// Helper to convert models.User to domain.User
func toDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:       m.UserID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Email:        m.Email,
		CreatedAt:    m.CreatedAt,
	}
}

func (r *PgxUserRepository) queryUser(ctx context.Context, msg, query string, args ...any) (*domain.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(msg, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, mapError(msg, err)
	}
	user := toDomainUser(m)
	return &user, nil
}

func (r *PgxUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.queryUser(ctx, "failed to find user by username",
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *PgxUserRepository) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	return r.queryUser(ctx, fmt.Sprintf("failed to find user %d", userID),
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

func (r *PgxUserRepository) CreateUser(ctx context.Context, username, passwordHash, email string) (*domain.User, error) {
	return r.queryUser(ctx, "failed to create user",
		`INSERT INTO users (username, password_hash, email) VALUES ($1, $2, $3) RETURNING `+userColumns,
		username, passwordHash, email)
}
