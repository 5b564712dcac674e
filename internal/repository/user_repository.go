package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/auth-service/internal/domain"
)

// UserRepository is the authoritative store of accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) (bool, error)
	Delete(ctx context.Context, email string) error
	ListValidIdentities(ctx context.Context) ([]domain.Identity, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if r.pool == nil {
		return ErrNoDatabase
	}
	const query = `
        INSERT INTO users (email, password, created_at)
        VALUES ($1, $2, NOW())
        RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
	).Scan(&user.CreatedAt)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if r.pool == nil {
		return nil, ErrNoDatabase
	}
	const query = `
        SELECT email, password, created_at
        FROM users WHERE email=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, email, passwordHash string) (bool, error) {
	if r.pool == nil {
		return false, ErrNoDatabase
	}
	const query = `UPDATE users SET password=$1 WHERE email=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, email)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *userRepository) Delete(ctx context.Context, email string) error {
	if r.pool == nil {
		return ErrNoDatabase
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE email=$1`, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListValidIdentities returns every registered email. Any row in users is
// allowed in.
func (r *userRepository) ListValidIdentities(ctx context.Context) ([]domain.Identity, error) {
	if r.pool == nil {
		return nil, ErrNoDatabase
	}
	rows, err := r.pool.Query(ctx, `SELECT email FROM users`)
	if err != nil {
		return nil, err
	}
	emails, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	identities := make([]domain.Identity, 0, len(emails))
	for _, email := range emails {
		identities = append(identities, domain.Identity(email))
	}
	return identities, nil
}
