package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/auth-service/internal/domain"
)

// InvitationRepository manages pending registration invitations.
type InvitationRepository interface {
	Create(ctx context.Context, invitation *domain.Invitation) error
	GetByID(ctx context.Context, id string) (*domain.Invitation, error)
	Delete(ctx context.Context, id string) error
}

type invitationRepository struct {
	pool *pgxpool.Pool
}

// NewInvitationRepository constructs repository.
func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &invitationRepository{pool: pool}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *domain.Invitation) error {
	if r.pool == nil {
		return ErrNoDatabase
	}
	const query = `
        INSERT INTO invitations (id, email, expires_at)
        VALUES ($1, $2, $3)`
	_, err := r.pool.Exec(ctx, query,
		invitation.ID,
		invitation.Email,
		invitation.ExpiresAt,
	)
	return err
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	if r.pool == nil {
		return nil, ErrNoDatabase
	}
	const query = `
        SELECT id::text, email, expires_at
        FROM invitations WHERE id=$1`
	var invitation domain.Invitation
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&invitation.ID,
		&invitation.Email,
		&invitation.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	if r.pool == nil {
		return ErrNoDatabase
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM invitations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
