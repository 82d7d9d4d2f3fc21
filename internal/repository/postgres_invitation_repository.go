package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GervaisJosh/ClubCuvee-sub002/internal/domain"
)

// PostgresInvitationRepository implements InvitationRepository using PostgreSQL
type PostgresInvitationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresInvitationRepository creates a new PostgresInvitationRepository
func NewPostgresInvitationRepository(pool *pgxpool.Pool) *PostgresInvitationRepository {
	return &PostgresInvitationRepository{pool: pool}
}

// GetByToken retrieves an invitation by token
func (r *PostgresInvitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `
		SELECT token, email, restaurant_name, COALESCE(website, '') as website,
		       COALESCE(admin_name, '') as admin_name, COALESCE(tier, '') as tier,
		       status, restaurant_id::text, created_at, expires_at
		FROM invitations
		WHERE token = $1
	`
	inv := &domain.Invitation{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&inv.Token,
		&inv.Email,
		&inv.RestaurantName,
		&inv.Website,
		&inv.AdminName,
		&inv.Tier,
		&inv.Status,
		&inv.RestaurantID,
		&inv.CreatedAt,
		&inv.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

// TransitionStatus updates the status only when the current status matches from
func (r *PostgresInvitationRepository) TransitionStatus(ctx context.Context, token string, from, to domain.InvitationStatus) (bool, error) {
	query := `
		UPDATE invitations
		SET status = $3
		WHERE token = $1 AND status = $2
	`
	result, err := r.pool.Exec(ctx, query, token, from, to)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// MarkCompleted sets the status to completed and attaches the restaurant id
func (r *PostgresInvitationRepository) MarkCompleted(ctx context.Context, token, restaurantID string) (bool, error) {
	query := `
		UPDATE invitations
		SET status = $3, restaurant_id = $2
		WHERE token = $1 AND status NOT IN ($4, $5, $6)
	`
	result, err := r.pool.Exec(ctx, query, token, restaurantID,
		domain.InvitationCompleted, domain.InvitationCompleted, domain.InvitationExpired, domain.InvitationFailed)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// MarkFailed sets the status to failed from any non-terminal status
func (r *PostgresInvitationRepository) MarkFailed(ctx context.Context, token string) (bool, error) {
	query := `
		UPDATE invitations
		SET status = $2
		WHERE token = $1 AND status NOT IN ($3, $4, $5)
	`
	result, err := r.pool.Exec(ctx, query, token,
		domain.InvitationFailed, domain.InvitationCompleted, domain.InvitationExpired, domain.InvitationFailed)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
