package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GervaisJosh/ClubCuvee-sub002/internal/domain"
)

// PostgresMembershipTierRepository implements MembershipTierRepository using PostgreSQL
type PostgresMembershipTierRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresMembershipTierRepository creates a new PostgresMembershipTierRepository
func NewPostgresMembershipTierRepository(pool *pgxpool.Pool) *PostgresMembershipTierRepository {
	return &PostgresMembershipTierRepository{pool: pool}
}

// CreateBatch inserts all tiers in one batched round trip
func (r *PostgresMembershipTierRepository) CreateBatch(ctx context.Context, tiers []*domain.MembershipTier) error {
	if len(tiers) == 0 {
		return nil
	}

	query := `
		INSERT INTO membership_tiers (id, restaurant_id, name, price, description, stripe_product_id, stripe_price_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	batch := &pgx.Batch{}
	for _, tier := range tiers {
		batch.Queue(query,
			tier.ID,
			tier.RestaurantID,
			tier.Name,
			tier.Price,
			nullStringOrValue(tier.Description),
			tier.StripeProductID,
			tier.StripePriceID,
			tier.CreatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range tiers {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert membership tier: %w", err)
		}
	}
	return nil
}

// ListByRestaurant retrieves all tiers for a restaurant
func (r *PostgresMembershipTierRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*domain.MembershipTier, error) {
	query := `
		SELECT id, restaurant_id, name, price::text, COALESCE(description, '') as description,
		       stripe_product_id, stripe_price_id, created_at
		FROM membership_tiers
		WHERE restaurant_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := make([]*domain.MembershipTier, 0)
	for rows.Next() {
		tier := &domain.MembershipTier{}
		err := rows.Scan(
			&tier.ID,
			&tier.RestaurantID,
			&tier.Name,
			&tier.Price,
			&tier.Description,
			&tier.StripeProductID,
			&tier.StripePriceID,
			&tier.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}

// UpdatePrice updates a tier's price and its Stripe price reference
func (r *PostgresMembershipTierRepository) UpdatePrice(ctx context.Context, tierID, price, stripePriceID string) error {
	query := `
		UPDATE membership_tiers
		SET price = $2, stripe_price_id = $3
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, tierID, price, stripePriceID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("membership tier not found")
	}
	return nil
}

// DeleteByRestaurant removes all tiers for a restaurant
func (r *PostgresMembershipTierRepository) DeleteByRestaurant(ctx context.Context, restaurantID string) (int64, error) {
	query := `DELETE FROM membership_tiers WHERE restaurant_id = $1`
	result, err := r.pool.Exec(ctx, query, restaurantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
