package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GervaisJosh/ClubCuvee-sub002/internal/domain"
)

// PostgresRestaurantRepository implements RestaurantRepository using PostgreSQL
type PostgresRestaurantRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRestaurantRepository creates a new PostgresRestaurantRepository
func NewPostgresRestaurantRepository(pool *pgxpool.Pool) *PostgresRestaurantRepository {
	return &PostgresRestaurantRepository{pool: pool}
}

// Create creates a new restaurant
func (r *PostgresRestaurantRepository) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	query := `
		INSERT INTO restaurants (id, name, website, admin_email, logo_url, subscription_tier, registration_complete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		restaurant.ID,
		restaurant.Name,
		nullStringOrValue(restaurant.Website),
		restaurant.AdminEmail,
		nullStringOrValue(restaurant.LogoURL),
		restaurant.SubscriptionTier,
		restaurant.RegistrationComplete,
		restaurant.CreatedAt,
		restaurant.UpdatedAt,
	)
	return err
}

// GetByID retrieves a restaurant by ID
func (r *PostgresRestaurantRepository) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	query := `
		SELECT id, name, COALESCE(website, '') as website, admin_email,
		       COALESCE(logo_url, '') as logo_url, subscription_tier,
		       registration_complete, created_at, updated_at
		FROM restaurants
		WHERE id = $1
	`
	restaurant := &domain.Restaurant{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.Website,
		&restaurant.AdminEmail,
		&restaurant.LogoURL,
		&restaurant.SubscriptionTier,
		&restaurant.RegistrationComplete,
		&restaurant.CreatedAt,
		&restaurant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return restaurant, nil
}

// SetRegistrationComplete marks the restaurant as fully provisioned
func (r *PostgresRestaurantRepository) SetRegistrationComplete(ctx context.Context, id string) error {
	query := `
		UPDATE restaurants
		SET registration_complete = true, updated_at = $2
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("restaurant not found")
	}
	return nil
}

// Delete removes a restaurant row
func (r *PostgresRestaurantRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM restaurants WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("restaurant not found")
	}
	return nil
}

// nullStringOrValue returns nil for empty strings, otherwise returns the value
func nullStringOrValue(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
