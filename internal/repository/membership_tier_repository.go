package repository

import (
	"context"

	"github.com/GervaisJosh/ClubCuvee-sub002/internal/domain"
)

// MembershipTierRepository defines the interface for membership tier
// data access. Tiers are owned exclusively by their restaurant.
type MembershipTierRepository interface {
	// CreateBatch inserts all tiers in one round trip
	CreateBatch(ctx context.Context, tiers []*domain.MembershipTier) error
	// ListByRestaurant retrieves all tiers for a restaurant
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*domain.MembershipTier, error)
	// UpdatePrice updates a tier's customer-facing price and its Stripe
	// price reference. Used by the tier re-pricing flow.
	UpdatePrice(ctx context.Context, tierID, price, stripePriceID string) error
	// DeleteByRestaurant removes all tiers for a restaurant and returns
	// the number of rows deleted. Used by onboarding rollback.
	DeleteByRestaurant(ctx context.Context, restaurantID string) (int64, error)
}
