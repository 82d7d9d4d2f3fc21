package repository

import (
	"context"

	"github.com/GervaisJosh/ClubCuvee-sub002/internal/domain"
)

// RestaurantRepository defines the interface for restaurant data access
type RestaurantRepository interface {
	// Create creates a new restaurant
	Create(ctx context.Context, restaurant *domain.Restaurant) error
	// GetByID retrieves a restaurant by ID. Returns (nil, nil) when no
	// restaurant matches.
	GetByID(ctx context.Context, id string) (*domain.Restaurant, error)
	// SetRegistrationComplete marks the restaurant as fully provisioned
	SetRegistrationComplete(ctx context.Context, id string) error
	// Delete removes a restaurant row. Used by onboarding rollback.
	Delete(ctx context.Context, id string) error
}
