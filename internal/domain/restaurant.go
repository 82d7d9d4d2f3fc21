package domain

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant represents an onboarded wine-club business.
// RegistrationComplete stays false until every membership tier has a
// corresponding payment product and price and has been persisted.
type Restaurant struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Website              string    `json:"website,omitempty"`
	AdminEmail           string    `json:"admin_email"`
	LogoURL              string    `json:"logo_url,omitempty"`
	SubscriptionTier     string    `json:"subscription_tier"`
	RegistrationComplete bool      `json:"registration_complete"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewRestaurant creates a restaurant in its initial, not-yet-provisioned state
func NewRestaurant(name, website, adminEmail, logoURL, subscriptionTier string) *Restaurant {
	now := time.Now()
	return &Restaurant{
		ID:                   uuid.New().String(),
		Name:                 name,
		Website:              website,
		AdminEmail:           adminEmail,
		LogoURL:              logoURL,
		SubscriptionTier:     subscriptionTier,
		RegistrationComplete: false,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}
