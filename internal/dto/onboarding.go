package dto

import (
	"github.com/GervaisJosh/ClubCuvee-sub002/internal/domain"
)

// RestaurantInput represents the restaurant attributes supplied on onboarding
type RestaurantInput struct {
	Name       string `json:"name" binding:"required,min=1,max=255"`
	Website    string `json:"website" binding:"omitempty,url"`
	AdminEmail string `json:"admin_email" binding:"required,email"`
	LogoURL    string `json:"logo_url" binding:"omitempty,max=2048"`
}

// TierConfigInput represents one desired membership tier
type TierConfigInput struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Price       string `json:"price" binding:"required"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// CompleteOnboardingRequest represents the full onboarding submission.
// The UI caps tiers at three; the core enforces only "at least one".
type CompleteOnboardingRequest struct {
	Restaurant    RestaurantInput   `json:"restaurant" binding:"required"`
	Tiers         []TierConfigInput `json:"membership_tiers" binding:"required,min=1,max=3,dive"`
	PricingTierID string            `json:"pricing_tier_id" binding:"required"`
}

// TierConfigs converts the request tiers to domain configs
func (r *CompleteOnboardingRequest) TierConfigs() []domain.TierConfig {
	configs := make([]domain.TierConfig, 0, len(r.Tiers))
	for _, t := range r.Tiers {
		configs = append(configs, domain.TierConfig{
			Name:        t.Name,
			Price:       t.Price,
			Description: t.Description,
		})
	}
	return configs
}

// OnboardingResult represents a successful onboarding
type OnboardingResult struct {
	RestaurantID string             `json:"restaurant_id"`
	ProductRefs  []domain.ProductRef `json:"product_refs"`
}

// InvitationPreview represents the invitation details shown on the
// onboarding form before submission
type InvitationPreview struct {
	RestaurantName string `json:"restaurant_name"`
	Email          string `json:"email"`
	AdminName      string `json:"admin_name,omitempty"`
	Website        string `json:"website,omitempty"`
	Tier           string `json:"tier,omitempty"`
	ExpiresAt      string `json:"expires_at"`
}

// RepriceTierRequest represents a membership tier price change
type RepriceTierRequest struct {
	Price string `json:"price" binding:"required"`
}

// MembershipTierResponse represents a membership tier in responses
type MembershipTierResponse struct {
	ID              string `json:"id"`
	RestaurantID    string `json:"restaurant_id"`
	Name            string `json:"name"`
	Price           string `json:"price"`
	Description     string `json:"description,omitempty"`
	StripeProductID string `json:"stripe_product_id"`
	StripePriceID   string `json:"stripe_price_id"`
}
