package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MembershipTier is a subscription level a restaurant sells to its own
// customers. A persisted tier always carries both Stripe ids; a tier is
// never stored half-provisioned.
type MembershipTier struct {
	ID              string    `json:"id"`
	RestaurantID    string    `json:"restaurant_id"`
	Name            string    `json:"name"`
	Price           string    `json:"price"`
	Description     string    `json:"description,omitempty"`
	StripeProductID string    `json:"stripe_product_id"`
	StripePriceID   string    `json:"stripe_price_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewMembershipTier creates a fully provisioned membership tier row
func NewMembershipTier(restaurantID string, cfg TierConfig, productID, priceID string) *MembershipTier {
	return &MembershipTier{
		ID:              uuid.New().String(),
		RestaurantID:    restaurantID,
		Name:            cfg.Name,
		Price:           cfg.Price,
		Description:     cfg.Description,
		StripeProductID: productID,
		StripePriceID:   priceID,
		CreatedAt:       time.Now(),
	}
}

// TierConfig is the caller-supplied definition of one membership tier.
// Price is a decimal string holding the customer-facing monthly amount.
type TierConfig struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// Validate checks that the tier config is usable for provisioning
func (c TierConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("tier name is required")
	}
	amount, err := strconv.ParseFloat(c.Price, 64)
	if err != nil {
		return fmt.Errorf("tier %q: invalid price %q", c.Name, c.Price)
	}
	if amount <= 0 {
		return fmt.Errorf("tier %q: price must be greater than zero", c.Name)
	}
	return nil
}

// PriceCents converts the decimal price to the smallest currency unit
func (c TierConfig) PriceCents() (int64, error) {
	amount, err := strconv.ParseFloat(c.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", c.Price, err)
	}
	return int64(math.Round(amount * 100)), nil
}

// ProductRef holds the provider-side handles for one provisioned tier.
// It exists only during orchestration so rollback can reverse the
// products it refers to; it is never persisted as its own entity.
type ProductRef struct {
	ProductID string `json:"product_id"`
	PriceID   string `json:"price_id"`
	TierName  string `json:"tier_name"`
}
