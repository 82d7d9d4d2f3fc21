package gateway

import (
	"context"
)

// ProductGateway defines the interface for payment-provider product and
// price management. The onboarding saga depends only on this interface,
// never on a concrete provider client, so compensating rollback can be
// exercised against fakes.
type ProductGateway interface {
	// CreateProduct creates a provider product for one membership tier
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error)

	// CreatePrice creates a recurring monthly price on a product
	CreatePrice(ctx context.Context, req *CreatePriceRequest) (*PriceResponse, error)

	// DeactivateProduct flips a product's active flag to false.
	// Used by tier-update flows; provisioned tiers keep their history.
	DeactivateProduct(ctx context.Context, productID string) error

	// DeactivatePrice flips a price's active flag to false
	DeactivatePrice(ctx context.Context, priceID string) error

	// DeleteProduct permanently deletes a product. Used by rollback.
	DeleteProduct(ctx context.Context, productID string) error

	// Name returns the gateway name
	Name() string
}

// CreateProductRequest represents a product creation request.
// IdempotencyKey, when set, makes provider-side retries safe: the same
// key always yields the same product.
type CreateProductRequest struct {
	Name           string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

// ProductResponse represents a created product
type ProductResponse struct {
	ProductID string
	Name      string
	Active    bool
}

// CreatePriceRequest represents a recurring price creation request.
// UnitAmount is denominated in the smallest currency unit.
type CreatePriceRequest struct {
	ProductID      string
	UnitAmount     int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

// PriceResponse represents a created price
type PriceResponse struct {
	PriceID    string
	ProductID  string
	UnitAmount int64
	Currency   string
}

// GatewayConfig holds common gateway configuration
type GatewayConfig struct {
	SecretKey     string
	WebhookSecret string
	Environment   string // "test" or "live"
}
