package gateway

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeGateway implements ProductGateway using the Stripe API
type StripeGateway struct {
	api *client.API
	cfg *GatewayConfig
}

// NewStripeGateway creates a new StripeGateway
func NewStripeGateway(cfg *GatewayConfig) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeGateway{api: api, cfg: cfg}
}

// CreateProduct creates a Stripe product
func (g *StripeGateway) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	params := &stripe.ProductParams{
		Params: stripe.Params{Context: ctx},
		Name:   stripe.String(req.Name),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	product, err := g.api.Products.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe product creation failed: %w", err)
	}

	return &ProductResponse{
		ProductID: product.ID,
		Name:      product.Name,
		Active:    product.Active,
	}, nil
}

// CreatePrice creates a recurring monthly Stripe price on a product
func (g *StripeGateway) CreatePrice(ctx context.Context, req *CreatePriceRequest) (*PriceResponse, error) {
	params := &stripe.PriceParams{
		Params:     stripe.Params{Context: ctx},
		Product:    stripe.String(req.ProductID),
		UnitAmount: stripe.Int64(req.UnitAmount),
		Currency:   stripe.String(req.Currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
		},
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	price, err := g.api.Prices.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe price creation failed: %w", err)
	}

	return &PriceResponse{
		PriceID:    price.ID,
		ProductID:  req.ProductID,
		UnitAmount: price.UnitAmount,
		Currency:   string(price.Currency),
	}, nil
}

// DeactivateProduct marks a Stripe product inactive
func (g *StripeGateway) DeactivateProduct(ctx context.Context, productID string) error {
	params := &stripe.ProductParams{
		Params: stripe.Params{Context: ctx},
		Active: stripe.Bool(false),
	}
	if _, err := g.api.Products.Update(productID, params); err != nil {
		return fmt.Errorf("stripe product deactivation failed: %w", err)
	}
	return nil
}

// DeactivatePrice marks a Stripe price inactive. Stripe prices cannot be
// deleted once created, only deactivated.
func (g *StripeGateway) DeactivatePrice(ctx context.Context, priceID string) error {
	params := &stripe.PriceParams{
		Params: stripe.Params{Context: ctx},
		Active: stripe.Bool(false),
	}
	if _, err := g.api.Prices.Update(priceID, params); err != nil {
		return fmt.Errorf("stripe price deactivation failed: %w", err)
	}
	return nil
}

// DeleteProduct permanently deletes a Stripe product
func (g *StripeGateway) DeleteProduct(ctx context.Context, productID string) error {
	params := &stripe.ProductParams{
		Params: stripe.Params{Context: ctx},
	}
	if _, err := g.api.Products.Del(productID, params); err != nil {
		return fmt.Errorf("stripe product deletion failed: %w", err)
	}
	return nil
}

// Name returns the gateway name
func (g *StripeGateway) Name() string {
	return "stripe"
}
