package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/GervaisJosh/ClubCuvee-sub002/internal/domain"
	"github.com/GervaisJosh/ClubCuvee-sub002/internal/gateway"
)

var (
	// ErrMockFailure is returned when a mock is configured to fail
	ErrMockFailure = errors.New("mock failure")
)

// MockInvitationRepository is an in-memory InvitationRepository
type MockInvitationRepository struct {
	mu          sync.RWMutex
	invitations map[string]*domain.Invitation

	GetErr      error
	UpdateErr   error
	GetCalls    int
	UpdateCalls int
}

// NewMockInvitationRepository creates a new MockInvitationRepository
func NewMockInvitationRepository() *MockInvitationRepository {
	return &MockInvitationRepository{invitations: make(map[string]*domain.Invitation)}
}

// Put seeds an invitation (for testing)
func (r *MockInvitationRepository) Put(inv *domain.Invitation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invitations[inv.Token] = inv
}

// Get returns an invitation by token (for testing)
func (r *MockInvitationRepository) Get(token string) (*domain.Invitation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invitations[token]
	return inv, ok
}

// GetByToken retrieves an invitation by token
func (r *MockInvitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	r.mu.Lock()
	r.GetCalls++
	r.mu.Unlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invitations[token]
	if !ok {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

// TransitionStatus updates the status only when the current status matches from
func (r *MockInvitationRepository) TransitionStatus(ctx context.Context, token string, from, to domain.InvitationStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateCalls++
	if r.UpdateErr != nil {
		return false, r.UpdateErr
	}
	inv, ok := r.invitations[token]
	if !ok || inv.Status != from {
		return false, nil
	}
	inv.Status = to
	return true, nil
}

// MarkCompleted sets the status to completed and attaches the restaurant id
func (r *MockInvitationRepository) MarkCompleted(ctx context.Context, token, restaurantID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateCalls++
	if r.UpdateErr != nil {
		return false, r.UpdateErr
	}
	inv, ok := r.invitations[token]
	if !ok || inv.Status.IsTerminal() {
		return false, nil
	}
	inv.Status = domain.InvitationCompleted
	inv.RestaurantID = &restaurantID
	return true, nil
}

// MarkFailed sets the status to failed from any non-terminal status
func (r *MockInvitationRepository) MarkFailed(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateCalls++
	if r.UpdateErr != nil {
		return false, r.UpdateErr
	}
	inv, ok := r.invitations[token]
	if !ok || inv.Status.IsTerminal() {
		return false, nil
	}
	inv.Status = domain.InvitationFailed
	return true, nil
}

// MockRestaurantRepository is an in-memory RestaurantRepository
type MockRestaurantRepository struct {
	mu          sync.RWMutex
	restaurants map[string]*domain.Restaurant

	CreateErr      error
	DeleteErr      error
	SetCompleteErr error
}

// NewMockRestaurantRepository creates a new MockRestaurantRepository
func NewMockRestaurantRepository() *MockRestaurantRepository {
	return &MockRestaurantRepository{restaurants: make(map[string]*domain.Restaurant)}
}

// Create creates a new restaurant
func (r *MockRestaurantRepository) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *restaurant
	r.restaurants[restaurant.ID] = &copied
	return nil
}

// GetByID retrieves a restaurant by ID
func (r *MockRestaurantRepository) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	restaurant, ok := r.restaurants[id]
	if !ok {
		return nil, nil
	}
	copied := *restaurant
	return &copied, nil
}

// SetRegistrationComplete marks the restaurant as fully provisioned
func (r *MockRestaurantRepository) SetRegistrationComplete(ctx context.Context, id string) error {
	if r.SetCompleteErr != nil {
		return r.SetCompleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	restaurant, ok := r.restaurants[id]
	if !ok {
		return errors.New("restaurant not found")
	}
	restaurant.RegistrationComplete = true
	return nil
}

// Delete removes a restaurant row
func (r *MockRestaurantRepository) Delete(ctx context.Context, id string) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.restaurants[id]; !ok {
		return errors.New("restaurant not found")
	}
	delete(r.restaurants, id)
	return nil
}

// Count returns the number of stored restaurants (for testing)
func (r *MockRestaurantRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.restaurants)
}

// MockMembershipTierRepository is an in-memory MembershipTierRepository
type MockMembershipTierRepository struct {
	mu    sync.RWMutex
	tiers map[string]*domain.MembershipTier

	CreateBatchErr error
	DeleteErr      error
	UpdateErr      error
}

// NewMockMembershipTierRepository creates a new MockMembershipTierRepository
func NewMockMembershipTierRepository() *MockMembershipTierRepository {
	return &MockMembershipTierRepository{tiers: make(map[string]*domain.MembershipTier)}
}

// CreateBatch inserts all tiers
func (r *MockMembershipTierRepository) CreateBatch(ctx context.Context, tiers []*domain.MembershipTier) error {
	if r.CreateBatchErr != nil {
		return r.CreateBatchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tier := range tiers {
		copied := *tier
		r.tiers[tier.ID] = &copied
	}
	return nil
}

// ListByRestaurant retrieves all tiers for a restaurant
func (r *MockMembershipTierRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*domain.MembershipTier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.MembershipTier, 0)
	for _, tier := range r.tiers {
		if tier.RestaurantID == restaurantID {
			copied := *tier
			out = append(out, &copied)
		}
	}
	return out, nil
}

// UpdatePrice updates a tier's price and Stripe price reference
func (r *MockMembershipTierRepository) UpdatePrice(ctx context.Context, tierID, price, stripePriceID string) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tier, ok := r.tiers[tierID]
	if !ok {
		return errors.New("membership tier not found")
	}
	tier.Price = price
	tier.StripePriceID = stripePriceID
	return nil
}

// DeleteByRestaurant removes all tiers for a restaurant
func (r *MockMembershipTierRepository) DeleteByRestaurant(ctx context.Context, restaurantID string) (int64, error) {
	if r.DeleteErr != nil {
		return 0, r.DeleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, tier := range r.tiers {
		if tier.RestaurantID == restaurantID {
			delete(r.tiers, id)
			deleted++
		}
	}
	return deleted, nil
}

// Count returns the number of stored tiers (for testing)
func (r *MockMembershipTierRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tiers)
}

// Put seeds a tier (for testing)
func (r *MockMembershipTierRepository) Put(tier *domain.MembershipTier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers[tier.ID] = tier
}

// MockProduct represents a mock provider product
type MockProduct struct {
	ProductID      string
	Name           string
	Metadata       map[string]string
	IdempotencyKey string
	Active         bool
	Deleted        bool
}

// MockPrice represents a mock provider price
type MockPrice struct {
	PriceID        string
	ProductID      string
	UnitAmount     int64
	Currency       string
	IdempotencyKey string
	Active         bool
}

// MockProductGateway is an in-memory ProductGateway. Failures are keyed
// by tier name so tests can target an exact provisioning call even when
// the calls run concurrently.
type MockProductGateway struct {
	mu       sync.RWMutex
	products map[string]*MockProduct
	prices   map[string]*MockPrice

	FailProducts map[string]error // tier name -> error on CreateProduct
	FailPrices   map[string]error // tier name -> error on CreatePrice
	DeleteErr    error
}

// NewMockProductGateway creates a new MockProductGateway
func NewMockProductGateway() *MockProductGateway {
	return &MockProductGateway{
		products:     make(map[string]*MockProduct),
		prices:       make(map[string]*MockPrice),
		FailProducts: make(map[string]error),
		FailPrices:   make(map[string]error),
	}
}

// CreateProduct creates a mock product
func (g *MockProductGateway) CreateProduct(ctx context.Context, req *gateway.CreateProductRequest) (*gateway.ProductResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := g.FailProducts[req.Metadata["tier_name"]]; ok {
		if err == nil {
			err = ErrMockFailure
		}
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	product := &MockProduct{
		ProductID:      "prod_" + uuid.New().String()[:8],
		Name:           req.Name,
		Metadata:       req.Metadata,
		IdempotencyKey: req.IdempotencyKey,
		Active:         true,
	}
	g.products[product.ProductID] = product
	return &gateway.ProductResponse{ProductID: product.ProductID, Name: product.Name, Active: true}, nil
}

// CreatePrice creates a mock recurring price
func (g *MockProductGateway) CreatePrice(ctx context.Context, req *gateway.CreatePriceRequest) (*gateway.PriceResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := g.FailPrices[req.Metadata["tier_name"]]; ok {
		if err == nil {
			err = ErrMockFailure
		}
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	price := &MockPrice{
		PriceID:        "price_" + uuid.New().String()[:8],
		ProductID:      req.ProductID,
		UnitAmount:     req.UnitAmount,
		Currency:       req.Currency,
		IdempotencyKey: req.IdempotencyKey,
		Active:         true,
	}
	g.prices[price.PriceID] = price
	return &gateway.PriceResponse{
		PriceID:    price.PriceID,
		ProductID:  price.ProductID,
		UnitAmount: price.UnitAmount,
		Currency:   price.Currency,
	}, nil
}

// DeactivateProduct marks a mock product inactive
func (g *MockProductGateway) DeactivateProduct(ctx context.Context, productID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	product, ok := g.products[productID]
	if !ok {
		return errors.New("product not found")
	}
	product.Active = false
	return nil
}

// DeactivatePrice marks a mock price inactive
func (g *MockProductGateway) DeactivatePrice(ctx context.Context, priceID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	price, ok := g.prices[priceID]
	if !ok {
		return errors.New("price not found")
	}
	price.Active = false
	return nil
}

// DeleteProduct removes a mock product
func (g *MockProductGateway) DeleteProduct(ctx context.Context, productID string) error {
	if g.DeleteErr != nil {
		return g.DeleteErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	product, ok := g.products[productID]
	if !ok {
		return errors.New("product not found")
	}
	product.Deleted = true
	return nil
}

// Name returns the gateway name
func (g *MockProductGateway) Name() string {
	return "mock"
}

// GetProduct returns a product by ID (for testing)
func (g *MockProductGateway) GetProduct(productID string) (*MockProduct, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.products[productID]
	return p, ok
}

// GetPrice returns a price by ID (for testing)
func (g *MockProductGateway) GetPrice(priceID string) (*MockPrice, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.prices[priceID]
	return p, ok
}

// LiveProductCount returns the number of non-deleted products (for testing)
func (g *MockProductGateway) LiveProductCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	count := 0
	for _, p := range g.products {
		if !p.Deleted {
			count++
		}
	}
	return count
}

// LiveProductsForRestaurant returns non-deleted products carrying the
// restaurant's metadata tag (for testing rollback completeness)
func (g *MockProductGateway) LiveProductsForRestaurant(restaurantID string) []*MockProduct {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*MockProduct, 0)
	for _, p := range g.products {
		if !p.Deleted && p.Metadata["restaurant_id"] == restaurantID {
			out = append(out, p)
		}
	}
	return out
}
