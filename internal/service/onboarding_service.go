package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GervaisJosh/ClubCuvee-sub002/internal/domain"
	"github.com/GervaisJosh/ClubCuvee-sub002/internal/dto"
	"github.com/GervaisJosh/ClubCuvee-sub002/internal/gateway"
	"github.com/GervaisJosh/ClubCuvee-sub002/internal/repository"
	"github.com/GervaisJosh/ClubCuvee-sub002/pkg/logger"
	"github.com/GervaisJosh/ClubCuvee-sub002/pkg/saga"
	"github.com/GervaisJosh/ClubCuvee-sub002/pkg/telemetry"
)

var (
	// ErrUnknownPricingTier is returned before any persistence when the
	// requested pricing tier is not in the catalog
	ErrUnknownPricingTier = errors.New("unknown pricing tier")
	// ErrNoTiers is returned when no membership tiers were supplied
	ErrNoTiers = errors.New("at least one membership tier is required")
	// ErrTierNotFound is returned by the re-pricing flow for unknown tiers
	ErrTierNotFound = errors.New("membership tier not found")
)

// OnboardingService coordinates the full business onboarding saga:
// token validation, restaurant creation, concurrent payment-product
// provisioning, tier persistence, and best-effort finalization, with
// compensating rollback when provisioning or persistence fails.
type OnboardingService interface {
	// CompleteOnboarding turns a pending invitation into a fully
	// provisioned restaurant with billable membership tiers
	CompleteOnboarding(ctx context.Context, token string, req *dto.CompleteOnboardingRequest) (*dto.OnboardingResult, error)
	// PreviewInvitation returns invitation details for the onboarding
	// form. Expired pending invitations are marked expired on read.
	PreviewInvitation(ctx context.Context, token string) (*dto.InvitationPreview, error)
	// RepriceTier changes a membership tier's monthly price, creating a
	// new provider price and deactivating the old one
	RepriceTier(ctx context.Context, restaurantID, tierID string, req *dto.RepriceTierRequest) (*dto.MembershipTierResponse, error)
}

// OnboardingServiceConfig holds the orchestrator's collaborators
type OnboardingServiceConfig struct {
	Catalog        *PricingCatalog
	Validator      InvitationValidator
	InvitationRepo repository.InvitationRepository
	RestaurantRepo repository.RestaurantRepository
	TierRepo       repository.MembershipTierRepository
	Gateway        gateway.ProductGateway
	Currency       string
	// Journal is optional; when set, every run's step transitions are
	// recorded for operational inspection
	Journal *saga.StateMachine
}

type onboardingService struct {
	catalog        *PricingCatalog
	validator      InvitationValidator
	invitationRepo repository.InvitationRepository
	restaurantRepo repository.RestaurantRepository
	tierRepo       repository.MembershipTierRepository
	gateway        gateway.ProductGateway
	currency       string
	journal        *saga.StateMachine
}

// NewOnboardingService creates a new OnboardingService
func NewOnboardingService(cfg *OnboardingServiceConfig) OnboardingService {
	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}
	return &onboardingService{
		catalog:        cfg.Catalog,
		validator:      cfg.Validator,
		invitationRepo: cfg.InvitationRepo,
		restaurantRepo: cfg.RestaurantRepo,
		tierRepo:       cfg.TierRepo,
		gateway:        cfg.Gateway,
		currency:       currency,
		journal:        cfg.Journal,
	}
}

// CompleteOnboarding executes the onboarding saga. Each step commits
// before the next begins; failures in provisioning or persistence
// trigger compensating rollback of everything created so far.
func (s *onboardingService) CompleteOnboarding(ctx context.Context, token string, req *dto.CompleteOnboardingRequest) (*dto.OnboardingResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "onboarding.complete")
	defer span.End()

	// Cheap input validation before any persistence.
	if !s.catalog.IsValid(req.PricingTierID) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPricingTier, req.PricingTierID)
	}
	configs := req.TierConfigs()
	if len(configs) == 0 {
		return nil, ErrNoTiers
	}
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	// Step 1: token validation. No side effects beyond expiry marking.
	inv, err := s.validator.Validate(ctx, token)
	if err != nil {
		return nil, newOnboardingError(ErrKindInvalidOrExpiredToken, err)
	}

	runID := s.journalStart(ctx, token, len(configs))

	// Step 2: restaurant creation, not yet registration-complete.
	restaurant := domain.NewRestaurant(
		req.Restaurant.Name,
		req.Restaurant.Website,
		req.Restaurant.AdminEmail,
		req.Restaurant.LogoURL,
		req.PricingTierID,
	)
	if err := s.restaurantRepo.Create(ctx, restaurant); err != nil {
		s.journalFail(ctx, runID, err)
		return nil, newOnboardingError(ErrKindRestaurantCreationFailed, err)
	}
	s.journalMark(ctx, runID, func(jctx context.Context) (*saga.OnboardingSaga, error) {
		return s.journal.MarkRestaurantCreated(jctx, runID, restaurant.ID)
	})
	logger.InfoCtx(ctx, "restaurant created",
		zap.String("restaurant_id", restaurant.ID),
		zap.String("pricing_tier", req.PricingTierID))

	// Step 3: provider provisioning, one concurrent call per tier.
	refs, provisionErr := s.provisionTiers(ctx, restaurant, configs)
	if provisionErr != nil {
		telemetry.SetSpanError(ctx, provisionErr)
		return nil, s.failWithRollback(ctx, token, runID, restaurant.ID, refs,
			newOnboardingError(ErrKindPaymentProvisioningFailed, provisionErr))
	}
	s.journalMark(ctx, runID, func(jctx context.Context) (*saga.OnboardingSaga, error) {
		return s.journal.MarkProvisioned(jctx, runID)
	})

	// Step 4: persist tiers, each carrying both provider ids.
	tiers := make([]*domain.MembershipTier, 0, len(configs))
	for i, cfg := range configs {
		tiers = append(tiers, domain.NewMembershipTier(restaurant.ID, cfg, refs[i].ProductID, refs[i].PriceID))
	}
	if err := s.tierRepo.CreateBatch(ctx, tiers); err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, s.failWithRollback(ctx, token, runID, restaurant.ID, refs,
			newOnboardingError(ErrKindTierPersistenceFailed, err))
	}
	s.journalMark(ctx, runID, func(jctx context.Context) (*saga.OnboardingSaga, error) {
		return s.journal.MarkTiersPersisted(jctx, runID)
	})

	// Step 5: best-effort finalization. The customer-facing resources
	// are already valid; a failure here leaves bookkeeping incomplete
	// but never unwinds the onboarding.
	if updated, err := s.invitationRepo.MarkCompleted(ctx, token, restaurant.ID); err != nil {
		logger.ErrorCtx(ctx, "finalization: failed to mark invitation completed",
			zap.String("token", token), zap.Error(err))
	} else if !updated {
		logger.WarnCtx(ctx, "finalization: invitation already in terminal status",
			zap.String("token", token))
	}
	if err := s.restaurantRepo.SetRegistrationComplete(ctx, restaurant.ID); err != nil {
		logger.ErrorCtx(ctx, "finalization: failed to mark registration complete",
			zap.String("restaurant_id", restaurant.ID), zap.Error(err))
	}

	s.journalMark(ctx, runID, func(jctx context.Context) (*saga.OnboardingSaga, error) {
		return s.journal.MarkCompleted(jctx, runID)
	})

	logger.InfoCtx(ctx, "onboarding completed",
		zap.String("restaurant_id", restaurant.ID),
		zap.String("invitation_email", inv.Email),
		zap.Int("tiers", len(tiers)))

	return &dto.OnboardingResult{
		RestaurantID: restaurant.ID,
		ProductRefs:  derefRefs(refs),
	}, nil
}

// provisionTiers creates a provider product and recurring monthly price
// for every tier config concurrently. The first failure cancels the
// remaining calls; the returned slice holds whatever subset succeeded
// before the failure (indexed by config) so rollback can reverse it.
func (s *onboardingService) provisionTiers(ctx context.Context, restaurant *domain.Restaurant, configs []domain.TierConfig) ([]*domain.ProductRef, error) {
	refs := make([]*domain.ProductRef, len(configs))

	g, gctx := errgroup.WithContext(ctx)
	for i, cfg := range configs {
		g.Go(func() error {
			cents, err := cfg.PriceCents()
			if err != nil {
				return fmt.Errorf("tier %q: %w", cfg.Name, err)
			}

			// Keys are scoped to the restaurant row, so provider-side
			// retries of one run never collide with a fresh attempt.
			product, err := s.gateway.CreateProduct(gctx, &gateway.CreateProductRequest{
				Name:        fmt.Sprintf("%s - %s", restaurant.Name, cfg.Name),
				Description: cfg.Description,
				Metadata: map[string]string{
					"restaurant_id": restaurant.ID,
					"tier_name":     cfg.Name,
				},
				IdempotencyKey: fmt.Sprintf("onboarding-%s-%s-product", restaurant.ID, cfg.Name),
			})
			if err != nil {
				return fmt.Errorf("tier %q: %w", cfg.Name, err)
			}
			// Track the product before the price call so rollback can
			// delete it even if price creation fails.
			refs[i] = &domain.ProductRef{ProductID: product.ProductID, TierName: cfg.Name}

			price, err := s.gateway.CreatePrice(gctx, &gateway.CreatePriceRequest{
				ProductID:  product.ProductID,
				UnitAmount: cents,
				Currency:   s.currency,
				Metadata: map[string]string{
					"restaurant_id": restaurant.ID,
					"tier_name":     cfg.Name,
				},
				IdempotencyKey: fmt.Sprintf("onboarding-%s-%s-price", restaurant.ID, cfg.Name),
			})
			if err != nil {
				return fmt.Errorf("tier %q: %w", cfg.Name, err)
			}
			refs[i].PriceID = price.PriceID
			return nil
		})
	}

	err := g.Wait()
	return refs, err
}

// failWithRollback runs the compensating transaction and wraps the
// original error in RollbackFailed if the rollback itself failed
func (s *onboardingService) failWithRollback(ctx context.Context, token, runID, restaurantID string, refs []*domain.ProductRef, original *OnboardingError) error {
	if rbErr := s.rollback(ctx, token, restaurantID, refs); rbErr != nil {
		s.journalFail(ctx, runID, rbErr)
		return &OnboardingError{
			Kind:        ErrKindRollbackFailed,
			cause:       original,
			RollbackErr: rbErr,
		}
	}
	s.journalMark(ctx, runID, func(jctx context.Context) (*saga.OnboardingSaga, error) {
		return s.journal.MarkRolledBack(jctx, runID, original.Error())
	})
	return original
}

// journalStart opens a run record in the journal. Journal writes are
// best-effort bookkeeping; failures are logged, never surfaced.
func (s *onboardingService) journalStart(ctx context.Context, token string, tierCount int) string {
	if s.journal == nil {
		return ""
	}
	run, err := s.journal.StartRun(ctx, token, map[string]interface{}{
		"tier_count": tierCount,
	})
	if err != nil {
		logger.WarnCtx(ctx, "journal: failed to start onboarding run",
			zap.String("token", token), zap.Error(err))
		return ""
	}
	return run.ID
}

// journalMark applies a state transition to the run record
func (s *onboardingService) journalMark(ctx context.Context, runID string, mark func(context.Context) (*saga.OnboardingSaga, error)) {
	if s.journal == nil || runID == "" {
		return
	}
	if _, err := mark(ctx); err != nil {
		logger.WarnCtx(ctx, "journal: failed to record onboarding state",
			zap.String("run_id", runID), zap.Error(err))
	}
}

// journalFail marks the run record failed
func (s *onboardingService) journalFail(ctx context.Context, runID string, cause error) {
	s.journalMark(ctx, runID, func(jctx context.Context) (*saga.OnboardingSaga, error) {
		return s.journal.MarkFailed(jctx, runID, cause.Error())
	})
}

// rollback is the compensating transaction: it reverses provider
// products, the restaurant row, any tier rows, and marks the invitation
// failed. Every action runs regardless of earlier rollback failures.
// Provider product deletions are log-only; a leaked unused product is
// acceptable, a leaked restaurant record is not.
func (s *onboardingService) rollback(ctx context.Context, token, restaurantID string, refs []*domain.ProductRef) error {
	logger.WarnCtx(ctx, "onboarding failed, rolling back",
		zap.String("restaurant_id", restaurantID),
		zap.Int("products_created", len(compactRefs(refs))))

	var result *multierror.Error

	for _, ref := range compactRefs(refs) {
		if err := s.gateway.DeleteProduct(ctx, ref.ProductID); err != nil {
			logger.WarnCtx(ctx, "rollback: failed to delete provider product",
				zap.String("product_id", ref.ProductID),
				zap.String("tier_name", ref.TierName),
				zap.Error(err))
		}
	}

	// Tiers before restaurant; normally none exist yet at rollback time
	// but this guards against partial persistence.
	if deleted, err := s.tierRepo.DeleteByRestaurant(ctx, restaurantID); err != nil {
		logger.ErrorCtx(ctx, "rollback: failed to delete membership tiers",
			zap.String("restaurant_id", restaurantID), zap.Error(err))
		result = multierror.Append(result, fmt.Errorf("delete membership tiers: %w", err))
	} else if deleted > 0 {
		logger.WarnCtx(ctx, "rollback: removed partially persisted tiers",
			zap.String("restaurant_id", restaurantID), zap.Int64("deleted", deleted))
	}

	if err := s.restaurantRepo.Delete(ctx, restaurantID); err != nil {
		logger.ErrorCtx(ctx, "rollback: failed to delete restaurant",
			zap.String("restaurant_id", restaurantID), zap.Error(err))
		result = multierror.Append(result, fmt.Errorf("delete restaurant: %w", err))
	}

	if _, err := s.invitationRepo.MarkFailed(ctx, token); err != nil {
		logger.ErrorCtx(ctx, "rollback: failed to mark invitation failed",
			zap.String("token", token), zap.Error(err))
		result = multierror.Append(result, fmt.Errorf("mark invitation failed: %w", err))
	}

	return result.ErrorOrNil()
}

// PreviewInvitation returns invitation details for the onboarding form
func (s *onboardingService) PreviewInvitation(ctx context.Context, token string) (*dto.InvitationPreview, error) {
	inv, err := s.validator.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	return &dto.InvitationPreview{
		RestaurantName: inv.RestaurantName,
		Email:          inv.Email,
		AdminName:      inv.AdminName,
		Website:        inv.Website,
		Tier:           inv.Tier,
		ExpiresAt:      inv.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// RepriceTier creates a new provider price for a tier and deactivates
// the old one. Products and prices are deactivated, never deleted, once
// a tier has been live.
func (s *onboardingService) RepriceTier(ctx context.Context, restaurantID, tierID string, req *dto.RepriceTierRequest) (*dto.MembershipTierResponse, error) {
	cfg := domain.TierConfig{Name: "reprice", Price: req.Price}
	cents, err := cfg.PriceCents()
	if err != nil {
		return nil, err
	}
	if cents <= 0 {
		return nil, fmt.Errorf("price must be greater than zero")
	}

	tiers, err := s.tierRepo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	var tier *domain.MembershipTier
	for _, t := range tiers {
		if t.ID == tierID {
			tier = t
			break
		}
	}
	if tier == nil {
		return nil, ErrTierNotFound
	}

	price, err := s.gateway.CreatePrice(ctx, &gateway.CreatePriceRequest{
		ProductID:  tier.StripeProductID,
		UnitAmount: cents,
		Currency:   s.currency,
		Metadata: map[string]string{
			"restaurant_id": restaurantID,
			"tier_name":     tier.Name,
		},
		// Amount in the key keeps distinct reprices distinct while
		// deduplicating retried ones.
		IdempotencyKey: fmt.Sprintf("reprice-%s-%d", tier.ID, cents),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create replacement price: %w", err)
	}

	if err := s.tierRepo.UpdatePrice(ctx, tier.ID, req.Price, price.PriceID); err != nil {
		// The new price is unused until persisted; deactivate it and
		// keep the tier on its old price.
		if deactErr := s.gateway.DeactivatePrice(ctx, price.PriceID); deactErr != nil {
			logger.WarnCtx(ctx, "failed to deactivate orphaned price",
				zap.String("price_id", price.PriceID), zap.Error(deactErr))
		}
		return nil, err
	}

	if err := s.gateway.DeactivatePrice(ctx, tier.StripePriceID); err != nil {
		logger.WarnCtx(ctx, "failed to deactivate superseded price",
			zap.String("price_id", tier.StripePriceID), zap.Error(err))
	}

	return &dto.MembershipTierResponse{
		ID:              tier.ID,
		RestaurantID:    tier.RestaurantID,
		Name:            tier.Name,
		Price:           req.Price,
		Description:     tier.Description,
		StripeProductID: tier.StripeProductID,
		StripePriceID:   price.PriceID,
	}, nil
}

// compactRefs drops the nil entries left by tiers that never got as far
// as product creation
func compactRefs(refs []*domain.ProductRef) []*domain.ProductRef {
	out := make([]*domain.ProductRef, 0, len(refs))
	for _, r := range refs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func derefRefs(refs []*domain.ProductRef) []domain.ProductRef {
	out := make([]domain.ProductRef, 0, len(refs))
	for _, r := range refs {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
