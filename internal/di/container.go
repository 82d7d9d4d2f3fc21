package di

import (
	"github.com/GervaisJosh/ClubCuvee-sub002/internal/gateway"
	"github.com/GervaisJosh/ClubCuvee-sub002/internal/handler"
	"github.com/GervaisJosh/ClubCuvee-sub002/internal/repository"
	"github.com/GervaisJosh/ClubCuvee-sub002/internal/service"
	"github.com/GervaisJosh/ClubCuvee-sub002/pkg/database"
	"github.com/GervaisJosh/ClubCuvee-sub002/pkg/saga"
)

// Container holds all dependencies for the onboarding service
type Container struct {
	// Infrastructure
	DB      *database.PostgresDB
	Gateway gateway.ProductGateway

	// Repositories
	InvitationRepo repository.InvitationRepository
	RestaurantRepo repository.RestaurantRepository
	TierRepo       repository.MembershipTierRepository

	// Services
	Catalog           *service.PricingCatalog
	Validator         service.InvitationValidator
	Journal           *saga.StateMachine
	OnboardingService service.OnboardingService

	// Handlers
	HealthHandler     *handler.HealthHandler
	OnboardingHandler *handler.OnboardingHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB       *database.PostgresDB
	Gateway  gateway.ProductGateway
	Currency string
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:      cfg.DB,
		Gateway: cfg.Gateway,
	}

	// Initialize repositories
	pool := cfg.DB.Pool()
	c.InvitationRepo = repository.NewPostgresInvitationRepository(pool)
	c.RestaurantRepo = repository.NewPostgresRestaurantRepository(pool)
	c.TierRepo = repository.NewPostgresMembershipTierRepository(pool)

	// Initialize services
	c.Catalog = service.NewPricingCatalog()
	c.Validator = service.NewInvitationValidator(c.InvitationRepo)
	c.Journal = saga.NewStateMachine(saga.NewPostgresStateStore(pool))
	c.OnboardingService = service.NewOnboardingService(&service.OnboardingServiceConfig{
		Catalog:        c.Catalog,
		Validator:      c.Validator,
		InvitationRepo: c.InvitationRepo,
		RestaurantRepo: c.RestaurantRepo,
		TierRepo:       c.TierRepo,
		Gateway:        c.Gateway,
		Currency:       cfg.Currency,
		Journal:        c.Journal,
	})

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB)
	c.OnboardingHandler = handler.NewOnboardingHandler(c.OnboardingService, c.Catalog)

	return c
}
