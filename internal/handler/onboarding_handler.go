package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GervaisJosh/ClubCuvee-sub002/internal/dto"
	"github.com/GervaisJosh/ClubCuvee-sub002/internal/service"
	"github.com/GervaisJosh/ClubCuvee-sub002/pkg/response"
)

// OnboardingHandler handles business onboarding HTTP requests
type OnboardingHandler struct {
	onboardingService service.OnboardingService
	catalog           *service.PricingCatalog
}

// NewOnboardingHandler creates a new OnboardingHandler
func NewOnboardingHandler(onboardingService service.OnboardingService, catalog *service.PricingCatalog) *OnboardingHandler {
	return &OnboardingHandler{
		onboardingService: onboardingService,
		catalog:           catalog,
	}
}

// ListPricingTiers returns the static pricing catalog
// GET /api/v1/pricing-tiers
func (h *OnboardingHandler) ListPricingTiers(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(gin.H{
		"tiers":   h.catalog.List(),
		"default": service.DefaultPricingTierID,
	}))
}

// Preview returns the invitation details behind a token so the
// onboarding form can be pre-filled
// GET /api/v1/onboarding/:token
func (h *OnboardingHandler) Preview(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invitation token is required"))
		return
	}

	result, err := h.onboardingService.PreviewInvitation(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvitationNotFound) {
			c.JSON(http.StatusNotFound, response.Error(response.ErrCodeInvalidOrExpiredToken, "Invitation not found or expired"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Complete runs the full onboarding flow for a pending invitation
// POST /api/v1/onboarding/:token/complete
func (h *OnboardingHandler) Complete(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invitation token is required"))
		return
	}

	var req dto.CompleteOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.onboardingService.CompleteOnboarding(c.Request.Context(), token, &req)
	if err != nil {
		h.writeOnboardingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}

// RepriceTier changes the monthly price of a membership tier
// PATCH /api/v1/restaurants/:id/membership-tiers/:tier_id/price
func (h *OnboardingHandler) RepriceTier(c *gin.Context) {
	restaurantID := c.Param("id")
	tierID := c.Param("tier_id")
	if restaurantID == "" || tierID == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Restaurant ID and tier ID are required"))
		return
	}

	var req dto.RepriceTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	result, err := h.onboardingService.RepriceTier(c.Request.Context(), restaurantID, tierID, &req)
	if err != nil {
		if errors.Is(err, service.ErrTierNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Membership tier not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// writeOnboardingError maps onboarding failures onto the response
// envelope. Typed saga errors carry their own code; sentinel validation
// errors become 400s; anything else is a 500.
func (h *OnboardingHandler) writeOnboardingError(c *gin.Context, err error) {
	if kind, ok := service.KindOf(err); ok {
		code := string(kind)
		c.JSON(response.GetHTTPStatus(code), response.Error(code, err.Error()))
		return
	}

	// Everything else from the onboarding flow is rejected input that
	// never reached persistence.
	c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
}
