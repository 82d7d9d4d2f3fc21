package repository

import (
	"context"

	"github.com/GervaisJosh/ClubCuvee-sub002/internal/domain"
)

// InvitationRepository defines the interface for invitation data access.
// Status writes are conditional updates keyed on the current status, so
// two racing onboarding attempts on one token cannot both advance it.
type InvitationRepository interface {
	// GetByToken retrieves an invitation by token. Returns (nil, nil)
	// when no invitation matches.
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	// TransitionStatus updates the status only when the current status
	// matches from. Returns true if a row was updated.
	TransitionStatus(ctx context.Context, token string, from, to domain.InvitationStatus) (bool, error)
	// MarkCompleted sets the status to completed and attaches the
	// restaurant id. Returns true if a row was updated.
	MarkCompleted(ctx context.Context, token, restaurantID string) (bool, error)
	// MarkFailed sets the status to failed from any non-terminal status.
	// Returns true if a row was updated.
	MarkFailed(ctx context.Context, token string) (bool, error)
}
