package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/GervaisJosh/ClubCuvee-sub002/internal/domain"
	"github.com/GervaisJosh/ClubCuvee-sub002/internal/repository"
	"github.com/GervaisJosh/ClubCuvee-sub002/pkg/logger"
)

var (
	// ErrInvitationNotFound is returned for unknown tokens, non-pending
	// invitations, expired invitations, and repository failures alike.
	// Validation fails closed and does not distinguish between them.
	ErrInvitationNotFound = errors.New("invitation not found")
)

// InvitationValidator checks an invitation token ahead of onboarding
type InvitationValidator interface {
	// Validate returns the pending invitation for the token. A pending
	// invitation whose expiry has passed is marked expired as a side
	// effect before not-found is returned.
	Validate(ctx context.Context, token string) (*domain.Invitation, error)
}

type invitationValidator struct {
	invitationRepo repository.InvitationRepository
}

// NewInvitationValidator creates a new InvitationValidator
func NewInvitationValidator(invitationRepo repository.InvitationRepository) InvitationValidator {
	return &invitationValidator{invitationRepo: invitationRepo}
}

// Validate checks a token against the invitation store
func (v *invitationValidator) Validate(ctx context.Context, token string) (*domain.Invitation, error) {
	inv, err := v.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		logger.WarnCtx(ctx, "invitation lookup failed, treating as not found", zap.Error(err))
		return nil, ErrInvitationNotFound
	}
	if inv == nil || inv.Status != domain.InvitationPending {
		return nil, ErrInvitationNotFound
	}

	if inv.IsExpired(time.Now()) {
		// Conditional on pending: a concurrent request that already
		// advanced or expired the token makes this a no-op.
		updated, err := v.invitationRepo.TransitionStatus(ctx, token, domain.InvitationPending, domain.InvitationExpired)
		if err != nil {
			logger.WarnCtx(ctx, "failed to mark invitation expired", zap.String("token", token), zap.Error(err))
		} else if updated {
			logger.InfoCtx(ctx, "invitation expired", zap.String("token", token))
		}
		return nil, ErrInvitationNotFound
	}

	return inv, nil
}
