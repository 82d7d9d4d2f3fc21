package domain

import (
	"errors"
	"time"
)

// InvitationStatus represents the lifecycle state of a business invitation
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationPaid      InvitationStatus = "paid"
	InvitationCompleted InvitationStatus = "completed"
	InvitationExpired   InvitationStatus = "expired"
	InvitationFailed    InvitationStatus = "failed"
)

var (
	// ErrInvalidStatusTransition is returned when a status transition is not allowed
	ErrInvalidStatusTransition = errors.New("invalid invitation status transition")
)

// validTransitions defines allowed status transitions.
// Key is current status, value is list of allowed next statuses.
// Statuses move monotonically forward; the terminal expired/failed
// states are reachable from any non-terminal state.
var validTransitions = map[InvitationStatus][]InvitationStatus{
	InvitationPending:   {InvitationAccepted, InvitationPaid, InvitationCompleted, InvitationExpired, InvitationFailed},
	InvitationAccepted:  {InvitationPaid, InvitationCompleted, InvitationExpired, InvitationFailed},
	InvitationPaid:      {InvitationCompleted, InvitationExpired, InvitationFailed},
	InvitationCompleted: {}, // Terminal state
	InvitationExpired:   {}, // Terminal state
	InvitationFailed:    {}, // Terminal state
}

// IsTerminal returns true if the status is a terminal status
func (s InvitationStatus) IsTerminal() bool {
	return s == InvitationCompleted || s == InvitationExpired || s == InvitationFailed
}

// IsValid returns true if the status is a known invitation status
func (s InvitationStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if transition to the target status is allowed
func (s InvitationStatus) CanTransitionTo(target InvitationStatus) bool {
	allowedStatuses, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, allowed := range allowedStatuses {
		if allowed == target {
			return true
		}
	}
	return false
}

// Invitation represents a pending business invitation identified by an
// opaque, unguessable token. Invitations are created by the invite-issuing
// flow and mutated only by validation (expiry) and onboarding (progress).
type Invitation struct {
	Token          string           `json:"token"`
	Email          string           `json:"email"`
	RestaurantName string           `json:"restaurant_name"`
	Website        string           `json:"website,omitempty"`
	AdminName      string           `json:"admin_name,omitempty"`
	Tier           string           `json:"tier,omitempty"`
	Status         InvitationStatus `json:"status"`
	RestaurantID   *string          `json:"restaurant_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	ExpiresAt      time.Time        `json:"expires_at"`
}

// IsExpired returns true if the invitation's expiry time has passed
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
