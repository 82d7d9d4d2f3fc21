package service

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed enumeration of onboarding failure kinds.
// Callers branch on the kind rather than inspecting message strings.
type ErrorKind string

const (
	ErrKindInvalidOrExpiredToken     ErrorKind = "INVALID_OR_EXPIRED_TOKEN"
	ErrKindRestaurantCreationFailed  ErrorKind = "RESTAURANT_CREATION_FAILED"
	ErrKindPaymentProvisioningFailed ErrorKind = "PAYMENT_PROVISIONING_FAILED"
	ErrKindTierPersistenceFailed     ErrorKind = "TIER_PERSISTENCE_FAILED"
	ErrKindRollbackFailed            ErrorKind = "ROLLBACK_FAILED"
)

// OnboardingError is a typed onboarding failure. For RollbackFailed the
// cause is the original step failure and RollbackErr carries whatever
// the compensating actions themselves reported.
type OnboardingError struct {
	Kind        ErrorKind
	cause       error
	RollbackErr error
}

// Error implements the error interface
func (e *OnboardingError) Error() string {
	switch {
	case e.Kind == ErrKindRollbackFailed && e.RollbackErr != nil:
		return fmt.Sprintf("%s: %v (rollback: %v)", e.Kind, e.cause, e.RollbackErr)
	case e.cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	default:
		return string(e.Kind)
	}
}

// Unwrap returns the underlying cause
func (e *OnboardingError) Unwrap() error {
	return e.cause
}

func newOnboardingError(kind ErrorKind, cause error) *OnboardingError {
	return &OnboardingError{Kind: kind, cause: cause}
}

// KindOf extracts the error kind from an onboarding error chain.
// The second return is false for errors outside the taxonomy.
func KindOf(err error) (ErrorKind, bool) {
	var oe *OnboardingError
	if errors.As(err, &oe) {
		return oe.Kind, true
	}
	return "", false
}
