package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OnboardingState represents the state of an onboarding run
type OnboardingState string

const (
	StateStarted           OnboardingState = "STARTED"
	StateRestaurantCreated OnboardingState = "RESTAURANT_CREATED"
	StateProvisioned       OnboardingState = "PROVISIONED"
	StateTiersPersisted    OnboardingState = "TIERS_PERSISTED"
	StateCompleted         OnboardingState = "COMPLETED"
	StateRolledBack        OnboardingState = "ROLLED_BACK"
	StateFailed            OnboardingState = "FAILED"
)

var (
	// ErrInvalidStateTransition is returned when a state transition is not allowed
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrStateNotFound is returned when an onboarding run is not found
	ErrStateNotFound = errors.New("onboarding run not found")
)

// validTransitions defines allowed state transitions
// Key is current state, value is list of allowed next states
var validTransitions = map[OnboardingState][]OnboardingState{
	StateStarted:           {StateRestaurantCreated, StateFailed},
	StateRestaurantCreated: {StateProvisioned, StateRolledBack, StateFailed},
	StateProvisioned:       {StateTiersPersisted, StateRolledBack, StateFailed},
	StateTiersPersisted:    {StateCompleted, StateFailed},
	StateCompleted:         {}, // Terminal state
	StateRolledBack:        {}, // Terminal state
	StateFailed:            {}, // Terminal state
}

// IsTerminal returns true if the state is a terminal state
func (s OnboardingState) IsTerminal() bool {
	return s == StateCompleted || s == StateRolledBack || s == StateFailed
}

// IsValid returns true if the state is a valid onboarding state
func (s OnboardingState) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if transition to the target state is allowed
func (s OnboardingState) CanTransitionTo(target OnboardingState) bool {
	allowedStates, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, allowed := range allowedStates {
		if allowed == target {
			return true
		}
	}
	return false
}

// OnboardingSaga records the progress of a single onboarding run,
// keyed by the invitation token that started it
type OnboardingSaga struct {
	ID            string                 `json:"id"`
	Token         string                 `json:"token"`
	RestaurantID  string                 `json:"restaurant_id,omitempty"`
	State         OnboardingState        `json:"state"`
	PreviousState OnboardingState        `json:"previous_state,omitempty"`
	Data          map[string]interface{} `json:"data"`
	ErrorMessage  string                 `json:"error_message,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	CompletedAt   *time.Time             `json:"completed_at,omitempty"`
}

// StateTransition represents a state transition record
type StateTransition struct {
	ID        string          `json:"id"`
	SagaID    string          `json:"saga_id"`
	FromState OnboardingState `json:"from_state"`
	ToState   OnboardingState `json:"to_state"`
	Reason    string          `json:"reason,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// StateMachine manages state transitions for onboarding runs
type StateMachine struct {
	store StateStore
}

// StateStore interface for persisting onboarding run states
type StateStore interface {
	// SaveSaga persists a new run
	SaveSaga(ctx context.Context, saga *OnboardingSaga) error
	// GetSaga retrieves a run by ID
	GetSaga(ctx context.Context, id string) (*OnboardingSaga, error)
	// GetSagaByToken retrieves a run by invitation token
	GetSagaByToken(ctx context.Context, token string) (*OnboardingSaga, error)
	// UpdateSaga updates an existing run
	UpdateSaga(ctx context.Context, saga *OnboardingSaga) error
	// SaveTransition persists a state transition
	SaveTransition(ctx context.Context, transition *StateTransition) error
	// GetTransitions retrieves all transitions for a run
	GetTransitions(ctx context.Context, sagaID string) ([]StateTransition, error)
	// GetSagasByState retrieves runs by state
	GetSagasByState(ctx context.Context, state OnboardingState, limit int) ([]*OnboardingSaga, error)
}

// NewStateMachine creates a new state machine
func NewStateMachine(store StateStore) *StateMachine {
	return &StateMachine{store: store}
}

// StartRun creates a new onboarding run in STARTED state
func (sm *StateMachine) StartRun(ctx context.Context, token string, data map[string]interface{}) (*OnboardingSaga, error) {
	now := time.Now()
	if data == nil {
		data = make(map[string]interface{})
	}

	saga := &OnboardingSaga{
		ID:        generateID(),
		Token:     token,
		State:     StateStarted,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := sm.store.SaveSaga(ctx, saga); err != nil {
		return nil, fmt.Errorf("failed to save onboarding run: %w", err)
	}

	return saga, nil
}

// TransitionTo transitions the run to a new state
func (sm *StateMachine) TransitionTo(ctx context.Context, sagaID string, newState OnboardingState, reason string) (*OnboardingSaga, error) {
	saga, err := sm.store.GetSaga(ctx, sagaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get onboarding run: %w", err)
	}

	// Validate transition
	if !saga.State.CanTransitionTo(newState) {
		return nil, fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStateTransition, saga.State, newState)
	}

	// Record transition
	transition := &StateTransition{
		ID:        generateID(),
		SagaID:    sagaID,
		FromState: saga.State,
		ToState:   newState,
		Reason:    reason,
		Timestamp: time.Now(),
	}

	if err := sm.store.SaveTransition(ctx, transition); err != nil {
		return nil, fmt.Errorf("failed to save transition: %w", err)
	}

	// Update run state
	saga.PreviousState = saga.State
	saga.State = newState
	saga.UpdatedAt = time.Now()

	// Mark completion if terminal state
	if newState.IsTerminal() {
		now := time.Now()
		saga.CompletedAt = &now
	}

	if err := sm.store.UpdateSaga(ctx, saga); err != nil {
		return nil, fmt.Errorf("failed to update onboarding run: %w", err)
	}

	return saga, nil
}

// MarkRestaurantCreated transitions the run to RESTAURANT_CREATED with the new restaurant ID
func (sm *StateMachine) MarkRestaurantCreated(ctx context.Context, sagaID, restaurantID string) (*OnboardingSaga, error) {
	saga, err := sm.TransitionTo(ctx, sagaID, StateRestaurantCreated, "Restaurant record created")
	if err != nil {
		return nil, err
	}

	saga.RestaurantID = restaurantID
	if err := sm.store.UpdateSaga(ctx, saga); err != nil {
		return nil, fmt.Errorf("failed to update restaurant ID: %w", err)
	}

	return saga, nil
}

// MarkProvisioned transitions the run to PROVISIONED after payment resources are created
func (sm *StateMachine) MarkProvisioned(ctx context.Context, sagaID string) (*OnboardingSaga, error) {
	return sm.TransitionTo(ctx, sagaID, StateProvisioned, "Payment products and prices provisioned")
}

// MarkTiersPersisted transitions the run to TIERS_PERSISTED
func (sm *StateMachine) MarkTiersPersisted(ctx context.Context, sagaID string) (*OnboardingSaga, error) {
	return sm.TransitionTo(ctx, sagaID, StateTiersPersisted, "Membership tiers persisted")
}

// MarkCompleted transitions the run to COMPLETED state
func (sm *StateMachine) MarkCompleted(ctx context.Context, sagaID string) (*OnboardingSaga, error) {
	return sm.TransitionTo(ctx, sagaID, StateCompleted, "Onboarding completed")
}

// MarkRolledBack transitions the run to ROLLED_BACK state.
// Rollback only makes sense once a restaurant exists and before tiers are persisted.
func (sm *StateMachine) MarkRolledBack(ctx context.Context, sagaID, reason string) (*OnboardingSaga, error) {
	saga, err := sm.store.GetSaga(ctx, sagaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get onboarding run: %w", err)
	}

	if saga.State != StateRestaurantCreated && saga.State != StateProvisioned {
		return nil, fmt.Errorf("%w: can only roll back from RESTAURANT_CREATED or PROVISIONED state", ErrInvalidStateTransition)
	}

	saga, err = sm.TransitionTo(ctx, sagaID, StateRolledBack, reason)
	if err != nil {
		return nil, err
	}

	saga.ErrorMessage = reason
	if err := sm.store.UpdateSaga(ctx, saga); err != nil {
		return nil, fmt.Errorf("failed to update error message: %w", err)
	}

	return saga, nil
}

// MarkFailed transitions the run to FAILED state with error message
func (sm *StateMachine) MarkFailed(ctx context.Context, sagaID, errorMessage string) (*OnboardingSaga, error) {
	saga, err := sm.store.GetSaga(ctx, sagaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get onboarding run: %w", err)
	}

	// FAILED transition is special - can happen from any non-terminal state
	if saga.State.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot transition from terminal state %s", ErrInvalidStateTransition, saga.State)
	}

	saga, err = sm.TransitionTo(ctx, sagaID, StateFailed, errorMessage)
	if err != nil {
		return nil, err
	}

	saga.ErrorMessage = errorMessage
	if err := sm.store.UpdateSaga(ctx, saga); err != nil {
		return nil, fmt.Errorf("failed to update error message: %w", err)
	}

	return saga, nil
}

// GetSaga retrieves a run by ID
func (sm *StateMachine) GetSaga(ctx context.Context, sagaID string) (*OnboardingSaga, error) {
	return sm.store.GetSaga(ctx, sagaID)
}

// GetSagaByToken retrieves a run by invitation token
func (sm *StateMachine) GetSagaByToken(ctx context.Context, token string) (*OnboardingSaga, error) {
	return sm.store.GetSagaByToken(ctx, token)
}

// GetTransitionHistory retrieves all transitions for a run
func (sm *StateMachine) GetTransitionHistory(ctx context.Context, sagaID string) ([]StateTransition, error) {
	return sm.store.GetTransitions(ctx, sagaID)
}

// GetPendingSagas retrieves runs that are not in a terminal state
func (sm *StateMachine) GetPendingSagas(ctx context.Context, limit int) ([]*OnboardingSaga, error) {
	var result []*OnboardingSaga

	for _, state := range []OnboardingState{StateStarted, StateRestaurantCreated, StateProvisioned, StateTiersPersisted} {
		sagas, err := sm.store.GetSagasByState(ctx, state, limit)
		if err != nil {
			return nil, err
		}
		result = append(result, sagas...)
		if limit > 0 && len(result) >= limit {
			return result[:limit], nil
		}
	}

	return result, nil
}

// generateID generates a unique ID using UUID
func generateID() string {
	return uuid.New().String()
}
