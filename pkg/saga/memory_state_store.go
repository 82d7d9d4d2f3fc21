package saga

import (
	"context"
	"sync"
)

// MemoryStateStore is an in-memory implementation of StateStore for testing
type MemoryStateStore struct {
	mu          sync.RWMutex
	sagas       map[string]*OnboardingSaga
	transitions map[string][]StateTransition
	byToken     map[string]string // invitation token -> sagaID
}

// NewMemoryStateStore creates a new in-memory state store
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		sagas:       make(map[string]*OnboardingSaga),
		transitions: make(map[string][]StateTransition),
		byToken:     make(map[string]string),
	}
}

// SaveSaga persists a new run
func (s *MemoryStateStore) SaveSaga(ctx context.Context, saga *OnboardingSaga) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check for duplicate
	if _, exists := s.sagas[saga.ID]; exists {
		return ErrStateNotFound // Already exists
	}

	// Deep copy
	copied := s.copySaga(saga)
	s.sagas[saga.ID] = copied
	s.byToken[saga.Token] = saga.ID

	return nil
}

// GetSaga retrieves a run by ID
func (s *MemoryStateStore) GetSaga(ctx context.Context, id string) (*OnboardingSaga, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saga, exists := s.sagas[id]
	if !exists {
		return nil, ErrStateNotFound
	}

	return s.copySaga(saga), nil
}

// GetSagaByToken retrieves a run by invitation token
func (s *MemoryStateStore) GetSagaByToken(ctx context.Context, token string) (*OnboardingSaga, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sagaID, exists := s.byToken[token]
	if !exists {
		return nil, ErrStateNotFound
	}

	saga, exists := s.sagas[sagaID]
	if !exists {
		return nil, ErrStateNotFound
	}

	return s.copySaga(saga), nil
}

// UpdateSaga updates an existing run
func (s *MemoryStateStore) UpdateSaga(ctx context.Context, saga *OnboardingSaga) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sagas[saga.ID]; !exists {
		return ErrStateNotFound
	}

	s.sagas[saga.ID] = s.copySaga(saga)
	return nil
}

// SaveTransition persists a state transition
func (s *MemoryStateStore) SaveTransition(ctx context.Context, transition *StateTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transitions[transition.SagaID] = append(s.transitions[transition.SagaID], *transition)
	return nil
}

// GetTransitions retrieves all transitions for a run
func (s *MemoryStateStore) GetTransitions(ctx context.Context, sagaID string) ([]StateTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transitions := s.transitions[sagaID]
	if transitions == nil {
		return []StateTransition{}, nil
	}

	// Return a copy
	result := make([]StateTransition, len(transitions))
	copy(result, transitions)
	return result, nil
}

// GetSagasByState retrieves runs by state
func (s *MemoryStateStore) GetSagasByState(ctx context.Context, state OnboardingState, limit int) ([]*OnboardingSaga, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*OnboardingSaga
	for _, saga := range s.sagas {
		if saga.State == state {
			result = append(result, s.copySaga(saga))
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}

	return result, nil
}

// copySaga creates a deep copy of a run
func (s *MemoryStateStore) copySaga(saga *OnboardingSaga) *OnboardingSaga {
	if saga == nil {
		return nil
	}

	copied := &OnboardingSaga{
		ID:            saga.ID,
		Token:         saga.Token,
		RestaurantID:  saga.RestaurantID,
		State:         saga.State,
		PreviousState: saga.PreviousState,
		ErrorMessage:  saga.ErrorMessage,
		CreatedAt:     saga.CreatedAt,
		UpdatedAt:     saga.UpdatedAt,
		CompletedAt:   saga.CompletedAt,
	}

	// Copy data map
	if saga.Data != nil {
		copied.Data = make(map[string]interface{})
		for k, v := range saga.Data {
			copied.Data[k] = v
		}
	}

	return copied
}

// Clear removes all data (for testing)
func (s *MemoryStateStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sagas = make(map[string]*OnboardingSaga)
	s.transitions = make(map[string][]StateTransition)
	s.byToken = make(map[string]string)
}

// Count returns the number of stored runs (for testing)
func (s *MemoryStateStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sagas)
}
