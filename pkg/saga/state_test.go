package saga

import (
	"context"
	"testing"
)

func TestOnboardingStateIsTerminal(t *testing.T) {
	tests := []struct {
		state    OnboardingState
		expected bool
	}{
		{StateStarted, false},
		{StateRestaurantCreated, false},
		{StateProvisioned, false},
		{StateTiersPersisted, false},
		{StateCompleted, true},
		{StateRolledBack, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestOnboardingStateIsValid(t *testing.T) {
	tests := []struct {
		state    OnboardingState
		expected bool
	}{
		{StateStarted, true},
		{StateRestaurantCreated, true},
		{StateProvisioned, true},
		{StateTiersPersisted, true},
		{StateCompleted, true},
		{StateRolledBack, true},
		{StateFailed, true},
		{OnboardingState("INVALID"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestOnboardingStateCanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     OnboardingState
		to       OnboardingState
		expected bool
	}{
		// From STARTED
		{"STARTED -> RESTAURANT_CREATED", StateStarted, StateRestaurantCreated, true},
		{"STARTED -> FAILED", StateStarted, StateFailed, true},
		{"STARTED -> PROVISIONED", StateStarted, StateProvisioned, false},
		{"STARTED -> ROLLED_BACK", StateStarted, StateRolledBack, false},
		{"STARTED -> COMPLETED", StateStarted, StateCompleted, false},

		// From RESTAURANT_CREATED
		{"RESTAURANT_CREATED -> PROVISIONED", StateRestaurantCreated, StateProvisioned, true},
		{"RESTAURANT_CREATED -> ROLLED_BACK", StateRestaurantCreated, StateRolledBack, true},
		{"RESTAURANT_CREATED -> FAILED", StateRestaurantCreated, StateFailed, true},
		{"RESTAURANT_CREATED -> COMPLETED", StateRestaurantCreated, StateCompleted, false},
		{"RESTAURANT_CREATED -> STARTED", StateRestaurantCreated, StateStarted, false},

		// From PROVISIONED
		{"PROVISIONED -> TIERS_PERSISTED", StateProvisioned, StateTiersPersisted, true},
		{"PROVISIONED -> ROLLED_BACK", StateProvisioned, StateRolledBack, true},
		{"PROVISIONED -> FAILED", StateProvisioned, StateFailed, true},
		{"PROVISIONED -> COMPLETED", StateProvisioned, StateCompleted, false},

		// From TIERS_PERSISTED
		{"TIERS_PERSISTED -> COMPLETED", StateTiersPersisted, StateCompleted, true},
		{"TIERS_PERSISTED -> FAILED", StateTiersPersisted, StateFailed, true},
		{"TIERS_PERSISTED -> ROLLED_BACK", StateTiersPersisted, StateRolledBack, false},

		// Terminal states
		{"COMPLETED -> any", StateCompleted, StateFailed, false},
		{"ROLLED_BACK -> any", StateRolledBack, StateStarted, false},
		{"FAILED -> any", StateFailed, StateRestaurantCreated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStateMachineStartRun(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, err := sm.StartRun(ctx, "inv-token-123", map[string]interface{}{
		"restaurant_name": "The Cellar Door",
		"tier_count":      3,
	})

	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	if saga.ID == "" {
		t.Error("expected non-empty ID")
	}
	if saga.Token != "inv-token-123" {
		t.Errorf("expected token 'inv-token-123', got '%s'", saga.Token)
	}
	if saga.State != StateStarted {
		t.Errorf("expected state 'STARTED', got '%s'", saga.State)
	}
	if saga.Data["tier_count"] != 3 {
		t.Errorf("expected tier_count 3, got %v", saga.Data["tier_count"])
	}
}

func TestStateMachineTransitionTo(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, _ := sm.StartRun(ctx, "inv-token-123", nil)

	// Valid transition: STARTED -> RESTAURANT_CREATED
	updated, err := sm.TransitionTo(ctx, saga.ID, StateRestaurantCreated, "Restaurant created")
	if err != nil {
		t.Fatalf("TransitionTo failed: %v", err)
	}
	if updated.State != StateRestaurantCreated {
		t.Errorf("expected state 'RESTAURANT_CREATED', got '%s'", updated.State)
	}
	if updated.PreviousState != StateStarted {
		t.Errorf("expected previous state 'STARTED', got '%s'", updated.PreviousState)
	}

	// Invalid transition: RESTAURANT_CREATED -> STARTED
	_, err = sm.TransitionTo(ctx, saga.ID, StateStarted, "Invalid transition")
	if err == nil {
		t.Error("expected error for invalid transition")
	}
}

func TestStateMachineMarkRestaurantCreated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, _ := sm.StartRun(ctx, "inv-token-123", nil)

	updated, err := sm.MarkRestaurantCreated(ctx, saga.ID, "rest-abc123")
	if err != nil {
		t.Fatalf("MarkRestaurantCreated failed: %v", err)
	}

	if updated.State != StateRestaurantCreated {
		t.Errorf("expected state 'RESTAURANT_CREATED', got '%s'", updated.State)
	}
	if updated.RestaurantID != "rest-abc123" {
		t.Errorf("expected restaurant_id 'rest-abc123', got '%s'", updated.RestaurantID)
	}
}

func TestStateMachineMarkProvisioned(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, _ := sm.StartRun(ctx, "inv-token-123", nil)
	sm.MarkRestaurantCreated(ctx, saga.ID, "rest-abc123")

	updated, err := sm.MarkProvisioned(ctx, saga.ID)
	if err != nil {
		t.Fatalf("MarkProvisioned failed: %v", err)
	}

	if updated.State != StateProvisioned {
		t.Errorf("expected state 'PROVISIONED', got '%s'", updated.State)
	}
}

func TestStateMachineMarkCompleted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, _ := sm.StartRun(ctx, "inv-token-123", nil)
	sm.MarkRestaurantCreated(ctx, saga.ID, "rest-abc123")
	sm.MarkProvisioned(ctx, saga.ID)
	sm.MarkTiersPersisted(ctx, saga.ID)

	updated, err := sm.MarkCompleted(ctx, saga.ID)
	if err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}

	if updated.State != StateCompleted {
		t.Errorf("expected state 'COMPLETED', got '%s'", updated.State)
	}
	if updated.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
}

func TestStateMachineMarkFailed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, _ := sm.StartRun(ctx, "inv-token-123", nil)
	sm.MarkRestaurantCreated(ctx, saga.ID, "rest-abc123")

	updated, err := sm.MarkFailed(ctx, saga.ID, "Stripe product creation declined")
	if err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	if updated.State != StateFailed {
		t.Errorf("expected state 'FAILED', got '%s'", updated.State)
	}
	if updated.ErrorMessage != "Stripe product creation declined" {
		t.Errorf("expected error message 'Stripe product creation declined', got '%s'", updated.ErrorMessage)
	}
}

func TestStateMachineMarkRolledBack(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, _ := sm.StartRun(ctx, "inv-token-123", nil)
	sm.MarkRestaurantCreated(ctx, saga.ID, "rest-abc123")
	sm.MarkProvisioned(ctx, saga.ID)

	updated, err := sm.MarkRolledBack(ctx, saga.ID, "Tier persistence failed")
	if err != nil {
		t.Fatalf("MarkRolledBack failed: %v", err)
	}

	if updated.State != StateRolledBack {
		t.Errorf("expected state 'ROLLED_BACK', got '%s'", updated.State)
	}
	if updated.ErrorMessage != "Tier persistence failed" {
		t.Errorf("expected error message 'Tier persistence failed', got '%s'", updated.ErrorMessage)
	}
}

func TestStateMachineCannotRollBackBeforeRestaurantExists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, _ := sm.StartRun(ctx, "inv-token-123", nil)

	_, err := sm.MarkRolledBack(ctx, saga.ID, "Nothing to undo")
	if err == nil {
		t.Error("expected error when rolling back before restaurant creation")
	}
}

func TestStateMachineCannotRollBackAfterTiersPersisted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, _ := sm.StartRun(ctx, "inv-token-123", nil)
	sm.MarkRestaurantCreated(ctx, saga.ID, "rest-abc123")
	sm.MarkProvisioned(ctx, saga.ID)
	sm.MarkTiersPersisted(ctx, saga.ID)

	_, err := sm.MarkRolledBack(ctx, saga.ID, "Too late")
	if err == nil {
		t.Error("expected error when rolling back after tiers are persisted")
	}
}

func TestStateMachineCannotFailFromTerminalState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, _ := sm.StartRun(ctx, "inv-token-123", nil)
	sm.MarkRestaurantCreated(ctx, saga.ID, "rest-abc123")
	sm.MarkProvisioned(ctx, saga.ID)
	sm.MarkTiersPersisted(ctx, saga.ID)
	sm.MarkCompleted(ctx, saga.ID)

	_, err := sm.MarkFailed(ctx, saga.ID, "Some error")
	if err == nil {
		t.Error("expected error when failing from terminal state")
	}
}

func TestStateMachineGetTransitionHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, _ := sm.StartRun(ctx, "inv-token-123", nil)
	sm.MarkRestaurantCreated(ctx, saga.ID, "rest-abc123")
	sm.MarkProvisioned(ctx, saga.ID)
	sm.MarkTiersPersisted(ctx, saga.ID)
	sm.MarkCompleted(ctx, saga.ID)

	history, err := sm.GetTransitionHistory(ctx, saga.ID)
	if err != nil {
		t.Fatalf("GetTransitionHistory failed: %v", err)
	}

	if len(history) != 4 {
		t.Fatalf("expected 4 transitions, got %d", len(history))
	}

	// Verify transition order
	expected := []struct {
		from OnboardingState
		to   OnboardingState
	}{
		{StateStarted, StateRestaurantCreated},
		{StateRestaurantCreated, StateProvisioned},
		{StateProvisioned, StateTiersPersisted},
		{StateTiersPersisted, StateCompleted},
	}

	for i, e := range expected {
		if history[i].FromState != e.from {
			t.Errorf("transition %d: expected from state '%s', got '%s'", i, e.from, history[i].FromState)
		}
		if history[i].ToState != e.to {
			t.Errorf("transition %d: expected to state '%s', got '%s'", i, e.to, history[i].ToState)
		}
	}
}

func TestStateMachineGetPendingSagas(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	// Create runs in different states
	saga1, _ := sm.StartRun(ctx, "inv-token-1", nil)
	saga2, _ := sm.StartRun(ctx, "inv-token-2", nil)
	saga3, _ := sm.StartRun(ctx, "inv-token-3", nil)

	// Move saga2 to RESTAURANT_CREATED
	sm.MarkRestaurantCreated(ctx, saga2.ID, "rest-2")

	// Move saga3 to COMPLETED (terminal)
	sm.MarkRestaurantCreated(ctx, saga3.ID, "rest-3")
	sm.MarkProvisioned(ctx, saga3.ID)
	sm.MarkTiersPersisted(ctx, saga3.ID)
	sm.MarkCompleted(ctx, saga3.ID)

	pending, err := sm.GetPendingSagas(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSagas failed: %v", err)
	}

	// Should only get saga1 (STARTED) and saga2 (RESTAURANT_CREATED)
	if len(pending) != 2 {
		t.Errorf("expected 2 pending runs, got %d", len(pending))
	}

	// Verify that saga3 is not in pending list
	for _, s := range pending {
		if s.ID == saga3.ID {
			t.Error("saga3 should not be in pending list")
		}
	}

	// Verify saga1 is in list
	found := false
	for _, s := range pending {
		if s.ID == saga1.ID {
			found = true
			break
		}
	}
	if !found {
		t.Error("saga1 should be in pending list")
	}
}

func TestStateMachineGetSagaByToken(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	saga, _ := sm.StartRun(ctx, "inv-token-unique", nil)

	retrieved, err := sm.GetSagaByToken(ctx, "inv-token-unique")
	if err != nil {
		t.Fatalf("GetSagaByToken failed: %v", err)
	}

	if retrieved.ID != saga.ID {
		t.Errorf("expected run ID '%s', got '%s'", saga.ID, retrieved.ID)
	}
}

func TestStateMachineFullOnboardingFlow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()
	sm := NewStateMachine(store)

	// 1. Start the run
	saga, err := sm.StartRun(ctx, "inv-token-flow", map[string]interface{}{
		"restaurant_name": "Vine & Barrel",
		"tier_count":      2,
	})
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if saga.State != StateStarted {
		t.Errorf("step 1: expected STARTED, got %s", saga.State)
	}

	// 2. Create restaurant
	saga, err = sm.MarkRestaurantCreated(ctx, saga.ID, "rest-12345")
	if err != nil {
		t.Fatalf("MarkRestaurantCreated failed: %v", err)
	}
	if saga.State != StateRestaurantCreated {
		t.Errorf("step 2: expected RESTAURANT_CREATED, got %s", saga.State)
	}

	// 3. Provision payment resources
	saga, err = sm.MarkProvisioned(ctx, saga.ID)
	if err != nil {
		t.Fatalf("MarkProvisioned failed: %v", err)
	}
	if saga.State != StateProvisioned {
		t.Errorf("step 3: expected PROVISIONED, got %s", saga.State)
	}

	// 4. Persist tiers
	saga, err = sm.MarkTiersPersisted(ctx, saga.ID)
	if err != nil {
		t.Fatalf("MarkTiersPersisted failed: %v", err)
	}
	if saga.State != StateTiersPersisted {
		t.Errorf("step 4: expected TIERS_PERSISTED, got %s", saga.State)
	}

	// 5. Complete
	saga, err = sm.MarkCompleted(ctx, saga.ID)
	if err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	if saga.State != StateCompleted {
		t.Errorf("step 5: expected COMPLETED, got %s", saga.State)
	}

	// Verify final state
	if saga.RestaurantID != "rest-12345" {
		t.Errorf("expected restaurant_id 'rest-12345', got '%s'", saga.RestaurantID)
	}
	if saga.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}

	// Verify transition history
	history, _ := sm.GetTransitionHistory(ctx, saga.ID)
	if len(history) != 4 {
		t.Errorf("expected 4 transitions, got %d", len(history))
	}
}
