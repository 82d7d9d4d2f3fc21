package saga

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStateStore implements StateStore using PostgreSQL
type PostgresStateStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStateStore creates a new PostgreSQL-based state store
func NewPostgresStateStore(pool *pgxpool.Pool) *PostgresStateStore {
	return &PostgresStateStore{pool: pool}
}

// SaveSaga persists a new onboarding run
func (s *PostgresStateStore) SaveSaga(ctx context.Context, saga *OnboardingSaga) error {
	dataJSON, err := json.Marshal(saga.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal run data: %w", err)
	}

	query := `
		INSERT INTO onboarding_sagas (
			id, token, restaurant_id, state, previous_state,
			data, error_message, created_at, updated_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var previousState *string
	if saga.PreviousState != "" {
		ps := string(saga.PreviousState)
		previousState = &ps
	}

	var restaurantID, errorMessage *string
	if saga.RestaurantID != "" {
		restaurantID = &saga.RestaurantID
	}
	if saga.ErrorMessage != "" {
		errorMessage = &saga.ErrorMessage
	}

	_, err = s.pool.Exec(ctx, query,
		saga.ID,
		saga.Token,
		restaurantID,
		string(saga.State),
		previousState,
		dataJSON,
		errorMessage,
		saga.CreatedAt,
		saga.UpdatedAt,
		saga.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save onboarding run: %w", err)
	}

	return nil
}

// GetSaga retrieves an onboarding run by ID
func (s *PostgresStateStore) GetSaga(ctx context.Context, id string) (*OnboardingSaga, error) {
	query := `
		SELECT id, token, restaurant_id, state, previous_state,
			   data, error_message, created_at, updated_at, completed_at
		FROM onboarding_sagas
		WHERE id = $1
	`

	return s.scanSaga(s.pool.QueryRow(ctx, query, id))
}

// GetSagaByToken retrieves the most recent onboarding run for an
// invitation token. A token can carry more than one run when racing
// requests both pass validation, so the newest wins.
func (s *PostgresStateStore) GetSagaByToken(ctx context.Context, token string) (*OnboardingSaga, error) {
	query := `
		SELECT id, token, restaurant_id, state, previous_state,
			   data, error_message, created_at, updated_at, completed_at
		FROM onboarding_sagas
		WHERE token = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	return s.scanSaga(s.pool.QueryRow(ctx, query, token))
}

// scanSaga scans a row into an OnboardingSaga
func (s *PostgresStateStore) scanSaga(row pgx.Row) (*OnboardingSaga, error) {
	var saga OnboardingSaga
	var state, previousState *string
	var dataJSON []byte
	var restaurantID, errorMessage *string

	err := row.Scan(
		&saga.ID,
		&saga.Token,
		&restaurantID,
		&state,
		&previousState,
		&dataJSON,
		&errorMessage,
		&saga.CreatedAt,
		&saga.UpdatedAt,
		&saga.CompletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to scan onboarding run: %w", err)
	}

	if state != nil {
		saga.State = OnboardingState(*state)
	}
	if previousState != nil {
		saga.PreviousState = OnboardingState(*previousState)
	}
	if restaurantID != nil {
		saga.RestaurantID = *restaurantID
	}
	if errorMessage != nil {
		saga.ErrorMessage = *errorMessage
	}

	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &saga.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run data: %w", err)
		}
	} else {
		saga.Data = make(map[string]interface{})
	}

	return &saga, nil
}

// UpdateSaga updates an existing onboarding run
func (s *PostgresStateStore) UpdateSaga(ctx context.Context, saga *OnboardingSaga) error {
	dataJSON, err := json.Marshal(saga.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal run data: %w", err)
	}

	query := `
		UPDATE onboarding_sagas
		SET restaurant_id = $2,
			state = $3,
			previous_state = $4,
			data = $5,
			error_message = $6,
			updated_at = $7,
			completed_at = $8
		WHERE id = $1
	`

	var previousState *string
	if saga.PreviousState != "" {
		ps := string(saga.PreviousState)
		previousState = &ps
	}

	var restaurantID, errorMessage *string
	if saga.RestaurantID != "" {
		restaurantID = &saga.RestaurantID
	}
	if saga.ErrorMessage != "" {
		errorMessage = &saga.ErrorMessage
	}

	result, err := s.pool.Exec(ctx, query,
		saga.ID,
		restaurantID,
		string(saga.State),
		previousState,
		dataJSON,
		errorMessage,
		time.Now(),
		saga.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update onboarding run: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrStateNotFound
	}

	return nil
}

// SaveTransition persists a state transition
func (s *PostgresStateStore) SaveTransition(ctx context.Context, transition *StateTransition) error {
	query := `
		INSERT INTO onboarding_saga_transitions (id, saga_id, from_state, to_state, reason, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var reason *string
	if transition.Reason != "" {
		reason = &transition.Reason
	}

	_, err := s.pool.Exec(ctx, query,
		transition.ID,
		transition.SagaID,
		string(transition.FromState),
		string(transition.ToState),
		reason,
		transition.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save transition: %w", err)
	}

	return nil
}

// GetTransitions retrieves all transitions for an onboarding run
func (s *PostgresStateStore) GetTransitions(ctx context.Context, sagaID string) ([]StateTransition, error) {
	query := `
		SELECT id, saga_id, from_state, to_state, reason, timestamp
		FROM onboarding_saga_transitions
		WHERE saga_id = $1
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, sagaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transitions: %w", err)
	}
	defer rows.Close()

	var transitions []StateTransition
	for rows.Next() {
		var t StateTransition
		var fromState, toState string
		var reason *string

		if err := rows.Scan(&t.ID, &t.SagaID, &fromState, &toState, &reason, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}

		t.FromState = OnboardingState(fromState)
		t.ToState = OnboardingState(toState)
		if reason != nil {
			t.Reason = *reason
		}

		transitions = append(transitions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transitions: %w", err)
	}

	return transitions, nil
}

// GetSagasByState retrieves onboarding runs by state
func (s *PostgresStateStore) GetSagasByState(ctx context.Context, state OnboardingState, limit int) ([]*OnboardingSaga, error) {
	query := `
		SELECT id, token, restaurant_id, state, previous_state,
			   data, error_message, created_at, updated_at, completed_at
		FROM onboarding_sagas
		WHERE state = $1
		ORDER BY created_at ASC
	`

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.pool.Query(ctx, query, string(state))
	if err != nil {
		return nil, fmt.Errorf("failed to get runs by state: %w", err)
	}
	defer rows.Close()

	var sagas []*OnboardingSaga
	for rows.Next() {
		saga, err := s.scanSaga(rows)
		if err != nil {
			return nil, err
		}
		sagas = append(sagas, saga)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return sagas, nil
}
