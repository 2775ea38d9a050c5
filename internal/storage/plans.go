package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetPlan returns the user's workout plan, or an empty plan if none is saved.
func (db *DB) GetPlan(ctx context.Context, userID int) (*models.WorkoutPlan, error) {
	var planJSON []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT plan FROM workout_plans WHERE user_id = $1`, userID,
	).Scan(&planJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.WorkoutPlan{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}

	var plan models.WorkoutPlan
	if err := json.Unmarshal(planJSON, &plan); err != nil {
		return nil, fmt.Errorf("unmarshaling plan: %w", err)
	}
	return &plan, nil
}

// SavePlan replaces the user's workout plan.
func (db *DB) SavePlan(ctx context.Context, userID int, plan *models.WorkoutPlan) error {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workout_plans (user_id, plan, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET plan = $2, updated_at = NOW()`,
		userID, planJSON)
	if err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}
	return nil
}
