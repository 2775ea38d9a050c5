package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// AppendExerciseWeight appends one point to an exercise's weight series.
// This is the second, non-transactional write of log-exercise; a failure
// here leaves the session log in place.
func (db *DB) AppendExerciseWeight(ctx context.Context, userID int, exerciseName string, weight float64, recordedAt time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercise_weights (user_id, exercise_name, weight, recorded_at)
		 VALUES ($1, $2, $3, $4)`,
		userID, exerciseName, weight, recordedAt)
	if err != nil {
		return fmt.Errorf("inserting exercise weight: %w", err)
	}
	return nil
}

// QueryExerciseWeights returns the weight series for one exercise, oldest first.
func (db *DB) QueryExerciseWeights(ctx context.Context, userID int, exerciseName string) ([]models.WeightPoint, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT weight, recorded_at FROM exercise_weights
		 WHERE user_id = $1 AND exercise_name = $2
		 ORDER BY recorded_at ASC`,
		userID, exerciseName)
	if err != nil {
		return nil, fmt.Errorf("querying exercise weights: %w", err)
	}
	defer rows.Close()

	var result []models.WeightPoint
	for rows.Next() {
		var p models.WeightPoint
		if err := rows.Scan(&p.Weight, &p.Date); err != nil {
			return nil, fmt.Errorf("scanning weight point: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
