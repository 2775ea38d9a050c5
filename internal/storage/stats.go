package storage

import (
	"context"
	"fmt"
	"time"
)

// TrainingStats holds aggregate statistics about a user's completed workouts.
type TrainingStats struct {
	TotalWorkouts    int64      `json:"total_workouts"`
	TotalExercises   int64      `json:"total_exercises"`
	TotalWorkoutSecs int64      `json:"total_workout_seconds"`
	TotalRestSecs    int64      `json:"total_rest_seconds"`
	FirstWorkout     *time.Time `json:"first_workout"`
	LastWorkout      *time.Time `json:"last_workout"`
	WorkoutsByDay    []DayStat  `json:"workouts_by_day"`
}

// DayStat holds summary stats for a single workout day.
type DayStat struct {
	Name          string `json:"name"`
	Count         int64  `json:"count"`
	TotalDuration int64  `json:"total_duration_sec"`
}

// GetTrainingStats returns aggregate statistics for a user's workout history.
func (db *DB) GetTrainingStats(ctx context.Context, userID int) (*TrainingStats, error) {
	stats := &TrainingStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(jsonb_array_length(exercises)), 0),
		        COALESCE(SUM(total_workout_sec), 0),
		        COALESCE(SUM(total_rest_sec), 0),
		        MIN(completed_at),
		        MAX(completed_at)
		 FROM workout_history
		 WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.TotalExercises, &stats.TotalWorkoutSecs,
		&stats.TotalRestSecs, &stats.FirstWorkout, &stats.LastWorkout)
	if err != nil {
		return nil, fmt.Errorf("aggregating history: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT workout_day, COUNT(*), COALESCE(SUM(total_workout_sec), 0)
		 FROM workout_history
		 WHERE user_id = $1
		 GROUP BY workout_day
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by day: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s DayStat
		if err := rows.Scan(&s.Name, &s.Count, &s.TotalDuration); err != nil {
			return nil, fmt.Errorf("scanning day stat: %w", err)
		}
		stats.WorkoutsByDay = append(stats.WorkoutsByDay, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
