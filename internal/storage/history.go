package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// CompletionSummary is what the complete-workout endpoint returns to the
// caller so the UI can render an immediate summary without re-fetching.
type CompletionSummary struct {
	CompletedAt         time.Time `json:"completedAt"`
	TotalWorkoutSeconds int       `json:"totalWorkoutSeconds"`
	TotalRestSeconds    int       `json:"totalRestSeconds"`
}

// CompleteSession converts an active session into an immutable history entry
// and deletes the session. Totals are server-computed: workout time from the
// session's server-side start timestamp, rest time from the persisted logs.
func (db *DB) CompleteSession(ctx context.Context, sessionID uuid.UUID, userID int) (*CompletionSummary, error) {
	session, err := db.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	completedAt := time.Now().UTC()
	totalWorkout := elapsedSeconds(session.StartedAt, completedAt)

	totalRest := 0
	for _, l := range session.CompletedExercises {
		totalRest += l.RestTakenSeconds
	}

	exercisesJSON, err := json.Marshal(session.CompletedExercises)
	if err != nil {
		return nil, fmt.Errorf("marshaling completed exercises: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning completion tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workout_history (user_id, workout_day, workout_date, completed_at,
		 total_workout_sec, total_rest_sec, exercises)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		userID, session.WorkoutDay, completedAt.Format("2006-01-02"), completedAt,
		totalWorkout, totalRest, exercisesJSON)
	if err != nil {
		return nil, fmt.Errorf("inserting history entry: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM exercise_logs WHERE session_id = $1 AND user_id = $2`,
		sessionID, userID); err != nil {
		return nil, fmt.Errorf("deleting completed logs: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM workout_sessions WHERE id = $1 AND user_id = $2`,
		sessionID, userID); err != nil {
		return nil, fmt.Errorf("deleting completed session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing completion: %w", err)
	}

	return &CompletionSummary{
		CompletedAt:         completedAt,
		TotalWorkoutSeconds: totalWorkout,
		TotalRestSeconds:    totalRest,
	}, nil
}

// elapsedSeconds returns the whole seconds between two instants, rounded to
// the nearest second and clamped at zero. Clock adjustments between the
// session's start and its completion must never produce a negative total.
func elapsedSeconds(from, to time.Time) int {
	s := int(to.Sub(from).Round(time.Second) / time.Second)
	if s < 0 {
		return 0
	}
	return s
}

// QueryHistory returns a user's completed workouts, newest first.
func (db *DB) QueryHistory(ctx context.Context, userID int) ([]models.WorkoutHistoryEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_day, workout_date, completed_at, total_workout_sec, total_rest_sec, exercises
		 FROM workout_history
		 WHERE user_id = $1
		 ORDER BY completed_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutHistoryEntry
	for rows.Next() {
		var e models.WorkoutHistoryEntry
		var exercisesJSON []byte
		if err := rows.Scan(&e.ID, &e.WorkoutDay, &e.WorkoutDate, &e.CompletedAt,
			&e.TotalWorkoutSeconds, &e.TotalRestSeconds, &exercisesJSON); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if err := json.Unmarshal(exercisesJSON, &e.CompletedExercises); err != nil {
			return nil, fmt.Errorf("unmarshaling completed exercises: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// CompletionDates returns the distinct calendar dates (YYYY-MM-DD, newest
// first) on which the user completed at least one workout.
func (db *DB) CompletionDates(ctx context.Context, userID int) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT workout_date FROM workout_history
		 WHERE user_id = $1
		 ORDER BY workout_date DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying completion dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning completion date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Streak computes the current workout streak for a user: the count of
// consecutive calendar days, ending today, with at least one completion.
func (db *DB) Streak(ctx context.Context, userID int) (int, error) {
	dates, err := db.CompletionDates(ctx, userID)
	if err != nil {
		return 0, err
	}
	return StreakFromDates(dates, time.Now().UTC()), nil
}

// StreakFromDates counts the trailing run of consecutive days ending today.
// dates must be distinct YYYY-MM-DD strings sorted newest first; malformed
// entries terminate the run. A gap of one or more days resets the streak to
// the trailing run only, so a workout yesterday without one today counts 0.
// "Today" is now's UTC calendar day, matching how workout_date is stored.
func StreakFromDates(dates []string, now time.Time) int {
	now = now.UTC()
	expected := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	streak := 0
	for _, d := range dates {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			break
		}
		if !day.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}
