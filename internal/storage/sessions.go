package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrSessionNotFound is returned when a session ID does not exist for the user.
var ErrSessionNotFound = errors.New("session not found")

// CreateSession inserts a new active session with a plan snapshot and returns
// it with the server-side start timestamp.
func (db *DB) CreateSession(ctx context.Context, userID int, workoutDay string, exercises []models.Exercise) (*models.WorkoutSession, error) {
	exercisesJSON, err := json.Marshal(exercises)
	if err != nil {
		return nil, fmt.Errorf("marshaling exercise snapshot: %w", err)
	}

	session := &models.WorkoutSession{
		ID:         uuid.New(),
		UserID:     userID,
		WorkoutDay: workoutDay,
		Exercises:  exercises,
	}

	err = db.Pool.QueryRow(ctx,
		`INSERT INTO workout_sessions (id, user_id, workout_day, exercises)
		 VALUES ($1, $2, $3, $4)
		 RETURNING started_at`,
		session.ID, userID, workoutDay, exercisesJSON,
	).Scan(&session.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return session, nil
}

// GetSession retrieves an active session with its logged exercises.
func (db *DB) GetSession(ctx context.Context, sessionID uuid.UUID, userID int) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	var exercisesJSON []byte

	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, workout_day, exercises, started_at
		 FROM workout_sessions
		 WHERE id = $1 AND user_id = $2`,
		sessionID, userID,
	).Scan(&s.ID, &s.UserID, &s.WorkoutDay, &exercisesJSON, &s.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if err := json.Unmarshal(exercisesJSON, &s.Exercises); err != nil {
		return nil, fmt.Errorf("unmarshaling exercise snapshot: %w", err)
	}

	logs, err := db.querySessionLogs(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	s.CompletedExercises = logs
	return &s, nil
}

// AppendExerciseLog appends one finalized exercise attempt to a session.
// Logs are append-only; concurrent appends for the same session are all kept.
func (db *DB) AppendExerciseLog(ctx context.Context, sessionID uuid.UUID, userID int, entry models.ExerciseLog) error {
	setsJSON, err := json.Marshal(entry.SetsData)
	if err != nil {
		return fmt.Errorf("marshaling sets data: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO exercise_logs (session_id, user_id, exercise_name, sets_data, weight, rest_taken_sec, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sessionID, userID, entry.ExerciseName, setsJSON, entry.Weight, entry.RestTakenSeconds, entry.CompletedAt)
	if err != nil {
		return fmt.Errorf("inserting exercise log: %w", err)
	}
	return nil
}

func (db *DB) querySessionLogs(ctx context.Context, sessionID uuid.UUID, userID int) ([]models.ExerciseLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_name, sets_data, weight, rest_taken_sec, completed_at
		 FROM exercise_logs
		 WHERE session_id = $1 AND user_id = $2
		 ORDER BY completed_at ASC, id ASC`,
		sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise logs: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseLog
	for rows.Next() {
		var l models.ExerciseLog
		var setsJSON []byte
		if err := rows.Scan(&l.ExerciseName, &setsJSON, &l.Weight, &l.RestTakenSeconds, &l.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise log: %w", err)
		}
		if err := json.Unmarshal(setsJSON, &l.SetsData); err != nil {
			return nil, fmt.Errorf("unmarshaling sets data: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// DeleteSession removes an active session and its logs.
func (db *DB) DeleteSession(ctx context.Context, sessionID uuid.UUID, userID int) error {
	if _, err := db.Pool.Exec(ctx,
		`DELETE FROM exercise_logs WHERE session_id = $1 AND user_id = $2`,
		sessionID, userID); err != nil {
		return fmt.Errorf("deleting exercise logs: %w", err)
	}
	if _, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_sessions WHERE id = $1 AND user_id = $2`,
		sessionID, userID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// SweepAbandonedSessions deletes sessions (and their logs) older than maxAge.
// Abandoned sessions are never completed, so nothing reads them again; this
// runs at startup and is safe to repeat.
func (db *DB) SweepAbandonedSessions(ctx context.Context, maxAge time.Duration, log *slog.Logger) error {
	cutoff := time.Now().Add(-maxAge)

	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM exercise_logs WHERE session_id IN
		 (SELECT id FROM workout_sessions WHERE started_at < $1)`,
		cutoff)
	if err != nil {
		return fmt.Errorf("sweeping abandoned logs: %w", err)
	}
	logsRemoved := tag.RowsAffected()

	tag, err = db.Pool.Exec(ctx,
		`DELETE FROM workout_sessions WHERE started_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("sweeping abandoned sessions: %w", err)
	}

	if tag.RowsAffected() > 0 {
		log.Info("swept abandoned sessions",
			"sessions", tag.RowsAffected(),
			"logs", logsRemoved,
			"cutoff", cutoff.Format(time.RFC3339))
	}
	return nil
}
