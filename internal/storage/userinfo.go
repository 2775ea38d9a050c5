package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/liftlog/internal/models"
	"github.com/jackc/pgx/v5"
)

// ErrSnapshotNotFound is returned when a user-info history row does not exist.
var ErrSnapshotNotFound = errors.New("user info snapshot not found")

// LatestUserInfo returns the most recent body-metrics snapshot, or nil if the
// user has never recorded one.
func (db *DB) LatestUserInfo(ctx context.Context, userID int) (*models.UserInfoSnapshot, error) {
	var s models.UserInfoSnapshot
	err := db.Pool.QueryRow(ctx,
		`SELECT id, weight, height, age, body_fat, recorded_at, updated_at
		 FROM user_info_history
		 WHERE user_id = $1
		 ORDER BY recorded_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&s.ID, &s.Weight, &s.Height, &s.Age, &s.BodyFat, &s.RecordedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest user info: %w", err)
	}
	return &s, nil
}

// AppendUserInfo appends a new snapshot to the history and returns it.
func (db *DB) AppendUserInfo(ctx context.Context, userID int, s models.UserInfoSnapshot) (*models.UserInfoSnapshot, error) {
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO user_info_history (user_id, weight, height, age, body_fat)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, recorded_at, updated_at`,
		userID, s.Weight, s.Height, s.Age, s.BodyFat,
	).Scan(&s.ID, &s.RecordedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting user info: %w", err)
	}
	return &s, nil
}

// QueryUserInfoHistory returns all snapshots, newest first.
func (db *DB) QueryUserInfoHistory(ctx context.Context, userID int) ([]models.UserInfoSnapshot, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, weight, height, age, body_fat, recorded_at, updated_at
		 FROM user_info_history
		 WHERE user_id = $1
		 ORDER BY recorded_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying user info history: %w", err)
	}
	defer rows.Close()

	var result []models.UserInfoSnapshot
	for rows.Next() {
		var s models.UserInfoSnapshot
		if err := rows.Scan(&s.ID, &s.Weight, &s.Height, &s.Age, &s.BodyFat, &s.RecordedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user info snapshot: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// CorrectUserInfo fixes one history snapshot in place. Corrections bump
// updated_at but keep recorded_at and never create a new row.
func (db *DB) CorrectUserInfo(ctx context.Context, userID int, id int64, s models.UserInfoSnapshot) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE user_info_history
		 SET weight = $3, height = $4, age = $5, body_fat = $6, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		id, userID, s.Weight, s.Height, s.Age, s.BodyFat)
	if err != nil {
		return fmt.Errorf("correcting user info %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

// BackfillUserInfoHistory migrates legacy single-row profiles into the
// history table. Legacy rows predate the snapshot log; each becomes the
// user's first history entry. Idempotent: migrated rows are marked and
// skipped on subsequent runs, in a single atomic statement.
func (db *DB) BackfillUserInfoHistory(ctx context.Context, log *slog.Logger) error {
	tag, err := db.Pool.Exec(ctx,
		`WITH legacy AS (
			UPDATE user_info_legacy SET migrated = TRUE
			WHERE migrated = FALSE
			RETURNING user_id, weight, height, age, body_fat, recorded_at
		 )
		 INSERT INTO user_info_history (user_id, weight, height, age, body_fat, recorded_at, updated_at)
		 SELECT user_id, weight, height, age, body_fat, recorded_at, recorded_at FROM legacy`)
	if err != nil {
		return fmt.Errorf("backfilling legacy user info: %w", err)
	}

	if tag.RowsAffected() > 0 {
		log.Info("backfilled legacy user info", "rows", tag.RowsAffected())
	}
	return nil
}
