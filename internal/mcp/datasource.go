package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools, so tests can substitute
// a fake for *storage.DB.
type DataSource interface {
	QueryHistory(ctx context.Context, userID int) ([]models.WorkoutHistoryEntry, error)
	Streak(ctx context.Context, userID int) (int, error)
	GetPlan(ctx context.Context, userID int) (*models.WorkoutPlan, error)
	QueryExerciseWeights(ctx context.Context, userID int, exerciseName string) ([]models.WeightPoint, error)
	LatestUserInfo(ctx context.Context, userID int) (*models.UserInfoSnapshot, error)
	QueryUserInfoHistory(ctx context.Context, userID int) ([]models.UserInfoSnapshot, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
