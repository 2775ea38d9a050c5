package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/liftlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

const overviewHistoryLimit = 10

func (h *handlers) trainingOverview(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	streak, err := h.ds.Streak(ctx, uid)
	if err != nil {
		return nil, err
	}

	latest, err := h.ds.LatestUserInfo(ctx, uid)
	if err != nil {
		h.log.Warn("training_overview: user info failed", "error", err)
	}

	history, err := h.ds.QueryHistory(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(history) > overviewHistoryLimit {
		history = history[:overviewHistoryLimit]
	}
	if history == nil {
		history = []models.WorkoutHistoryEntry{}
	}

	overview := map[string]any{
		"streak":          streak,
		"latest_metrics":  latest,
		"recent_workouts": history,
	}

	data, err := json.Marshal(overview)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) workoutPlan(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	plan, err := h.ds.GetPlan(ctx, uid)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
