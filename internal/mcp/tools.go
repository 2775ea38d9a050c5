package mcp

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Retrieve completed workouts, newest first. Each entry has the workout day, completion time, total workout and rest seconds, and the per-exercise logs (reps per set, weight, rest taken)."),
	mcp.WithString("start", mcp.Description("Only include workouts completed on or after this date (ISO 8601 or YYYY-MM-DD).")),
	mcp.WithString("end", mcp.Description("Only include workouts completed before this date.")),
)

var toolGetStreak = mcp.NewTool("get_streak",
	mcp.WithDescription("Get the current workout streak: consecutive calendar days ending today with at least one completed workout."),
)

var toolGetWorkoutPlan = mcp.NewTool("get_workout_plan",
	mcp.WithDescription("Get the user's weekly workout plan: ordered days, each with its exercises (sets, rep range, rest seconds)."),
)

var toolGetExerciseWeights = mcp.NewTool("get_exercise_weights",
	mcp.WithDescription("Get the logged weight series for one exercise over time, oldest first. Useful for progression/trend analysis."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name exactly as it appears in the plan (e.g. 'Bench Press')")),
)

var toolGetBodyMetrics = mcp.NewTool("get_body_metrics",
	mcp.WithDescription("Get the user's body metrics: the latest snapshot plus the full append-only history (weight, height, age, body fat)."),
)

// --- Tool handlers ---

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	history, err := h.ds.QueryHistory(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	start, end, err := optionalTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	history = filterHistory(history, start, end)

	result, err := mcp.NewToolResultJSON(history)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getStreak(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	streak, err := h.ds.Streak(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_streak", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]int{"streak": streak})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutPlan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	plan, err := h.ds.GetPlan(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_workout_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(plan)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseWeights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	points, err := h.ds.QueryExerciseWeights(ctx, uid, exercise)
	if err != nil {
		h.log.Error("mcp get_exercise_weights", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"exercise": exercise, "weightHistory": points})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getBodyMetrics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	latest, err := h.ds.LatestUserInfo(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_body_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	history, err := h.ds.QueryUserInfoHistory(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_body_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"latest": latest, "history": history})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// optionalTimeRange parses optional bounds; zero times mean unbounded.
func optionalTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func filterHistory(history []models.WorkoutHistoryEntry, start, end time.Time) []models.WorkoutHistoryEntry {
	if start.IsZero() && end.IsZero() {
		return history
	}
	var out []models.WorkoutHistoryEntry
	for _, e := range history {
		if !start.IsZero() && e.CompletedAt.Before(start) {
			continue
		}
		if !end.IsZero() && !e.CompletedAt.Before(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}
