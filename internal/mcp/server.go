package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog workout tracking server. Query completed workouts, streaks, the current workout plan, per-exercise weight trends, and body metrics. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetStreak, Handler: h.getStreak},
		server.ServerTool{Tool: toolGetWorkoutPlan, Handler: h.getWorkoutPlan},
		server.ServerTool{Tool: toolGetExerciseWeights, Handler: h.getExerciseWeights},
		server.ServerTool{Tool: toolGetBodyMetrics, Handler: h.getBodyMetrics},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resTrainingOverview, Handler: h.trainingOverview},
		server.ServerResource{Resource: resWorkoutPlan, Handler: h.workoutPlan},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resTrainingOverview = mcp.NewResource(
	"liftlog://training_overview",
	"Training Overview",
	mcp.WithResourceDescription("Current streak, latest body metrics, and the most recent completed workouts"),
	mcp.WithMIMEType("application/json"),
)

var resWorkoutPlan = mcp.NewResource(
	"liftlog://workout_plan",
	"Workout Plan",
	mcp.WithResourceDescription("The user's full weekly workout plan with per-exercise set, rep, and rest configuration"),
	mcp.WithMIMEType("application/json"),
)
