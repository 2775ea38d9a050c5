package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/config"
	liftlogmcp "github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Store is the storage surface the handlers need. *storage.DB satisfies it;
// tests substitute a fake.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)

	CreateSession(ctx context.Context, userID int, workoutDay string, exercises []models.Exercise) (*models.WorkoutSession, error)
	GetSession(ctx context.Context, sessionID uuid.UUID, userID int) (*models.WorkoutSession, error)
	AppendExerciseLog(ctx context.Context, sessionID uuid.UUID, userID int, entry models.ExerciseLog) error
	CompleteSession(ctx context.Context, sessionID uuid.UUID, userID int) (*storage.CompletionSummary, error)

	AppendExerciseWeight(ctx context.Context, userID int, exerciseName string, weight float64, recordedAt time.Time) error
	QueryExerciseWeights(ctx context.Context, userID int, exerciseName string) ([]models.WeightPoint, error)

	QueryHistory(ctx context.Context, userID int) ([]models.WorkoutHistoryEntry, error)
	Streak(ctx context.Context, userID int) (int, error)
	GetTrainingStats(ctx context.Context, userID int) (*storage.TrainingStats, error)

	GetPlan(ctx context.Context, userID int) (*models.WorkoutPlan, error)
	SavePlan(ctx context.Context, userID int, plan *models.WorkoutPlan) error

	LatestUserInfo(ctx context.Context, userID int) (*models.UserInfoSnapshot, error)
	AppendUserInfo(ctx context.Context, userID int, s models.UserInfoSnapshot) (*models.UserInfoSnapshot, error)
	QueryUserInfoHistory(ctx context.Context, userID int) ([]models.UserInfoSnapshot, error)
	CorrectUserInfo(ctx context.Context, userID int, id int64, s models.UserInfoSnapshot) error
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     Store
	log    *slog.Logger
	auth   func(http.Handler) http.Handler
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db Store, tokens []config.TokenEntry, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		log:    log,
		auth:   BearerAuth(tokens, db, log),
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.auth)

		r.Get("/me", s.handleMe)

		// Active workout session
		r.Post("/start-workout", s.handleStartWorkout)
		r.Post("/log-exercise", s.handleLogExercise)
		r.Post("/complete-workout", s.handleCompleteWorkout)

		// History and analytics
		r.Get("/workout-history", s.handleWorkoutHistory)
		r.Get("/streak", s.handleStreak)
		r.Get("/stats", s.handleStats)
		r.Get("/exercise-weights/{name}", s.handleExerciseWeights)

		// Plan editor
		r.Get("/workout-plan", s.handleGetPlan)
		r.Post("/workout-plan", s.handleSavePlan)

		// Body metrics
		r.Get("/user-info", s.handleGetUserInfo)
		r.Post("/user-info", s.handlePostUserInfo)
		r.Get("/user-info-history", s.handleUserInfoHistory)
		r.Put("/user-info-history/{id}", s.handleCorrectUserInfo)
	})
}

// SetMCP mounts the MCP server under /mcp, behind the same bearer auth as
// the REST API. The authenticated user ID is carried into tool handlers via
// the MCP context.
func (s *Server) SetMCP(m *mcpserver.MCPServer) {
	h := mcpserver.NewStreamableHTTPServer(m,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return liftlogmcp.WithUserID(ctx, userIDFromContext(r))
		}),
	)
	s.router.With(s.auth).Mount("/mcp", h)
}
