package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

type startWorkoutRequest struct {
	WorkoutDay string            `json:"workoutDay"`
	Exercises  []models.Exercise `json:"exercises"`
}

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var req startWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.WorkoutDay == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workoutDay is required"})
		return
	}
	if err := validateExercises(req.Exercises); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	session, err := s.db.CreateSession(r.Context(), userIDFromContext(r), req.WorkoutDay, req.Exercises)
	if err != nil {
		s.log.Error("start workout", "day", req.WorkoutDay, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to start workout"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessionId": session.ID})
}

type logExerciseRequest struct {
	SessionID        string      `json:"sessionId"`
	ExerciseName     string      `json:"exerciseName"`
	SetsData         []int       `json:"setsData"`
	Weight           looseNumber `json:"weight"`
	RestTakenSeconds looseNumber `json:"restTakenSeconds"`
}

func (s *Server) handleLogExercise(w http.ResponseWriter, r *http.Request) {
	var req logExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	if req.ExerciseName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exerciseName is required"})
		return
	}

	uid := userIDFromContext(r)
	session, err := s.db.GetSession(r.Context(), sessionID, uid)
	if errors.Is(err, storage.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		s.log.Error("log exercise: load session", "session", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to log exercise"})
		return
	}

	exercise := findExercise(session.Exercises, req.ExerciseName)
	if exercise == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise not in this session"})
		return
	}
	if len(req.SetsData) != exercise.Sets {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "setsData length must match configured sets"})
		return
	}
	if len(session.CompletedExercises) >= len(session.Exercises) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "all exercises already logged"})
		return
	}

	entry := models.ExerciseLog{
		ExerciseName:     req.ExerciseName,
		SetsData:         req.SetsData,
		Weight:           clampNonNegative(float64(req.Weight)),
		RestTakenSeconds: int(clampNonNegative(float64(req.RestTakenSeconds))),
		CompletedAt:      time.Now().UTC(),
	}

	if err := s.db.AppendExerciseLog(r.Context(), sessionID, uid, entry); err != nil {
		s.log.Error("log exercise: append", "session", sessionID, "exercise", req.ExerciseName, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to log exercise"})
		return
	}

	// Second write feeds the per-exercise weight trend. Not transactional
	// with the log append; a failure here leaves the log in place.
	if err := s.db.AppendExerciseWeight(r.Context(), uid, entry.ExerciseName, entry.Weight, entry.CompletedAt); err != nil {
		s.log.Error("log exercise: weight series", "exercise", entry.ExerciseName, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record weight"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type completeWorkoutRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	var req completeWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	summary, err := s.db.CompleteSession(r.Context(), sessionID, userIDFromContext(r))
	if errors.Is(err, storage.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		s.log.Error("complete workout", "session", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to complete workout"})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleWorkoutHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.db.QueryHistory(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if history == nil {
		history = []models.WorkoutHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetTrainingStats(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.db.Streak(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"streak": streak})
}

func (s *Server) handleExerciseWeights(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise name"})
		return
	}

	points, err := s.db.QueryExerciseWeights(r.Context(), userIDFromContext(r), name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if points == nil {
		points = []models.WeightPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"weightHistory": points})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.db.GetPlan(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workoutPlan": plan})
}

type savePlanRequest struct {
	WorkoutPlan models.WorkoutPlan `json:"workoutPlan"`
}

func (s *Server) handleSavePlan(w http.ResponseWriter, r *http.Request) {
	var req savePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := validatePlan(&req.WorkoutPlan); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := s.db.SavePlan(r.Context(), userIDFromContext(r), &req.WorkoutPlan); err != nil {
		s.log.Error("save plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save plan"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"workoutPlan": req.WorkoutPlan})
}

func (s *Server) handleGetUserInfo(w http.ResponseWriter, r *http.Request) {
	latest, err := s.db.LatestUserInfo(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if latest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no user info recorded"})
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

type userInfoRequest struct {
	Weight  looseNumber `json:"weight"`
	Height  looseNumber `json:"height"`
	Age     int         `json:"age"`
	BodyFat *float64    `json:"bodyFat"`
}

func (s *Server) handlePostUserInfo(w http.ResponseWriter, r *http.Request) {
	var req userInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	snapshot, err := s.db.AppendUserInfo(r.Context(), userIDFromContext(r), models.UserInfoSnapshot{
		Weight:  clampNonNegative(float64(req.Weight)),
		Height:  clampNonNegative(float64(req.Height)),
		Age:     req.Age,
		BodyFat: req.BodyFat,
	})
	if err != nil {
		s.log.Error("post user info", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save user info"})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleUserInfoHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.db.QueryUserInfoHistory(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if history == nil {
		history = []models.UserInfoSnapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleCorrectUserInfo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid snapshot ID"})
		return
	}

	var req userInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	err = s.db.CorrectUserInfo(r.Context(), userIDFromContext(r), id, models.UserInfoSnapshot{
		Weight:  clampNonNegative(float64(req.Weight)),
		Height:  clampNonNegative(float64(req.Height)),
		Age:     req.Age,
		BodyFat: req.BodyFat,
	})
	if errors.Is(err, storage.ErrSnapshotNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "snapshot not found"})
		return
	}
	if err != nil {
		s.log.Error("correct user info", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update user info"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func findExercise(exercises []models.Exercise, name string) *models.Exercise {
	for i := range exercises {
		if exercises[i].Name == name {
			return &exercises[i]
		}
	}
	return nil
}

func validatePlan(plan *models.WorkoutPlan) error {
	seen := make(map[string]bool, len(plan.Days))
	for _, day := range plan.Days {
		if day.Name == "" {
			return errors.New("day name is required")
		}
		if seen[day.Name] {
			return errors.New("duplicate day name: " + day.Name)
		}
		seen[day.Name] = true
		if err := validateExercises(day.Exercises); err != nil {
			return err
		}
	}
	return nil
}

func validateExercises(exercises []models.Exercise) error {
	for _, e := range exercises {
		if e.Name == "" {
			return errors.New("exercise name is required")
		}
		if e.Sets <= 0 {
			return errors.New(e.Name + ": sets must be positive")
		}
		if e.MinReps > e.MaxReps {
			return errors.New(e.Name + ": minReps must not exceed maxReps")
		}
		if e.RestTime <= 0 {
			return errors.New(e.Name + ": restTime must be positive")
		}
	}
	return nil
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// looseNumber accepts a JSON number, a numeric string, or garbage (which
// coerces to zero), matching how form-sourced numeric fields arrive.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = looseNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*n = looseNumber(f)
			return nil
		}
	}
	*n = 0
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
