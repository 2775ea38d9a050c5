package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// State is the controller's lifecycle position. There is no transition out
// of StateCompleted; abandonment simply leaves the server-side session
// orphaned until the expiry sweep removes it.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateInProgress:
		return "in progress"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// recorder is the transport the controller logs through. *Client satisfies it.
type recorder interface {
	StartWorkout(ctx context.Context, workoutDay string, exercises []models.Exercise) (uuid.UUID, error)
	LogExercise(ctx context.Context, sessionID uuid.UUID, exerciseName string, setsData []int, weight float64, restTakenSeconds int) error
	CompleteWorkout(ctx context.Context, sessionID uuid.UUID) (*Summary, error)
}

var _ recorder = (*Client)(nil)

// Controller owns one active workout from start to completion. All session
// state lives on the instance; nothing is ambient.
type Controller struct {
	rec     recorder
	journal *Journal
	nowFn   func() time.Time

	mu              sync.Mutex
	state           State
	sessionID       uuid.UUID
	workoutDay      string
	exercises       []models.Exercise
	clientStartedAt time.Time // local display clock, independent of the server timestamp
	focus           int       // -1 when no exercise is focused
	completed       []bool
	reps            [][]int
	weights         []float64
	restByExercise  []int
	totalRest       int
	Timer           *RestTimer
}

// NewController creates a controller. journal may be nil to skip local
// journaling; notifier may be nil to silence rest notifications.
func NewController(rec recorder, journal *Journal, notifier Notifier) *Controller {
	c := &Controller{
		rec:     rec,
		journal: journal,
		nowFn:   time.Now,
		focus:   -1,
		Timer:   NewRestTimer(notifier),
	}
	c.Timer.SetOnElapsed(c.addRest)
	return c
}

// Start requests a new session. The client-side start instant is recorded
// regardless of network delay so elapsed-time display stays stable. There is
// no retry: on failure the controller stays in StateNotStarted and the
// caller surfaces a generic message.
func (c *Controller) Start(ctx context.Context, workoutDay string, exercises []models.Exercise) error {
	c.mu.Lock()
	if c.state != StateNotStarted {
		c.mu.Unlock()
		return errors.New("session already started")
	}
	c.mu.Unlock()

	clientStart := c.nowFn()
	sessionID, err := c.rec.StartWorkout(ctx, workoutDay, exercises)
	c.journal.Record(sessionID, "start-workout", workoutDay, err)
	if err != nil {
		return fmt.Errorf("starting workout: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateInProgress
	c.sessionID = sessionID
	c.workoutDay = workoutDay
	c.exercises = exercises
	c.clientStartedAt = clientStart
	c.focus = -1
	c.completed = make([]bool, len(exercises))
	c.reps = make([][]int, len(exercises))
	c.weights = make([]float64, len(exercises))
	c.restByExercise = make([]int, len(exercises))
	c.totalRest = 0
	return nil
}

// SelectExercise focuses an exercise. An out-of-range index is a programming
// error, not a runtime condition, so it panics.
func (c *Controller) SelectExercise(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.exercises) {
		panic(fmt.Sprintf("exercise index %d out of range [0,%d)", index, len(c.exercises)))
	}
	c.focus = index
	c.Timer.SetExerciseName(c.exercises[index].Name)
}

// Reps returns the working reps array for an exercise, initializing it to
// the midpoint of the configured rep range on first access.
func (c *Controller) Reps(index int) []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureRepsLocked(index)
	out := make([]int, len(c.reps[index]))
	copy(out, c.reps[index])
	return out
}

func (c *Controller) ensureRepsLocked(index int) {
	if index < 0 || index >= len(c.exercises) {
		panic(fmt.Sprintf("exercise index %d out of range [0,%d)", index, len(c.exercises)))
	}
	if c.reps[index] != nil {
		return
	}
	e := c.exercises[index]
	midpoint := (e.MinReps + e.MaxReps) / 2
	defaults := make([]int, e.Sets)
	for i := range defaults {
		defaults[i] = midpoint
	}
	c.reps[index] = defaults
}

// RecordSet stores the transient reps and weight for an exercise. The reps
// array stays sized to the configured set count; entries beyond it are
// dropped, missing entries keep their midpoint defaults.
func (c *Controller) RecordSet(index int, reps []int, weight float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureRepsLocked(index)
	copy(c.reps[index], reps)
	if weight < 0 {
		weight = 0
	}
	c.weights[index] = weight
}

// StartRest begins the focused exercise's configured rest countdown.
func (c *Controller) StartRest() {
	c.mu.Lock()
	if c.state != StateInProgress || c.focus < 0 {
		c.mu.Unlock()
		return
	}
	duration := c.exercises[c.focus].RestTime
	c.mu.Unlock()

	c.Timer.Start(duration)
}

// addRest folds a finalized rest period into the session total and the
// focused exercise's accumulator. Installed as the timer's elapsed callback.
func (c *Controller) addRest(elapsedSeconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRest += elapsedSeconds
	if c.focus >= 0 && c.focus < len(c.restByExercise) {
		c.restByExercise[c.focus] += elapsedSeconds
	}
}

// FinalizeExercise submits the exercise's accumulated reps, weight, and rest
// to the server. A dangling rest period for the exercise is finalized first
// (skip accounting, no notification). On success the exercise is marked
// completed and its rest clock cleared; on failure it stays unmarked so the
// user can retry.
func (c *Controller) FinalizeExercise(ctx context.Context, index int) error {
	c.mu.Lock()
	if c.state != StateInProgress {
		c.mu.Unlock()
		return errors.New("no session in progress")
	}
	c.ensureRepsLocked(index)
	focused := c.focus == index
	c.mu.Unlock()

	if focused {
		c.Timer.Skip()
	}

	c.mu.Lock()
	e := c.exercises[index]
	reps := make([]int, len(c.reps[index]))
	copy(reps, c.reps[index])
	weight := c.weights[index]
	rest := c.restByExercise[index]
	sessionID := c.sessionID
	c.mu.Unlock()

	err := c.rec.LogExercise(ctx, sessionID, e.Name, reps, weight, rest)
	c.journal.Record(sessionID, "log-exercise", e.Name, err)
	if err != nil {
		return fmt.Errorf("logging %s: %w", e.Name, err)
	}

	c.mu.Lock()
	c.completed[index] = true
	c.restByExercise[index] = 0
	c.mu.Unlock()
	return nil
}

// CompleteWorkout finalizes any open rest period into the totals, then asks
// the server to close the session. The server's totals are authoritative;
// client accounting fills in only fields the server omits. There is no guard
// against incomplete exercises here: calling early submits whatever has been
// completed.
func (c *Controller) CompleteWorkout(ctx context.Context) (*Summary, error) {
	c.mu.Lock()
	if c.state != StateInProgress {
		c.mu.Unlock()
		return nil, errors.New("no session in progress")
	}
	sessionID := c.sessionID
	workoutDay := c.workoutDay
	c.mu.Unlock()

	c.Timer.Skip()

	summary, err := c.rec.CompleteWorkout(ctx, sessionID)
	c.journal.Record(sessionID, "complete-workout", workoutDay, err)
	if err != nil {
		return nil, fmt.Errorf("completing workout: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateCompleted

	if summary.TotalRestSeconds == nil {
		rest := c.totalRest
		summary.TotalRestSeconds = &rest
	}
	if summary.TotalWorkoutSeconds == nil {
		elapsed := int(c.nowFn().Sub(c.clientStartedAt).Round(time.Second) / time.Second)
		if elapsed < 0 {
			elapsed = 0
		}
		summary.TotalWorkoutSeconds = &elapsed
	}
	return summary, nil
}

// State returns the controller's lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the active session's ID (zero before Start).
func (c *Controller) SessionID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Focus returns the focused exercise index, or -1.
func (c *Controller) Focus() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// Completed reports whether an exercise has been logged.
func (c *Controller) Completed(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return index >= 0 && index < len(c.completed) && c.completed[index]
}

// AllCompleted reports whether every exercise has been logged.
func (c *Controller) AllCompleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, done := range c.completed {
		if !done {
			return false
		}
	}
	return len(c.completed) > 0
}

// TotalRestSeconds returns the client-side rest total (display fallback).
func (c *Controller) TotalRestSeconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalRest
}

// Elapsed returns the display elapsed time from the client-side start instant.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clientStartedAt.IsZero() {
		return 0
	}
	return c.nowFn().Sub(c.clientStartedAt)
}

// Exercises returns the session's exercise snapshot.
func (c *Controller) Exercises() []models.Exercise {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exercises
}
