package models

import (
	"time"

	"github.com/google/uuid"
)

// Exercise is one configured exercise within a workout day.
type Exercise struct {
	Name     string `json:"name"`
	Sets     int    `json:"sets"`
	MinReps  int    `json:"minReps"`
	MaxReps  int    `json:"maxReps"`
	RestTime int    `json:"restTime"` // seconds between sets
}

// WorkoutDay is a named, ordered list of exercises within a plan.
type WorkoutDay struct {
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// WorkoutPlan is a user's full weekly plan. Day names are unique.
type WorkoutPlan struct {
	Days []WorkoutDay `json:"days"`
}

// Day returns the named day, or nil if the plan has no such day.
func (p *WorkoutPlan) Day(name string) *WorkoutDay {
	for i := range p.Days {
		if p.Days[i].Name == name {
			return &p.Days[i]
		}
	}
	return nil
}

// ExerciseLog is one finalized exercise attempt within a session.
// Immutable once appended.
type ExerciseLog struct {
	ExerciseName     string    `json:"exerciseName"`
	SetsData         []int     `json:"setsData"` // reps per set, length == planned sets
	Weight           float64   `json:"weight"`
	RestTakenSeconds int       `json:"restTakenSeconds"`
	CompletedAt      time.Time `json:"completedAt"`
}

// WorkoutSession is an in-progress workout. Created on start, deleted on
// completion; abandoned sessions are swept after an expiry window.
type WorkoutSession struct {
	ID                 uuid.UUID     `json:"sessionId"`
	UserID             int           `json:"-"`
	WorkoutDay         string        `json:"workoutDay"`
	Exercises          []Exercise    `json:"exercises"` // plan snapshot at session start
	StartedAt          time.Time     `json:"startedAt"`
	CompletedExercises []ExerciseLog `json:"completedExercises"`
}

// WorkoutHistoryEntry is the immutable record of one completed session.
type WorkoutHistoryEntry struct {
	ID                  int64         `json:"id"`
	WorkoutDay          string        `json:"workoutDay"`
	WorkoutDate         string        `json:"date"` // YYYY-MM-DD of completion
	CompletedAt         time.Time     `json:"completedAt"`
	TotalWorkoutSeconds int           `json:"totalWorkoutSeconds"`
	TotalRestSeconds    int           `json:"totalRestSeconds"`
	CompletedExercises  []ExerciseLog `json:"completedExercises"`
}

// WeightPoint is one entry in a per-exercise weight-history series.
type WeightPoint struct {
	Weight float64   `json:"weight"`
	Date   time.Time `json:"date"`
}

// UserInfoSnapshot is one append-only body-metrics snapshot. Snapshots are
// individually correctable in place; a correction bumps UpdatedAt but never
// creates a new row.
type UserInfoSnapshot struct {
	ID         int64     `json:"id"`
	Weight     float64   `json:"weight"`
	Height     float64   `json:"height"`
	Age        int       `json:"age"`
	BodyFat    *float64  `json:"bodyFat,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
