package server

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
)

// TestFullWorkoutFlow drives a complete Monday workout through the real
// router with the session client and controller: start, log two exercises,
// complete, then read back history and streak.
func TestFullWorkoutFlow(t *testing.T) {
	db := newFakeStore()
	db.streak = 1
	srv := New(db, []config.TokenEntry{
		{Token: "e2e-token", Login: "alice@example.com", DisplayName: "Alice"},
	}, slog.Default())

	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx := context.Background()
	client := session.NewClient(ts.URL, "e2e-token")

	db.plan = &models.WorkoutPlan{Days: []models.WorkoutDay{
		{Name: "Monday", Exercises: benchExercises},
	}}

	fetched, err := client.FetchPlan(ctx)
	if err != nil {
		t.Fatalf("fetch plan: %v", err)
	}
	day := fetched.Day("Monday")
	if day == nil {
		t.Fatal("plan has no Monday")
	}

	ctrl := session.NewController(client, nil, nil)
	if err := ctrl.Start(ctx, day.Name, day.Exercises); err != nil {
		t.Fatalf("start: %v", err)
	}
	if ctrl.State() != session.StateInProgress {
		t.Fatalf("state = %v, want in progress", ctrl.State())
	}

	for i := range day.Exercises {
		ctrl.SelectExercise(i)
		ctrl.RecordSet(i, []int{10, 9, 8}, 50)
		if err := ctrl.FinalizeExercise(ctx, i); err != nil {
			t.Fatalf("finalize %s: %v", day.Exercises[i].Name, err)
		}
	}
	if !ctrl.AllCompleted() {
		t.Fatal("all exercises should be completed")
	}

	summary, err := ctrl.CompleteWorkout(ctx)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ctrl.State() != session.StateCompleted {
		t.Errorf("state = %v, want completed", ctrl.State())
	}
	if summary.TotalWorkoutSeconds == nil || summary.TotalRestSeconds == nil {
		t.Error("summary totals should be server-provided")
	}

	if len(db.history) != 1 {
		t.Fatalf("history entries = %d, want 1", len(db.history))
	}
	entry := db.history[0]
	if entry.WorkoutDay != "Monday" {
		t.Errorf("workout day = %q, want Monday", entry.WorkoutDay)
	}
	if len(entry.CompletedExercises) != 2 {
		t.Fatalf("completed exercises = %d, want 2", len(entry.CompletedExercises))
	}
	for _, log := range entry.CompletedExercises {
		if len(log.SetsData) != 3 || log.SetsData[0] != 10 {
			t.Errorf("%s sets = %v, want [10 9 8]", log.ExerciseName, log.SetsData)
		}
		if log.Weight != 50 {
			t.Errorf("%s weight = %v, want 50", log.ExerciseName, log.Weight)
		}
	}

	streak, err := client.FetchStreak(ctx)
	if err != nil {
		t.Fatalf("fetch streak: %v", err)
	}
	if streak != 1 {
		t.Errorf("streak = %d, want 1", streak)
	}

	weights, err := client.FetchExerciseWeights(ctx, "Bench Press")
	if err != nil {
		t.Fatalf("fetch weights: %v", err)
	}
	if len(weights) != 1 || weights[0].Weight != 50 {
		t.Errorf("weight points = %+v, want one 50kg point", weights)
	}
}

// TestFullFlowRejectsBadToken verifies a wrong token is rejected before any
// handler runs.
func TestFullFlowRejectsBadToken(t *testing.T) {
	srv := New(newFakeStore(), []config.TokenEntry{
		{Token: "e2e-token", Login: "alice@example.com", DisplayName: "Alice"},
	}, slog.Default())

	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := session.NewClient(ts.URL, "wrong-token")
	ctrl := session.NewController(client, nil, nil)
	err := ctrl.Start(context.Background(), "Monday", benchExercises)
	if err == nil {
		t.Fatal("expected start to fail with a bad token")
	}
	if ctrl.State() != session.StateNotStarted {
		t.Errorf("state = %v, want not started", ctrl.State())
	}
}
