package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// TestClientAuthorizationHeader verifies every request carries the bearer
// token.
func TestClientAuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]int{"streak": 3})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token")
	streak, err := c.FetchStreak(context.Background())
	if err != nil {
		t.Fatalf("fetch streak: %v", err)
	}
	if streak != 3 {
		t.Errorf("streak = %d, want 3", streak)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

// TestClientUnauthorized verifies a 401 maps to ErrUnauthorized so callers
// can trigger sign-out.
func TestClientUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid token"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "stale-token")
	_, err := c.StartWorkout(context.Background(), "Monday", nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

// TestClientServerError verifies the server's {error} message surfaces in
// the returned error.
func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "setsData length must match configured sets"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	err := c.LogExercise(context.Background(), uuid.New(), "Bench Press", []int{10}, 50, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "setsData length must match configured sets") {
		t.Errorf("err = %v, want the server's message", err)
	}
}

// TestClientStartWorkout verifies the request body shape and response
// parsing for session start.
func TestClientStartWorkout(t *testing.T) {
	want := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/start-workout" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body struct {
			WorkoutDay string            `json:"workoutDay"`
			Exercises  []models.Exercise `json:"exercises"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.WorkoutDay != "Monday" || len(body.Exercises) != 1 {
			t.Errorf("body = %+v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{"sessionId": want})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	got, err := c.StartWorkout(context.Background(), "Monday", []models.Exercise{
		{Name: "Squat", Sets: 3, MinReps: 5, MaxReps: 8, RestTime: 120},
	})
	if err != nil {
		t.Fatalf("start workout: %v", err)
	}
	if got != want {
		t.Errorf("session ID = %v, want %v", got, want)
	}
}

// TestClientFetchExerciseWeights verifies the exercise name is path-escaped.
func TestClientFetchExerciseWeights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.EscapedPath(), "/api/v1/exercise-weights/Bench%20Press") {
			t.Errorf("path = %s, want escaped exercise name", r.URL.EscapedPath())
		}
		json.NewEncoder(w).Encode(map[string]any{"weightHistory": []models.WeightPoint{{Weight: 50}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	points, err := c.FetchExerciseWeights(context.Background(), "Bench Press")
	if err != nil {
		t.Fatalf("fetch weights: %v", err)
	}
	if len(points) != 1 || points[0].Weight != 50 {
		t.Errorf("points = %+v", points)
	}
}
