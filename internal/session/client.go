package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// ErrUnauthorized means the bearer token was rejected; the caller should
// sign out and re-authenticate.
var ErrUnauthorized = errors.New("unauthorized")

// Summary is the server's completion response. TotalRestSeconds and
// TotalWorkoutSeconds are pointers so a response that omits them can fall
// back to client-side accounting.
type Summary struct {
	CompletedAt         time.Time `json:"completedAt"`
	TotalRestSeconds    *int      `json:"totalRestSeconds"`
	TotalWorkoutSeconds *int      `json:"totalWorkoutSeconds"`
}

// Client talks to the LiftLog server over HTTP. Requests are single-attempt:
// failures surface to the caller and retries are user-initiated.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given server URL and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// StartWorkout requests a new session for the given day and exercise snapshot.
func (c *Client) StartWorkout(ctx context.Context, workoutDay string, exercises []models.Exercise) (uuid.UUID, error) {
	var resp struct {
		SessionID uuid.UUID `json:"sessionId"`
	}
	err := c.post(ctx, "/api/v1/start-workout", map[string]any{
		"workoutDay": workoutDay,
		"exercises":  exercises,
	}, &resp)
	if err != nil {
		return uuid.Nil, err
	}
	return resp.SessionID, nil
}

// LogExercise appends a finalized exercise attempt to the session.
func (c *Client) LogExercise(ctx context.Context, sessionID uuid.UUID, exerciseName string, setsData []int, weight float64, restTakenSeconds int) error {
	var resp struct {
		Success bool `json:"success"`
	}
	return c.post(ctx, "/api/v1/log-exercise", map[string]any{
		"sessionId":        sessionID,
		"exerciseName":     exerciseName,
		"setsData":         setsData,
		"weight":           weight,
		"restTakenSeconds": restTakenSeconds,
	}, &resp)
}

// CompleteWorkout finalizes the session and returns the server-computed summary.
func (c *Client) CompleteWorkout(ctx context.Context, sessionID uuid.UUID) (*Summary, error) {
	var summary Summary
	err := c.post(ctx, "/api/v1/complete-workout", map[string]any{
		"sessionId": sessionID,
	}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// FetchPlan retrieves the user's workout plan.
func (c *Client) FetchPlan(ctx context.Context) (*models.WorkoutPlan, error) {
	var resp struct {
		WorkoutPlan models.WorkoutPlan `json:"workoutPlan"`
	}
	if err := c.get(ctx, "/api/v1/workout-plan", &resp); err != nil {
		return nil, err
	}
	return &resp.WorkoutPlan, nil
}

// FetchStreak retrieves the current consecutive-day streak.
func (c *Client) FetchStreak(ctx context.Context) (int, error) {
	var resp struct {
		Streak int `json:"streak"`
	}
	if err := c.get(ctx, "/api/v1/streak", &resp); err != nil {
		return 0, err
	}
	return resp.Streak, nil
}

// FetchExerciseWeights retrieves the weight-history series for one exercise.
func (c *Client) FetchExerciseWeights(ctx context.Context, exerciseName string) ([]models.WeightPoint, error) {
	var resp struct {
		WeightHistory []models.WeightPoint `json:"weightHistory"`
	}
	path := "/api/v1/exercise-weights/" + url.PathEscape(exerciseName)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.WeightHistory, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", path, ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s (status %d)", path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", path, err)
	}
	return nil
}
