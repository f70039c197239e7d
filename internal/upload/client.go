package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/setsreps/internal/models"
)

const sendAttempts = 3

// ImportResult mirrors the server's import response.
type ImportResult struct {
	Received  int `json:"received"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
}

// Client sends workouts to the SetsReps server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	retryDelay time.Duration // doubled after each failed attempt
}

// NewClient creates a new HTTP client for the SetsReps server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		retryDelay: time.Second,
	}
}

// SendWorkouts POSTs a batch to the server's import endpoint.
// Retries up to 3 times with exponential backoff on network errors and 5xx
// responses; other statuses fail at once.
func (c *Client) SendWorkouts(ctx context.Context, ws []models.CompletedWorkout) (*ImportResult, error) {
	data, err := json.Marshal(map[string]any{"workouts": ws})
	if err != nil {
		return nil, fmt.Errorf("marshaling workouts: %w", err)
	}

	var lastErr error
	for attempt := range sendAttempts {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay << uint(attempt-1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, retry, err := c.post(ctx, data)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", sendAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, data []byte) (*ImportResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/workouts/import", bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500, fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
	}

	var result ImportResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, false, fmt.Errorf("decoding import response: %w", err)
	}
	return &result, false, nil
}
