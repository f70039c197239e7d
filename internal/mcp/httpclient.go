package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/setsreps/internal/models"
	"github.com/claude/setsreps/internal/programs"
	"github.com/claude/setsreps/internal/records"
)

// HTTPClient implements DataSource by calling the SetsReps REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func intParams(key string, n int) url.Values {
	v := url.Values{}
	v.Set(key, strconv.Itoa(n))
	return v
}

func (c *HTTPClient) History(ctx context.Context, limit int) ([]models.CompletedWorkout, error) {
	var params url.Values
	if limit > 0 {
		params = intParams("limit", limit)
	}
	var ws []models.CompletedWorkout
	if err := c.get(ctx, "/api/v1/workouts", params, &ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func (c *HTTPClient) Workout(ctx context.Context, id string) (*models.CompletedWorkout, error) {
	var w models.CompletedWorkout
	if err := c.get(ctx, "/api/v1/workouts/"+url.PathEscape(id), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *HTTPClient) PersonalRecords(ctx context.Context) ([]models.PersonalRecord, error) {
	var prs []models.PersonalRecord
	if err := c.get(ctx, "/api/v1/records", nil, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

func (c *HTTPClient) CheckPersonalRecord(ctx context.Context, exercise string, weight float64, reps int) (*RecordCheck, error) {
	body := map[string]any{"exercise": exercise, "weight": weight, "reps": reps}
	var rc RecordCheck
	if err := c.do(ctx, http.MethodPost, "/api/v1/records/check", nil, body, &rc); err != nil {
		return nil, err
	}
	return &rc, nil
}

func (c *HTTPClient) Summary(ctx context.Context, top int) (*TrainingSummary, error) {
	var sum TrainingSummary
	if err := c.get(ctx, "/api/v1/stats/summary", intParams("top", top), &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (c *HTTPClient) Streaks(ctx context.Context) (*records.Streaks, error) {
	var st records.Streaks
	if err := c.get(ctx, "/api/v1/stats/streaks", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *HTTPClient) Periodic(ctx context.Context, g records.Granularity, count int) ([]records.PeriodAggregate, error) {
	params := intParams("count", count)
	params.Set("granularity", string(g))
	var periods []records.PeriodAggregate
	if err := c.get(ctx, "/api/v1/stats/periodic", params, &periods); err != nil {
		return nil, err
	}
	return periods, nil
}

func (c *HTTPClient) RecentActivity(ctx context.Context, days int) ([]records.DayActivity, error) {
	var activity []records.DayActivity
	if err := c.get(ctx, "/api/v1/stats/activity", intParams("days", days), &activity); err != nil {
		return nil, err
	}
	return activity, nil
}

func (c *HTTPClient) Programs(ctx context.Context) ([]programs.Program, error) {
	var ps []programs.Program
	if err := c.get(ctx, "/api/v1/programs", nil, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}
