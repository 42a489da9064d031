package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/fitlife/internal/codec"
	"github.com/claude/fitlife/internal/habits"
	"github.com/claude/fitlife/internal/models"
	"github.com/claude/fitlife/internal/nutrition"
	"github.com/claude/fitlife/internal/ranking"
)

// HTTPClient implements DataSource by calling the FitLife REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server.
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

// statusError is a non-200 response.
type statusError struct {
	path   string
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.status, e.body)
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{path: path, status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	return body, nil
}

// getJSON fetches path and decodes the body into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, what string, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", what, err)
	}
	return nil
}

func limitParams(limit int) url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	return v
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, userID int) ([]models.Workout, error) {
	params := url.Values{}
	if userID != 0 {
		params.Set("user_id", strconv.Itoa(userID))
	}
	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil {
		return nil, err
	}

	var records []codec.Record
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	workouts, err := codec.DecodeAll(records)
	if err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) Leaderboard(ctx context.Context, filter ranking.Filter, limit int) ([]ranking.Entry, error) {
	if limit < 1 {
		return nil, ranking.ErrInvalidLimit
	}
	path := "/api/v1/ranking"
	if filter != ranking.FilterAll && filter != "" {
		path += "/type/" + url.PathEscape(string(filter))
	}
	var entries []ranking.Entry
	if err := c.getJSON(ctx, path, limitParams(limit), "leaderboard", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) CalorieLeaderboard(ctx context.Context, limit int) ([]ranking.CalorieEntry, error) {
	if limit < 1 {
		return nil, ranking.ErrInvalidLimit
	}
	var entries []ranking.CalorieEntry
	if err := c.getJSON(ctx, "/api/v1/ranking/calories", limitParams(limit), "calorie leaderboard", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// UserPosition maps a 404 from the server to ranking.ErrNotRanked.
func (c *HTTPClient) UserPosition(ctx context.Context, userID int) (*ranking.Standing, error) {
	var st ranking.Standing
	err := c.getJSON(ctx, "/api/v1/ranking/users/"+strconv.Itoa(userID), nil, "user position", &st)
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: user %d", ranking.ErrNotRanked, userID)
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *HTTPClient) HabitLeaderboard(ctx context.Context, limit int) ([]ranking.HabitEntry, error) {
	if limit < 1 {
		return nil, ranking.ErrInvalidLimit
	}
	var entries []ranking.HabitEntry
	if err := c.getJSON(ctx, "/api/v1/ranking/habits", limitParams(limit), "habit leaderboard", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) HabitStats(ctx context.Context, userID int) (habits.Summary, error) {
	var s habits.Summary
	err := c.getJSON(ctx, "/api/v1/habits/stats/"+strconv.Itoa(userID), nil, "habit stats", &s)
	return s, err
}

func (c *HTTPClient) MealStats(ctx context.Context, userID int) (nutrition.Summary, error) {
	var s nutrition.Summary
	err := c.getJSON(ctx, "/api/v1/meals/stats/"+strconv.Itoa(userID), nil, "meal stats", &s)
	return s, err
}
