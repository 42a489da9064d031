package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client sends documents to a running FitLife server's import endpoint.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the FitLife server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Upload POSTs a document to /api/v1/import. Transport failures and 5xx
// responses are retried up to 3 times with exponential backoff; a 4xx
// response is returned at once. The server's stats are returned even when
// it rejects the document with undecodable workouts.
func (c *Client) Upload(ctx context.Context, doc []byte, dryRun bool) (*Stats, error) {
	url := c.serverURL + "/api/v1/import"
	if dryRun {
		url += "?dry_run=true"
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			}
		}

		stats, retry, err := c.post(ctx, url, doc)
		if err == nil || !retry {
			return stats, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("upload failed after 3 attempts: %w", lastErr)
}

func (c *Client) post(ctx context.Context, url string, doc []byte) (*Stats, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(doc))
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("sending document: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var stats Stats
		if err := json.Unmarshal(body, &stats); err != nil {
			return nil, false, fmt.Errorf("decoding stats: %w", err)
		}
		return &stats, false, nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		var rejected struct {
			Error string `json:"error"`
			Stats *Stats `json:"stats"`
		}
		if err := json.Unmarshal(body, &rejected); err != nil {
			return nil, false, fmt.Errorf("decoding rejection: %w", err)
		}
		return rejected.Stats, false, fmt.Errorf("%w: %s", ErrUndecodable, rejected.Error)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error (status %d): %s", resp.StatusCode, body)
	default:
		return nil, false, fmt.Errorf("import rejected (status %d): %s", resp.StatusCode, body)
	}
}
