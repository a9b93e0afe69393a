package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/matchscout/internal/adapters/repository"
)

// Result of a single submission.
type submitResult int

const (
	resultAccepted submitResult = iota
	resultDuplicate
	resultFailed
)

// client wraps http.Client with the service routes.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func (c *client) health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *client) submit(ctx context.Context, e RawEntry) submitResult {
	resp, err := c.do(ctx, http.MethodPost, "/entries", e)
	if err != nil {
		return resultFailed
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusAccepted:
		return resultAccepted
	case http.StatusOK:
		return resultDuplicate
	default:
		return resultFailed
	}
}

// storedEntries reads the stored entry count from GET /stats.
func (c *client) storedEntries(ctx context.Context) (int, error) {
	var stats struct {
		StoredEntries int `json:"storedEntries"`
	}
	if err := c.getJSON(ctx, "/stats", &stats); err != nil {
		return 0, err
	}
	return stats.StoredEntries, nil
}

func (c *client) leaderboard(ctx context.Context, n int) ([]repository.Ranked, error) {
	var out []repository.Ranked
	if err := c.getJSON(ctx, fmt.Sprintf("/leaderboard?limit=%d", n), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
