// Package client is the HTTP client for the statistics service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/afisha-events/server/internal/stats"
)

const (
	// DefaultTimeout for HTTP requests to the statistics service.
	DefaultTimeout = 5 * time.Second
	// viewWindow is how far back Views looks when counting unique hits.
	viewWindow = 365 * 24 * time.Hour
)

// Client talks to the statistics service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	app        string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a statistics client. app is the service name recorded
// with every hit.
func NewClient(baseURL, app string, opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		app:     app,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// RecordHit registers one request against uri from the given client IP.
func (c *Client) RecordHit(ctx context.Context, uri, ip string) error {
	hit := stats.Hit{
		App:       c.app,
		URI:       uri,
		IP:        ip,
		Timestamp: stats.Timestamp(time.Now()),
	}

	body, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("marshal hit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build hit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("record hit: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("record hit: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Stats fetches aggregate view counts for the given window. When unique is
// set, repeat hits from the same IP count once.
func (c *Client) Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]stats.ViewCount, error) {
	params := url.Values{}
	params.Set("start", start.Format(stats.TimeLayout))
	params.Set("end", end.Format(stats.TimeLayout))
	if len(uris) > 0 {
		params.Set("uris", strings.Join(uris, ","))
	}
	if unique {
		params.Set("unique", "true")
	}

	requestURL := fmt.Sprintf("%s/stats?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch stats: unexpected status %d", resp.StatusCode)
	}

	var counts []stats.ViewCount
	if err := json.NewDecoder(resp.Body).Decode(&counts); err != nil {
		return nil, fmt.Errorf("decode stats response: %w", err)
	}
	return counts, nil
}

// Views returns unique view counts per URI over the trailing year. The
// window extends a day into the future so clock skew between services
// does not drop fresh hits.
func (c *Client) Views(ctx context.Context, uris []string) (map[string]int64, error) {
	if len(uris) == 0 {
		return map[string]int64{}, nil
	}

	now := time.Now()
	counts, err := c.Stats(ctx, now.Add(-viewWindow), now.Add(24*time.Hour), uris, true)
	if err != nil {
		return nil, err
	}

	views := make(map[string]int64, len(counts))
	for _, count := range counts {
		views[count.URI] += count.Hits
	}
	return views, nil
}
