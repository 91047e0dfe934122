// Package consoleclient is a small HTTP client for the console API, intended
// for dashboards and operational tooling.
package consoleclient

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
)

// Event mirrors the API's event representation.
type Event struct {
	ID           string  `json:"id"`
	Timestamp    string  `json:"timestamp"`
	Text         string  `json:"text"`
	Confidence   float64 `json:"confidence"`
	Severity     string  `json:"severity"`
	Acknowledged bool    `json:"acknowledged"`
}

// Window is one page of the filtered view.
type Window struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	Start  int     `json:"start"`
}

// Status mirrors the API's operational snapshot.
type Status struct {
	Mode           string         `json:"mode"`
	Endpoint       string         `json:"endpoint,omitempty"`
	ConnState      string         `json:"connection_state"`
	Paused         bool           `json:"paused"`
	BufferLen      int            `json:"buffer_len"`
	ViewLen        int            `json:"view_len"`
	Evicted        uint64         `json:"evicted"`
	Unseen         int            `json:"unseen"`
	AtBottom       bool           `json:"at_bottom"`
	EventsPerSec   float64        `json:"events_per_sec"`
	SeverityCounts map[string]int `json:"severity_counts"`
}

// ScrollState is the tracker view returned by viewport operations.
type ScrollState struct {
	AtBottom bool `json:"at_bottom"`
	Unseen   int  `json:"unseen"`
}

// Client talks to one console instance.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window fetches one page of the filtered view.
func (c *Client) Window(ctx context.Context, start, count int) (Window, error) {
	var out Window
	path := fmt.Sprintf("/api/v1/console/window?start=%d&count=%d", start, count)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Status fetches the operational snapshot.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	err := c.do(ctx, http.MethodGet, "/api/v1/console/status", nil, &out)
	return out, err
}

// Event fetches one event by id.
func (c *Client) Event(ctx context.Context, id string) (Event, error) {
	var out Event
	err := c.do(ctx, http.MethodGet, "/api/v1/console/events/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Copy fetches the clipboard-ready form of one event. format is "text" or
// "json".
func (c *Client) Copy(ctx context.Context, id, format string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	path := "/api/v1/console/events/" + url.PathEscape(id) + "/copy?format=" + url.QueryEscape(format)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Content, err
}

// Acknowledge marks one event. Returns whether the id was found.
func (c *Client) Acknowledge(ctx context.Context, id string) (bool, error) {
	var out struct {
		Acknowledged bool `json:"acknowledged"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/console/ack", map[string]string{"id": id}, &out)
	return out.Acknowledged, err
}

// Pause suppresses ingestion at the source.
func (c *Client) Pause(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/console/pause", nil, nil)
}

// Resume re-enables ingestion.
func (c *Client) Resume(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/console/resume", nil, nil)
}

// Clear empties the console buffer.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/console/clear", nil, nil)
}

// SetEndpoint switches the stream source; empty selects simulation.
func (c *Client) SetEndpoint(ctx context.Context, endpoint string) (Status, error) {
	var out Status
	err := c.do(ctx, http.MethodPut, "/api/v1/console/endpoint", map[string]string{"endpoint": endpoint}, &out)
	return out, err
}

// Reconnect re-applies the current endpoint.
func (c *Client) Reconnect(ctx context.Context) (Status, error) {
	var out Status
	err := c.do(ctx, http.MethodPost, "/api/v1/console/reconnect", nil, &out)
	return out, err
}

// SetSeverityEnabled toggles one severity in the view filter.
func (c *Client) SetSeverityEnabled(ctx context.Context, severity string, enabled bool) error {
	body := map[string]any{"severity": severity, "enabled": enabled}
	return c.do(ctx, http.MethodPut, "/api/v1/console/filter", body, nil)
}

// SetQuery replaces the free-text filter query.
func (c *Client) SetQuery(ctx context.Context, query string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/console/query", map[string]string{"query": query}, nil)
}

// SetViewport reports the consumer's scroll geometry.
func (c *Client) SetViewport(ctx context.Context, offset, viewportHeight float64) (ScrollState, error) {
	var out ScrollState
	body := map[string]float64{"offset": offset, "viewport_height": viewportHeight}
	err := c.do(ctx, http.MethodPut, "/api/v1/console/viewport", body, &out)
	return out, err
}

// ScrollToBottom snaps the viewport to the newest row.
func (c *Client) ScrollToBottom(ctx context.Context) (ScrollState, error) {
	var out ScrollState
	err := c.do(ctx, http.MethodPost, "/api/v1/console/scroll-to-bottom", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, into any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if into == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
