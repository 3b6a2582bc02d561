// Package coach is a thin HTTP client for the AI coach proxy service.
package coach

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

// Request is the JSON body sent to every proxy endpoint.
type Request struct {
	Type         string `json:"type"`
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	Provider     string `json:"provider,omitempty"`
}

// Response is the proxy's reply.
type Response struct {
	Content    string `json:"content"`
	TokensUsed *int   `json:"tokensUsed,omitempty"`
	Model      string `json:"model"`
	Provider   string `json:"provider"`
}

// Client talks to the coach proxy. A zero base URL means the coach is
// not configured and every call returns ErrConfig.
type Client struct {
	baseURL    string
	provider   string
	httpClient *http.Client
}

// New creates a Client targeting the given proxy base URL.
func New(baseURL, provider string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		provider:   provider,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Insights requests a health insights summary.
func (c *Client) Insights(ctx context.Context, prompt, systemPrompt string) (*Response, error) {
	return c.post(ctx, "/insights", Request{Type: "insights", Prompt: prompt, SystemPrompt: systemPrompt, Provider: c.provider})
}

// Workout requests a generated workout plan.
func (c *Client) Workout(ctx context.Context, prompt, systemPrompt string) (*Response, error) {
	return c.post(ctx, "/workout", Request{Type: "workout", Prompt: prompt, SystemPrompt: systemPrompt, Provider: c.provider})
}

// Tip requests a short daily tip.
func (c *Client) Tip(ctx context.Context, prompt string) (*Response, error) {
	return c.post(ctx, "/tip", Request{Type: "tip", Prompt: prompt, Provider: c.provider})
}

func (c *Client) post(ctx context.Context, path string, reqBody Request) (*Response, error) {
	if c.baseURL == "" {
		return nil, ErrConfig
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrDecode, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNetwork, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, path)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s returned %d", ErrServer, path, resp.StatusCode)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return &out, nil
}
