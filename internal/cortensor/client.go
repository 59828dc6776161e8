// HTTP client for the Cortensor completion API.
//
// Complete is the single entry point for dispatching a completion request.
// CompleteText is a convenience wrapper used for small utility calls
// (search query generation) that only need the first choice's text.
package cortensor

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

const (
	// DefaultTimeout for completion API calls.
	DefaultTimeout = 5 * time.Minute

	// maxResponseSize prevents OOM on unexpectedly large API responses (10MB).
	maxResponseSize = 10 * 1024 * 1024

	// maxErrorBodyLen limits error body in error messages to avoid log bloat.
	maxErrorBodyLen = 500

	completionsPath = "/completions"
)

// APIError is a non-2xx reply from the completion endpoint. Fatal to the
// current request; the original status is preserved for the caller.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cortensor API returned status %d: %s", e.StatusCode, e.Body)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // 0 means DefaultTimeout

	// QuerySessionID is the session used by CompleteText. Defaults to -1
	// (provider-assigned ephemeral session).
	QuerySessionID int64

	// HTTPClient overrides the default HTTP client (useful for testing and
	// connection pooling). If nil, a default client is created with
	// context-based timeout.
	HTTPClient *http.Client
}

// Client calls the Cortensor completion endpoint with bearer auth.
// Safe for concurrent use.
type Client struct {
	baseURL        string
	apiKey         string
	timeout        time.Duration
	querySessionID int64
	httpClient     *http.Client
}

// NewClient creates a Client. BaseURL and APIKey must be non-empty; the
// config layer validates that before the client is built.
func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{} // timeout via context, not client
	}
	querySession := opts.QuerySessionID
	if querySession == 0 {
		querySession = -1
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		apiKey:         opts.APIKey,
		timeout:        timeout,
		querySessionID: querySession,
		httpClient:     httpClient,
	}
}

// Complete posts a completion request and returns the raw response body and
// HTTP status. Transport errors and non-2xx statuses are returned as errors;
// non-2xx is an *APIError with the status preserved.
func (c *Client) Complete(ctx context.Context, req *Request) ([]byte, int, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody := string(respBody)
		if len(errBody) > maxErrorBodyLen {
			errBody = errBody[:maxErrorBodyLen] + "... (truncated)"
		}
		return respBody, resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Body: errBody}
	}

	return respBody, resp.StatusCode, nil
}

// CompleteText dispatches a small utility completion and returns the first
// choice's text. Used by the search query generator.
func (c *Client) CompleteText(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	req := &Request{
		SessionID:       c.querySessionID,
		Prompt:          prompt,
		PromptType:      0,
		Stream:          false,
		Timeout:         60,
		ClientReference: "query-gen",
		MaxTokens:       maxTokens,
		Temperature:     temperature,
		TopP:            0.95,
		TopK:            40,
	}

	body, _, err := c.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse completion response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}
	return resp.Choices[0].Text, nil
}
