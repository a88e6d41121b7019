package cli

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

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	trace      io.Writer
}

// NewClient creates a new API client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken updates the client's token
func (c *Client) SetToken(token string) {
	c.token = token
}

// SetTrace makes the client report each request and its status to w
func (c *Client) SetTrace(w io.Writer) {
	c.trace = w
}

// APIError is a failure envelope returned by the server
type APIError struct {
	StatusCode int    `json:"-"`
	Result     string `json:"result"`
	Message    string `json:"message"`
	ServerTime *int64 `json:"serverTime,omitempty"`
	ClientTime *int64 `json:"clientTime,omitempty"`
	Difference *int64 `json:"difference,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	if e.ServerTime != nil && e.ClientTime != nil && e.Difference != nil {
		msg += fmt.Sprintf(": server %dms, client %dms, difference %dms",
			*e.ServerTime, *e.ClientTime, *e.Difference)
	}
	return msg
}

// Do performs an HTTP request and decodes a JSON body into result. The
// response headers are returned so callers can read cookies.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) (http.Header, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.trace != nil {
		fmt.Fprintf(c.trace, "%s %s -> %d\n", method, path, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err == nil && apiErr.Message != "" {
			return resp.Header, apiErr
		}
		return resp.Header, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return resp.Header, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return resp.Header, nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any) error {
	_, err := c.Do(ctx, http.MethodGet, path, nil, result)
	return err
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	_, err := c.Do(ctx, http.MethodPost, path, body, result)
	return err
}

// Patch performs a PATCH request
func (c *Client) Patch(ctx context.Context, path string, body, result any) error {
	_, err := c.Do(ctx, http.MethodPatch, path, body, result)
	return err
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string, body, result any) error {
	_, err := c.Do(ctx, http.MethodDelete, path, body, result)
	return err
}

// cookieValue returns the named cookie from response headers
func cookieValue(header http.Header, name string) string {
	resp := http.Response{Header: header}
	for _, ck := range resp.Cookies() {
		if ck.Name == name && ck.MaxAge >= 0 {
			return ck.Value
		}
	}
	return ""
}
