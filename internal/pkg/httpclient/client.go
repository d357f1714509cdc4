package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// StatusError is returned when the remote answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client wraps resty for requests to gateway APIs.
type Client struct {
	r *resty.Client
}

// New creates a new HTTP client with sensible defaults.
func New() *Client {
	r := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &Client{r: r}
}

// WithTimeout sets a custom timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.r.SetTimeout(d)
	return c
}

// WithRetries sets how many times a failed request is retried.
func (c *Client) WithRetries(n int) *Client {
	c.r.SetRetryCount(n)
	return c
}

// Get sends a GET request and returns the response body.
func (c *Client) Get(ctx context.Context, url string, query map[string]string, headers map[string]string) ([]byte, error) {
	req := c.r.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 256)}
	}
	return resp.Body(), nil
}

// GetJSON sends a GET request and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, query map[string]string, headers map[string]string, out interface{}) error {
	body, err := c.Get(ctx, url, query, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
