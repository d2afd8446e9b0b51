// Package fetch holds the JSON-over-HTTP plumbing shared by the upstream clients.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultHTTPTimeout = 10 * time.Second
	defaultBackoffBase = 150 * time.Millisecond
	maxErrorBody       = 512
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Code, e.Body)
}

// Client issues JSON requests. MaxRetries defaults to zero: upstream
// failures surface on the first attempt and the next poll is the retry.
type Client struct {
	HTTP       *http.Client
	MaxRetries int
	Backoff    time.Duration
}

// New constructs a Client around hc (a default client when nil).
func New(hc *http.Client, maxRetries int) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{HTTP: hc, MaxRetries: maxRetries, Backoff: defaultBackoffBase}
}

// GetJSON performs a GET and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, out any) error {
	return c.do(ctx, http.MethodGet, url, nil, header, out)
}

// PostJSON encodes body, POSTs it and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, body any, header http.Header, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return c.do(ctx, http.MethodPost, url, payload, header, out)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, header http.Header, out any) error {
	var lastErr error
	backoff := c.Backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		for k, vals := range header {
			for _, v := range vals {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
		} else {
			data, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("read response: %w", readErr)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				lastErr = &StatusError{Code: resp.StatusCode, Body: truncate(string(data), maxErrorBody)}
			default:
				if out != nil {
					if err := json.Unmarshal(data, out); err != nil {
						return fmt.Errorf("decode response: %w", err)
					}
				}
				return nil
			}
		}

		if attempt < c.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("request failed without error detail")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
