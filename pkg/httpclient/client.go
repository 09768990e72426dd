package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const userAgent = "movie-explorer/1.0 (+https://www.themoviedb.org)"

// StatusError is returned when the remote answered with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// Client is a thin HTTP client for JSON read APIs.
// Every call is a single attempt bounded by the client timeout.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a new HTTP client
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// NewClientWith wraps an existing *http.Client, keeping its transport and timeout
func NewClientWith(hc *http.Client) *Client {
	return &Client{
		httpClient: hc,
		timeout:    hc.Timeout,
	}
}

// Fetch makes an HTTP GET request and returns the response body.
// Transport failures are returned wrapped; non-2xx responses return *StatusError.
func (c *Client) Fetch(ctx context.Context, targetURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().
			Err(err).
			Str("url", req.URL.Path).
			Dur("latency", time.Since(start)).
			Msg("Request failed")
		return nil, fmt.Errorf("GET %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Warn().
			Int("status", resp.StatusCode).
			Str("url", req.URL.Path).
			Msg("Request rejected")
		return nil, &StatusError{
			URL:        req.URL.Path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", req.URL.Path, err)
	}

	log.Debug().
		Str("url", req.URL.Path).
		Int("bytes", len(body)).
		Dur("latency", time.Since(start)).
		Msg("Fetched")

	return body, nil
}

// Timeout returns the per-request timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}
