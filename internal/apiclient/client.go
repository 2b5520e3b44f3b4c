// Package apiclient provides a shared HTTP JSON client with rate limiting
// and retry, plus canned fetchers for a few public demo APIs.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "taskninja/internal/errors"
)

const userAgent = "taskninja/1.0"

// Client wraps http.Client with a token-bucket limiter and bounded retries
// for transient failures.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryWait  time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithRetries sets the retry count and initial backoff for transient errors.
func WithRetries(n int, wait time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.retryWait = wait
	}
}

// New builds a client with sane defaults: 15s timeout, 5 req/s, 2 retries.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		maxRetries: 2,
		retryWait:  500 * time.Millisecond,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON fetches url and decodes the JSON body into out. Requests that fail
// with a network error or a 5xx status are retried with doubling backoff.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Wrap(apperrors.CodeFileFormat, fmt.Sprintf("invalid JSON from %s", url), err)
	}
	return nil
}

// GetRaw fetches url and returns the raw response body.
func (c *Client) GetRaw(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	wait := c.retryWait

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying request",
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return nil, apperrors.Network(url, ctx.Err())
			case <-time.After(wait):
			}
			wait *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.Network(url, err)
		}

		body, retryable, err := c.doOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, apperrors.InvalidInput(fmt.Sprintf("bad URL %q: %v", url, err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, apperrors.Network(url, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, apperrors.Network(url, err)
	}

	c.logger.Debug("request complete",
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode >= 500 {
		return nil, true, apperrors.APIStatus(url, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, apperrors.APIStatus(url, resp.StatusCode)
	}
	return body, false, nil
}

// SaveJSON writes any fetched payload to disk as indented JSON.
func SaveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to create output directory", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to encode payload", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

func joinURL(base string, parts ...string) string {
	b := strings.TrimRight(base, "/")
	for _, p := range parts {
		b += "/" + strings.TrimLeft(p, "/")
	}
	return b
}
