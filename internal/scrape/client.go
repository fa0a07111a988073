// Package scrape provides the rate-limited, cached, retrying fetch layer
// that all collectors go through.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/orgscout/orgscout/internal/cache"
	"github.com/orgscout/orgscout/internal/constants"
	"github.com/orgscout/orgscout/internal/log"
)

// Browser-like headers. github.com degrades or blocks responses for
// clients that don't look like a real browser.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
}

// HTTPError is a non-2xx response from the upstream host.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	switch e.StatusCode {
	case http.StatusNotFound:
		return fmt.Sprintf("not found (404): %s", e.URL)
	case http.StatusForbidden:
		return fmt.Sprintf("forbidden (403): %s - may be blocked or private", e.URL)
	default:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
	}
}

// Retriable reports whether the response indicates a transient
// condition (rate limiting or server overload) worth retrying.
func (e *HTTPError) Retriable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusServiceUnavailable
}

// RetryFunc observes failed fetch attempts. It is the only hook the
// fetch layer exposes to surrounding CLI/logging code.
type RetryFunc func(attempt int, err error)

// Config configures a Client.
type Config struct {
	Cache       *cache.Store // nil disables caching
	Delay       time.Duration
	Jitter      time.Duration
	MaxAttempts int           // total attempts per fetch, default 5
	RetryBase   time.Duration // first backoff delay, default 2s
	RetryMax    time.Duration // backoff cap, default 60s
	OnRetry     RetryFunc
}

// Client fetches pages with cache lookup, rate limiting, and retry with
// exponential backoff.
type Client struct {
	limiter     *RateLimiter
	cache       *cache.Store
	httpClient  *http.Client
	maxAttempts int
	retryBase   time.Duration
	retryMax    time.Duration
	onRetry     RetryFunc
}

// NewClient creates a fetch client from the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = constants.MaxFetchAttempts
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = constants.RetryBaseDelay
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = constants.RetryMaxDelay
	}
	return &Client{
		limiter:     NewRateLimiter(cfg.Delay, cfg.Jitter),
		cache:       cfg.Cache,
		httpClient:  &http.Client{},
		maxAttempts: cfg.MaxAttempts,
		retryBase:   cfg.RetryBase,
		retryMax:    cfg.RetryMax,
		onRetry:     cfg.OnRetry,
	}
}

// SetDelay reconfigures the request spacing at runtime.
func (c *Client) SetDelay(delay time.Duration) {
	c.limiter.SetDelay(delay)
}

// Fetch retrieves url, using the namespaced url itself as the cache key.
func (c *Client) Fetch(ctx context.Context, url string) (string, bool, error) {
	return c.FetchKeyed(ctx, url, "url:"+url)
}

// FetchKeyed retrieves url under an explicit cache key. It returns the
// page body and whether it was served from cache. A cache hit consumes
// no rate-limit wait and issues no request.
func (c *Client) FetchKeyed(ctx context.Context, url, key string) (string, bool, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			log.Trace("cache hit", "key", key)
			return body, true, nil
		}
	}

	if err := c.limiter.WaitForNext(ctx); err != nil {
		return "", false, err
	}

	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return "", false, err
	}

	if c.cache != nil {
		if err := c.cache.Set(key, body); err != nil {
			log.Debug("cache write failed", "key", key, "error", err)
		}
	}

	return body, false, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, url string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		body, err := c.doRequest(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if c.onRetry != nil {
			c.onRetry(attempt, err)
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.Retriable() {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if attempt == c.maxAttempts {
			break
		}

		log.Debug("fetch retry", "url", url, "attempt", attempt, "error", err)
		if err := sleepCtx(ctx, c.backoff(attempt)); err != nil {
			return "", err
		}
	}

	return "", lastErr
}

// backoff returns the delay before the attempt after the given failed
// one: doubling from the base, capped, with jitter added.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.retryBase << (attempt - 1)
	if d > c.retryMax || d <= 0 {
		d = c.retryMax
	}
	// Full jitter up to half the delay
	return d + time.Duration(rand.Int63n(int64(d/2)+1))
}

func (c *Client) doRequest(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}
