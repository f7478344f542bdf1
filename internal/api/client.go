package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AbdulWasayUl/go-country-currency/internal/logger"
	"github.com/AbdulWasayUl/go-country-currency/models"
	"golang.org/x/time/rate"
)

const maxRetries = 3

type Client struct {
	httpClient *http.Client
	rateLimit  models.RateLimitSettings
	limiter    *rate.Limiter

	// RetryDelay is the pause after a transport or 5xx failure,
	// ThrottleDelay the pause after a 429.
	RetryDelay    time.Duration
	ThrottleDelay time.Duration
}

// NewClient builds a client. A zero MaxRequests disables rate limiting.
func NewClient(rl models.RateLimitSettings) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		rateLimit:     rl,
		RetryDelay:    2 * time.Second,
		ThrottleDelay: 5 * time.Second,
	}
	if rl.MaxRequests > 0 && rl.PerDuration > 0 {
		burst := rl.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Every(rl.PerDuration/time.Duration(rl.MaxRequests)), burst)
	}
	return c
}

// Do performs a GET and returns the body of a 200 response. Transport
// errors, 5xx and 429 responses are retried; other statuses fail at once.
func (c *Client) Do(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		logger.Debug("Making request to %s (attempt %d)", url, i+1)

		body, status, err := c.get(ctx, url, headers)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Error("HTTP request failed (attempt %d): %v", i+1, err)
			lastErr = err
			if !sleep(ctx, c.RetryDelay) {
				return nil, ctx.Err()
			}
		case status == http.StatusOK:
			return body, nil
		case status == http.StatusTooManyRequests:
			logger.Error("API returned 429 Too Many Requests (attempt %d)", i+1)
			lastErr = &StatusError{Code: status}
			if !sleep(ctx, c.ThrottleDelay) {
				return nil, ctx.Err()
			}
		case status >= 500:
			logger.Error("API returned status code %d (attempt %d). Body: %s", status, i+1, string(body))
			lastErr = &StatusError{Code: status}
			if !sleep(ctx, c.RetryDelay) {
				return nil, ctx.Err()
			}
		default:
			logger.Error("API returned status code %d (attempt %d). Body: %s", status, i+1, string(body))
			return nil, &StatusError{Code: status}
		}
	}

	return nil, fmt.Errorf("failed to fetch data after max retries: %w", lastErr)
}

func (c *Client) get(ctx context.Context, url string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// StatusError reports a non-OK HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned non-OK status: %d %s", e.Code, http.StatusText(e.Code))
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
