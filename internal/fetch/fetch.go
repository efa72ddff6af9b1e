// Package fetch retrieves remote context over HTTP with bounded retry.
//
// A fetch makes up to MaxRetries+1 attempts, each under its own timeout.
// Server errors (5xx), 429 Too Many Requests and transport failures are
// retried with exponential backoff plus jitter. Any other 4xx response is
// terminal and returned on the first attempt.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/mcpland/internal/logger"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 5

	// DefaultBaseDelay is the backoff before the first retry.
	DefaultBaseDelay = 500 * time.Millisecond

	// DefaultTimeout bounds a single attempt, including reading the body.
	DefaultTimeout = 15 * time.Second

	// maxJitter is the upper bound of the random delay added to each backoff.
	maxJitter = 100 * time.Millisecond
)

// ErrUnknown is returned when every attempt failed without a recorded cause.
var ErrUnknown = errors.New("fetch: unknown error")

// StatusError is returned for a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s: HTTP %s", e.URL, e.Status)
}

// Retryable reports whether another attempt may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Fetcher performs HTTP GETs with retry.
type Fetcher struct {
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
	jitter     time.Duration
	limiter    *rate.Limiter
	userAgent  string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

// WithBaseDelay sets the backoff before the first retry. Later retries
// double it.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d >= 0 {
			f.baseDelay = d
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLimiter throttles attempts through a token bucket.
func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:     http.DefaultClient,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		timeout:    DefaultTimeout,
		jitter:     maxJitter,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchText fetches url and returns the body as a string.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	body, err := f.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Get fetches url and returns the response body.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: building request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		body, err := f.attempt(ctx, req)
		if err == nil {
			return body, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err

		if attempt < f.maxRetries {
			delay := f.backoff(attempt)
			logger.Debug("fetch %s failed (attempt %d/%d), retrying in %v: %v",
				url, attempt+1, f.maxRetries+1, delay, err)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	if lastErr == nil {
		return nil, ErrUnknown
	}
	return nil, lastErr
}

// attempt performs a single request under the per-attempt timeout.
func (f *Fetcher) attempt(ctx context.Context, req *http.Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.client.Do(req.Clone(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: reading body: %w", err)
	}
	return body, nil
}

// backoff returns baseDelay * 2^attempt plus random jitter.
func (f *Fetcher) backoff(attempt int) time.Duration {
	delay := f.baseDelay << attempt
	if f.jitter > 0 {
		delay += rand.N(f.jitter)
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
