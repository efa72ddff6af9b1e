package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/mcpland/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Client implements the interface.
var _ driven.ContextFetcher = (*Client)(nil)

// Location identifies one file in a repository.
type Location struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// String returns the location in "owner/repo/path[@ref]" form.
func (l Location) String() string {
	s := l.Owner + "/" + l.Repo + "/" + l.Path
	if l.Ref != "" {
		s += "@" + l.Ref
	}
	return s
}

// ParseLocation parses "owner/repo/path[@ref]".
func ParseLocation(location string) (Location, error) {
	var loc Location
	rest := strings.TrimSpace(location)
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		loc.Ref = rest[i+1:]
		rest = rest[:i]
		if loc.Ref == "" {
			return Location{}, fmt.Errorf("%w: empty ref in %q", ErrInvalidLocation, location)
		}
	}

	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}
	loc.Owner, loc.Repo, loc.Path = parts[0], parts[1], parts[2]
	return loc, nil
}

// Client fetches file contents through the GitHub API.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

type clientOptions struct {
	httpClient *http.Client
	baseURL    string
	limiter    *RateLimiter
}

// Option configures a Client.
type Option func(*clientOptions)

// WithHTTPClient sets the base HTTP client. The token, if any, is layered
// on top of it.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithBaseURL points the client at a different API root, such as a
// GitHub Enterprise server or a test server.
func WithBaseURL(u string) Option {
	return func(o *clientOptions) {
		o.baseURL = u
	}
}

// WithRateLimiter replaces the default rate limiter.
func WithRateLimiter(l *RateLimiter) Option {
	return func(o *clientOptions) {
		o.limiter = l
	}
}

// NewClient creates a GitHub client. An empty token makes
// unauthenticated requests.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc := oauth2.NewClient(ctx, ts)
		tc.Timeout = httpClient.Timeout
		httpClient = tc
	}

	client := gh.NewClient(httpClient)
	if o.baseURL != "" {
		base, err := url.Parse(strings.TrimRight(o.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github: parse base URL: %w", err)
		}
		client.BaseURL = base
	}

	limiter := o.limiter
	if limiter == nil {
		limit := UnauthenticatedLimit
		if token != "" {
			limit = AuthenticatedLimit
		}
		limiter = NewRateLimiter(limit, ProactiveRate)
	}

	return &Client{gh: client, rateLimiter: limiter}, nil
}

// FetchText returns the content of the file at location
// ("owner/repo/path[@ref]").
func (c *Client) FetchText(ctx context.Context, location string) (string, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return "", err
	}
	return c.GetFileContent(ctx, loc)
}

// GetFileContent fetches the content of a file. Files over 1MB, which the
// contents API returns without inline content, are downloaded from their
// raw URL.
func (c *Client) GetFileContent(ctx context.Context, loc Location) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: loc.Ref}
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, loc.Owner, loc.Repo, loc.Path, opts)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return "", c.wrapError(err, "get contents")
	}
	if file == nil || file.GetType() != "file" {
		return "", fmt.Errorf("%w: %s", ErrNotAFile, loc)
	}

	if file.GetEncoding() == "none" && file.GetDownloadURL() != "" {
		return c.download(ctx, file.GetDownloadURL())
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("github: decode content: %w", err)
	}
	return content, nil
}

func (c *Client) download(ctx context.Context, rawURL string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := c.gh.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("github: create download request: %w", err)
	}

	var buf bytes.Buffer
	resp, err := c.gh.Do(ctx, req, &buf)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return "", c.wrapError(err, "download contents")
	}
	return buf.String(), nil
}

// RateLimiter returns the client's rate limiter.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to this package's error types.
func (c *Client) wrapError(err error, operation string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("github: %s: %w", operation, err)
}
