// Package source fetches notification and follower pages.
//
// Client talks to the remote HTTP API; FileSource replays a saved dump with
// the same offset/limit semantics so a run can be repeated offline.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/0xmhha/likestats/pkg/follower"
	"github.com/0xmhha/likestats/pkg/logger"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://api.yodayo.com"

	// CookieName carries the access token.
	CookieName = "access_token"

	notificationsPath = "/v1/notifications"
	followersPath     = "/v1/users/%s/followers"

	// maxBodySize bounds a single response body.
	maxBodySize = 64 << 20

	// maxErrorBody bounds the body excerpt kept in a StatusError.
	maxErrorBody = 256
)

// Client is an HTTP client for the notification API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	userAgent  string
	maxRetries int
	retryDelay time.Duration
	logger     logger.Logger
}

// Option configures the client.
type Option func(*Client)

// New creates a new API client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent:  "likestats",
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
		logger:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithToken sets the access token sent as a cookie.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetry sets the retry budget for temporary failures.
//
// The n-th retry waits delay * 2^(n-1).
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// notificationsPage is the body of the notifications endpoint.
type notificationsPage struct {
	Notifications []json.RawMessage `json:"notifications"`
}

// followersPage is the body of the followers endpoint.
type followersPage struct {
	Users []struct {
		UUID    string `json:"uuid"`
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
	} `json:"users"`
}

// FetchPage returns the raw notifications in [offset, offset+limit).
func (c *Client) FetchPage(ctx context.Context, offset, limit int) ([]json.RawMessage, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset=%d limit=%d", ErrInvalidPage, offset, limit)
	}

	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	var page notificationsPage
	if err := c.getJSON(ctx, notificationsPath, query, &page); err != nil {
		return nil, err
	}

	if page.Notifications == nil {
		return []json.RawMessage{}, nil
	}
	return page.Notifications, nil
}

// FetchFollowersPage returns one page of a user's followers.
func (c *Client) FetchFollowersPage(ctx context.Context, userID string, offset, limit int) ([]follower.Member, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset=%d limit=%d", ErrInvalidPage, offset, limit)
	}

	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("width", "600")
	query.Set("include_nsfw", "true")

	var page followersPage
	path := fmt.Sprintf(followersPath, url.PathEscape(userID))
	if err := c.getJSON(ctx, path, query, &page); err != nil {
		return nil, err
	}

	members := make([]follower.Member, 0, len(page.Users))
	for _, u := range page.Users {
		members = append(members, follower.Member{
			ID:   strings.TrimSpace(u.UUID),
			Name: strings.TrimSpace(u.Profile.Name),
		})
	}
	return members, nil
}

// getJSON performs a GET with retries and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + query.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoffMultiplier := 1 << (attempt - 1) // nolint:gosec // attempt is bounded by maxRetries
			delay := c.retryDelay * time.Duration(backoffMultiplier)
			c.logger.Debug("retrying request",
				"path", path,
				"attempt", attempt,
				"delay", delay)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := c.do(ctx, endpoint)
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrDecodeResponse, path, err)
			}
			return nil
		}

		lastErr = err
		if !isRetryable(ctx, err) {
			return err
		}

		c.logger.Warn("request attempt failed",
			"path", path,
			"attempt", attempt,
			"error", err)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: c.token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt := strings.TrimSpace(string(body))
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Method:     req.Method,
			URL:        req.URL.Redacted(),
			Body:       excerpt,
		}
	}

	return body, nil
}

// isRetryable checks if a request error is worth repeating.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	// Network errors and client timeouts.
	return true
}
