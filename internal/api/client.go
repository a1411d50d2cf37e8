// Package api is the HTTP client for the BitEvents REST API. It attaches the
// bearer token to every request, tags requests with correlation IDs, converts
// failures into user-facing messages, and forces a logout when a protected
// endpoint answers 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a response body the client will read.
const maxBodyBytes = 1 << 20 // 1 MB

// TokenSource supplies the current bearer token; an empty string means
// anonymous. The session store satisfies this.
type TokenSource interface {
	Token() string
}

// Client talks to the BitEvents REST API.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	logger         *zap.Logger
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenSource attaches a bearer-token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHook registers fn to run whenever a protected endpoint
// answers 401. The auth endpoints themselves never trigger it: a failed
// login is an ordinary error, not a session loss.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client rooted at baseURL (including any /api prefix).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do executes one API call. body (when non-nil) is JSON-encoded; out (when
// non-nil) receives the decoded response. Every failure comes back as *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &Error{Message: msgNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.Warn("reading response failed", zap.String("path", path), zap.Error(err))
		return &Error{Message: msgNetwork, Err: err}
	}

	if resp.StatusCode >= 400 {
		return c.failure(method, path, resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			c.logger.Warn("decoding response failed", zap.String("path", path), zap.Error(err))
			return &Error{Status: resp.StatusCode, Message: msgFallback, Err: err}
		}
	}
	return nil
}

// failure builds the classified error and fires the forced-logout side
// effect for 401s outside the auth endpoints.
func (c *Client) failure(method, path string, status int, raw []byte) error {
	apiErr := &Error{Status: status}
	// Ignore decode errors: a non-JSON error body just falls through to the
	// fixed per-status message.
	_ = json.Unmarshal(raw, &apiErr.Body)
	apiErr.Message = classify(status, apiErr.Body)

	c.logger.Warn("api error",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("message", apiErr.Message))

	if status == http.StatusUnauthorized && !isAuthPath(path) && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	return apiErr
}

// isAuthPath reports whether path belongs to the login/registration flow,
// where a 401 must not clear the session.
func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/")
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
