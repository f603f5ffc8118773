// Package api wraps the print-order and marketplace REST API.
//
// Every call returns explicit errors. Non-2xx responses become *APIError,
// transport failures are wrapped so apperr classifies them as remote, and a
// call that needs a token fails locally (no request) when the session is
// empty. The client never retries.
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

	"printshop/internal/config"
	"printshop/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// TokenSource supplies the bearer token for authenticated calls.
// session.Session satisfies it.
type TokenSource interface {
	Token() (string, bool)
}

// Client talks to the remote service.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter replaces the client-side rate limiter. nil disables throttling.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// New creates a client for the configured base URL.
func New(cfg config.APIConfig, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.GetTimeout()},
		tokens:     tokens,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one call.
type request struct {
	method      string
	path        string
	auth        bool
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, auth bool, payload interface{}) (request, error) {
	r := request{method: method, path: path, auth: auth}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("failed to marshal request: %w", err)
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}
	return r, nil
}

// do performs the request and decodes a 2xx JSON body into out (if non-nil).
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	var token string
	if r.auth {
		tok, ok := "", false
		if c.tokens != nil {
			tok, ok = c.tokens.Token()
		}
		if !ok {
			logging.APIDebug("%s %s: no session token, request not sent", r.method, r.path)
			return ErrNoToken
		}
		token = tok
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Op: r.method + " " + r.path, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := logging.Get(logging.CategoryAPI).With("request_id", requestID)
	start := time.Now()
	log.Debug("%s %s", r.method, r.path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("%s %s failed after %v: %v", r.method, r.path, time.Since(start), err)
		return &TransportError{Op: r.method + " " + r.path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: r.method + " " + r.path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, body)
		log.Warn("%s %s -> %d in %v: %s", r.method, r.path, resp.StatusCode, time.Since(start), apiErr.Message)
		return apiErr
	}
	log.Debug("%s %s -> %d in %v (%d bytes)", r.method, r.path, resp.StatusCode, time.Since(start), len(body))

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: r.method + " " + r.path, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

func escape(id string) string { return url.PathEscape(id) }
