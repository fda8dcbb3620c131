// Package upstream is a rate-limited client for the SproutMe backend API.
//
// The backend owns users, OTP delivery, and the favorites store of
// record. Every call is context-aware and carries a client timeout; a
// hung upstream fails the request instead of wedging it. No call is
// retried, a failure is terminal for that action.
package upstream

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sproutme/sprout-server/internal/ratelimit"
)

// limiterKey is the single pacing bucket; the upstream is one host.
const limiterKey = "upstream"

// Client is a rate-limited SproutMe backend client.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond paces outbound calls, Burst allows short spikes.
	RequestsPerSecond float64
	Burst             int
}

// New creates a new upstream client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: ratelimit.New(cfg.RequestsPerSecond, cfg.Burst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// doRequest executes an HTTP request with rate limiting.
// A nil payload sends no body; otherwise the payload is sent as JSON.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	// Wait for rate limit
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "SproutMe/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("upstream request",
		"method", method,
		"path", path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return respBody, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
}

// getJSON performs a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return wrapError(op, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return wrapError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// postJSON performs a POST with a JSON payload and decodes the response
// into out when out is non-nil.
func (c *Client) postJSON(ctx context.Context, op, path string, payload, out any) error {
	return c.sendJSON(ctx, http.MethodPost, op, path, payload, out)
}

// putJSON performs a PUT with a JSON payload.
func (c *Client) putJSON(ctx context.Context, op, path string, payload, out any) error {
	return c.sendJSON(ctx, http.MethodPut, op, path, payload, out)
}

func (c *Client) sendJSON(ctx context.Context, method, op, path string, payload, out any) error {
	body, err := c.doRequest(ctx, method, path, nil, payload)
	if err != nil {
		return wrapError(op, err)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return wrapError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
