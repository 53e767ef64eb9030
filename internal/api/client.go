package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 15 * time.Second

	requestIDHeader = "X-Request-ID"
	userAgent       = "nutri-cli/1.0"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
	Timeout    time.Duration

	// CheckConnectivity probes Reachability before every request.
	CheckConnectivity bool
	Reachability      Reachability
	Prompter          Prompter
	Notifier          Notifier
	Logger            *zap.Logger
}

type requestConfig struct {
	timeout           time.Duration
	checkConnectivity bool
}

type RequestOption func(*requestConfig)

func WithTimeout(d time.Duration) RequestOption {
	return func(c *requestConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithoutConnectivityCheck() RequestOption {
	return func(c *requestConfig) { c.checkConnectivity = false }
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, path string, in, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, in, out, opts...)
}

func (c *Client) Put(ctx context.Context, path string, in, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPut, path, in, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, opts ...RequestOption) error {
	cfg := requestConfig{timeout: c.Timeout, checkConnectivity: c.CheckConnectivity}
	if cfg.timeout <= 0 {
		cfg.timeout = DefaultTimeout
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.checkConnectivity {
		if err := c.ensureReachable(ctx, method, path); err != nil {
			return err
		}
	}

	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &RequestError{Kind: KindOther, Method: method, Path: path, Err: fmt.Errorf("marshal request body: %w", err)}
		}
		payload = b
	}

	attempts := 1
	if idempotent(method) {
		attempts = 2
	}
	for attempt := 1; ; attempt++ {
		status, body, err := c.send(ctx, cfg.timeout, method, path, payload)
		if err != nil {
			rerr := &RequestError{Kind: classifyTransport(err), Method: method, Path: path, Err: err}
			c.notify(rerr)
			return rerr
		}
		if status >= 500 && attempt < attempts {
			c.logger().Warn("retrying after server error",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", status),
			)
			continue
		}
		if status < 200 || status >= 300 {
			return &RequestError{
				Kind:       KindHTTP,
				Method:     method,
				Path:       path,
				StatusCode: status,
				Message:    serverMessage(body),
			}
		}
		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return &RequestError{Kind: KindFormat, Method: method, Path: path, StatusCode: status, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}
}

func (c *Client) send(ctx context.Context, timeout time.Duration, method, path string, payload []byte) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(requestIDHeader, reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	started := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.logger().Debug("api request failed",
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	c.logger().Debug("api request",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)
	return resp.StatusCode, respBody, nil
}

func (c *Client) ensureReachable(ctx context.Context, method, path string) error {
	probe := c.Reachability
	if probe == nil {
		dial, err := ReachabilityFor(c.baseURL())
		if err != nil {
			return &RequestError{Kind: KindOther, Method: method, Path: path, Err: err}
		}
		probe = dial
	}
	for {
		if probe.Reachable(ctx) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return &RequestError{Kind: classifyTransport(err), Method: method, Path: path, Err: err}
		}
		if c.Prompter == nil || !c.Prompter.ConfirmRetry("No internet connection. Retry?") {
			rerr := &RequestError{Kind: KindNetwork, Method: method, Path: path, Err: ErrNoConnection}
			c.notify(rerr)
			return rerr
		}
	}
}

func (c *Client) notify(err *RequestError) {
	if c.Notifier == nil {
		return
	}
	if err.Kind == KindNetwork || err.Kind == KindTimeout {
		c.Notifier.Notify(err.Kind, UserMessage(err))
	}
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL() + path
}

func (c *Client) baseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func serverMessage(body []byte) string {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(truncate(string(body), 200))
	}
	for _, key := range []string{"message", "error", "detail"} {
		if v, ok := parsed[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// IsRetryable reports whether showing a retry affordance makes sense for err.
func IsRetryable(err error) bool {
	var rerr *RequestError
	if !errors.As(err, &rerr) {
		return false
	}
	switch rerr.Kind {
	case KindNetwork, KindTimeout:
		return true
	case KindHTTP:
		return rerr.StatusCode >= 500
	}
	return false
}
