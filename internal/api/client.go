// Package api is the HTTP client for the SkillForge backend. It maps wire
// failures onto the domain error taxonomy: 401 becomes *domain.AuthError,
// 404 wraps domain.ErrNotFound and everything else is a *domain.ServiceError.
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

	"github.com/skillforge-dev/skillforge/internal/domain"
	"github.com/skillforge-dev/skillforge/internal/logger"
)

// Client talks to the SkillForge backend's /api routes.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	timeout      time.Duration
	voiceTimeout time.Duration
	log          *logger.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request except voice uploads.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithVoiceTimeout bounds voice uploads, which include transcription.
func WithVoiceTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.voiceTimeout = d
	}
}

// WithLogger sets the request logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a client for the backend rooted at baseURL.
// The /api prefix is appended here.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/") + "/api",
		httpClient:   &http.Client{},
		timeout:      30 * time.Second,
		voiceTimeout: 90 * time.Second,
		log:          logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// request describes one backend call.
type request struct {
	op          string
	method      string
	path        string
	token       string
	contentType string
	body        io.Reader
	timeout     time.Duration
	// authEndpoint marks login/register, where any 4xx is a credential problem.
	authEndpoint bool
}

func (c *Client) doJSON(ctx context.Context, r request, in, out any) error {
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", r.op, err)
		}
		r.body = bytes.NewReader(body)
		r.contentType = "application/json"
	}

	data, err := c.do(ctx, r)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.ServiceError{Op: r.op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	timeout := r.timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return nil, &domain.ServiceError{Op: r.op, Err: err}
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("api request failed", "op", r.op, "path", r.path, "error", err)
		return nil, &domain.ServiceError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ServiceError{Op: r.op, Status: resp.StatusCode, Err: err}
	}

	c.log.Debug("api request",
		"op", r.op,
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 400 {
		return nil, mapStatus(r, resp.StatusCode, data)
	}
	return data, nil
}

// errorBody is the FastAPI error envelope.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func detailFrom(data []byte) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil || len(eb.Detail) == 0 {
		return strings.TrimSpace(string(data))
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}
	// Validation errors carry a list of objects.
	return string(eb.Detail)
}

func mapStatus(r request, status int, data []byte) error {
	detail := detailFrom(data)
	switch {
	case status == http.StatusUnauthorized:
		return &domain.AuthError{Message: detail}
	case r.authEndpoint && status < 500:
		return &domain.AuthError{Message: detail}
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w: %s", r.op, domain.ErrNotFound, detail)
	default:
		return &domain.ServiceError{Op: r.op, Status: status, Detail: detail}
	}
}

// IsAuth reports whether err should force the session to sign out.
func IsAuth(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
