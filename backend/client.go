// Package backend is the HTTP client for the cost-optimization API.
// The backend is a black-box data source: this client shapes requests,
// enforces the error taxonomy, and decodes leniently so one malformed
// record never takes down a whole view.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultTimeout = 30 * time.Second

// Config holds client settings.
type Config struct {
	// BaseURL is the API root, e.g. "https://optimizer.internal/api".
	BaseURL string
	// SessionCookie, when set, is sent verbatim as the Cookie header.
	// Cookies set by the server are retained in-process via a jar.
	SessionCookie string
	Timeout       time.Duration
	Logger        zerolog.Logger
}

// Client talks to the optimization backend.
type Client struct {
	baseURL       string
	sessionCookie string
	http          *http.Client
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		sessionCookie: cfg.SessionCookie,
		http:          &http.Client{Timeout: timeout, Jar: jar},
		logger:        cfg.Logger,
		tracer:        otel.Tracer("karsi.backend"),
	}, nil
}

// statusResponse is the envelope for action endpoints.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// do issues a request and returns the raw body for 2xx responses.
// Every request carries a generated request ID; responses arriving
// after ctx is done are dropped by the transport, so a dismissed view
// never receives a stale result.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, decodeErr(fmt.Errorf("marshal request body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, transportErr(err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if c.sessionCookie != "" {
		req.Header.Set("Cookie", c.sessionCookie)
	}

	ctx, span := c.tracer.Start(ctx, "backend.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
			attribute.String("request.id", requestID),
		))
	defer span.End()
	req = req.WithContext(ctx)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Msg("backend request failed")
		return nil, transportErr(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusErr(resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// get issues a GET and decodes the body into v.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	data, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return decodeErr(err)
	}
	return nil
}

// action issues a request to an endpoint returning the status envelope
// and converts a non-success status to an error carrying the server's
// message.
func (c *Client) action(ctx context.Context, method, path string, query url.Values, body any) error {
	data, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	var sr statusResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return decodeErr(err)
	}
	if sr.Status != "success" {
		return rejectedErr(sr.Message)
	}
	return nil
}
