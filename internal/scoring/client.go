package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/five82/stockpulse/internal/logging"
)

// Service defines the remote scoring API used by the session layer.
// This interface is implemented by *Client and can be used for testing.
type Service interface {
	Health(ctx context.Context) (*HealthResponse, error)
	RateLimit(ctx context.Context) (*RateLimitResponse, error)
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error)
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// Client talks to the scoring service HTTP API.
type Client struct {
	baseURL *url.URL
	http    *resty.Client
	logger  *log.Logger
}

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL   = "https://stockpulse-api.onrender.com"
	defaultUserAgent = "stockpulse/0.1"
	requestIDHeader  = "X-Request-ID"
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.http.SetHeader("User-Agent", ua)
		}
	}
}

// NewClient builds a Client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	rc := resty.New().
		SetBaseURL(base.String()).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", defaultUserAgent)

	c := &Client{
		baseURL: base,
		http:    rc,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	rc.SetLogger(restyLogger{logger: c.logger})
	return c, nil
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// Health probes service liveness.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload HealthResponse
	if err := c.get(ctx, "/health", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// RateLimit fetches the current rate-limit window.
func (c *Client) RateLimit(ctx context.Context) (*RateLimitResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload RateLimitResponse
	if err := c.get(ctx, "/rate-limit", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Analyze requests an analysis for the given stock. Non-2xx responses are
// returned as *APIError; failures without a response as *TransportError.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/analyze")
	if err != nil {
		return nil, &TransportError{Op: "POST /analyze", Err: err}
	}
	if resp.IsError() {
		return nil, newAPIError("/analyze", resp)
	}

	var payload AnalysisResult
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	resp, err := c.request(ctx).Get(path)
	if err != nil {
		return &TransportError{Op: "GET " + path, Err: err}
	}
	if resp.IsError() {
		return newAPIError(path, resp)
	}
	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) request(ctx context.Context) *resty.Request {
	if ctx == nil {
		ctx = context.Background()
	}
	id := uuid.NewString()
	c.logger.Debug().Str("request_id", id).Str("base_url", c.baseURL.String()).Msg("scoring request")
	return c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, id)
}

func newAPIError(path string, resp *resty.Response) *APIError {
	apiErr := &APIError{Endpoint: path, StatusCode: resp.StatusCode()}
	var body ErrorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		apiErr.Detail = body.DetailText()
		apiErr.Code = strings.TrimSpace(body.Code)
	}
	return apiErr
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// ErrInvalidPayload marks a 2xx response whose body could not be decoded.
var ErrInvalidPayload = errors.New("invalid analysis payload")

// APIError is a non-2xx response from the service.
type APIError struct {
	Endpoint   string
	StatusCode int
	Detail     string
	Code       string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api %s returned status %d", e.Endpoint, e.StatusCode)
}

// RateLimited reports whether the service rejected the call for rate limiting.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// TransportError means no response was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// restyLogger routes resty's internal warnings into the file logger so they
// never reach the terminal.
type restyLogger struct {
	logger *log.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug().Msgf(format, v...)
}
