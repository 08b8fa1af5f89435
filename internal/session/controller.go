package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/five82/stockpulse/internal/logging"
	"github.com/five82/stockpulse/internal/recommend"
	"github.com/five82/stockpulse/internal/scoring"
	"github.com/five82/stockpulse/internal/state"
)

// ErrBusy is returned when Submit is called while a request is pending.
// Callers are expected to prevent this through the admission gate.
var ErrBusy = errors.New("analysis already in progress")

// CodeCredentialsMissing is the structured error code a service may send
// instead of relying on detail text.
const CodeCredentialsMissing = "upstream_credentials_missing"

// RateLimitProber is the part of the Tracker the controller depends on.
type RateLimitProber interface {
	Probe(ctx context.Context) state.RateLimitStatus
}

// Controller drives a single analysis request from submission to a terminal
// Succeeded or Failed state. At most one request is in flight.
type Controller struct {
	client  scoring.Service
	store   *state.Store
	limiter RateLimitProber
	logger  *log.Logger

	mu      sync.Mutex
	pending bool
}

// NewController builds a Controller publishing into store.
func NewController(client scoring.Service, store *state.Store, limiter RateLimitProber, logger *log.Logger) *Controller {
	return &Controller{
		client:  client,
		store:   store,
		limiter: limiter,
		logger:  logging.OrDiscard(logger),
	}
}

// Submit validates raw input, issues exactly one analysis request and
// publishes every transition. It blocks until the request completes. Every
// failure ends in a Failed state; the only error returned is ErrBusy.
func (c *Controller) Submit(ctx context.Context, raw string) (state.Analysis, error) {
	query := strings.TrimSpace(raw)

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return c.store.Snapshot().Analysis, ErrBusy
	}
	started := time.Now()
	if query == "" {
		a := state.FailedAnalysis("", started, state.ErrorInfo{
			Kind:    state.ErrEmptyInput,
			Message: "stock name is required",
		})
		c.store.SetAnalysis(a)
		c.mu.Unlock()
		return a, nil
	}
	c.pending = true
	c.store.SetAnalysis(state.PendingAnalysis(query, started))
	c.mu.Unlock()

	c.logger.Info().Str("query", query).Msg("analysis submitted")
	result, err := c.client.Analyze(ctx, scoring.AnalyzeRequest{StockName: query})
	a := c.resolve(ctx, query, started, result, err)

	c.mu.Lock()
	c.pending = false
	c.store.SetAnalysis(a)
	c.mu.Unlock()

	ev := c.logger.Info().Str("query", query).Str("phase", a.Phase.String()).Dur("elapsed", time.Since(started))
	if a.Err != nil {
		ev = ev.Str("kind", string(a.Err.Kind))
	}
	ev.Msg("analysis finished")
	return a, nil
}

// Pending reports whether a request is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Controller) resolve(ctx context.Context, query string, started time.Time, result *scoring.AnalysisResult, err error) state.Analysis {
	if err == nil {
		if detail, ok := embeddedError(result); ok {
			if credentialsMissing("", detail) {
				return state.FailedAnalysis(query, started, misconfigured(detail))
			}
			return state.FailedAnalysis(query, started, state.ErrorInfo{
				Kind:    state.ErrServerError,
				Message: detail,
				Detail:  detail,
			})
		}
		if result == nil || strings.TrimSpace(result.Recommendation) == "" {
			c.logger.Error().Str("query", query).Msg("analysis payload has no recommendation")
			return state.FailedAnalysis(query, started, state.ErrorInfo{
				Kind:    state.ErrServerError,
				Message: "invalid analysis payload",
				Detail:  "response carried no recommendation",
			})
		}
		verdict := recommend.Classify(result.Confidence, result.Recommendation)
		return state.SucceededAnalysis(query, started, result, verdict)
	}
	return state.FailedAnalysis(query, started, c.classify(ctx, err))
}

func (c *Controller) classify(ctx context.Context, err error) state.ErrorInfo {
	var apiErr *scoring.APIError
	var transportErr *scoring.TransportError

	switch {
	case errors.As(err, &apiErr) && apiErr.RateLimited():
		c.logger.Warn().Str("detail", apiErr.Detail).Msg("analysis rate limited")
		if c.limiter != nil {
			c.limiter.Probe(ctx)
		}
		msg := apiErr.Detail
		if msg == "" {
			msg = "rate limit exceeded"
		}
		return state.ErrorInfo{Kind: state.ErrRateLimited, Message: msg, Detail: apiErr.Detail}

	case errors.As(err, &apiErr):
		if credentialsMissing(apiErr.Code, apiErr.Detail) {
			c.logger.Error().Int("status", apiErr.StatusCode).Msg("service missing upstream credentials")
			return misconfigured(apiErr.Detail)
		}
		c.logger.Error().Int("status", apiErr.StatusCode).Str("detail", apiErr.Detail).Msg("analysis failed")
		msg := apiErr.Detail
		if msg == "" {
			msg = fmt.Sprintf("server error (status %d)", apiErr.StatusCode)
		}
		return state.ErrorInfo{Kind: state.ErrServerError, Message: msg, Detail: apiErr.Detail}

	case errors.As(err, &transportErr):
		c.logger.Error().Err(err).Msg("analysis request got no response")
		return state.ErrorInfo{Kind: state.ErrUnreachable, Message: "analysis service unreachable", Detail: describeFailure(err)}

	case errors.Is(err, scoring.ErrInvalidPayload):
		c.logger.Error().Err(err).Msg("analysis payload rejected")
		return state.ErrorInfo{Kind: state.ErrServerError, Message: "invalid analysis payload", Detail: err.Error()}

	default:
		c.logger.Error().Err(err).Msg("analysis failed")
		return state.ErrorInfo{Kind: state.ErrServerError, Message: "analysis failed", Detail: err.Error()}
	}
}

// credentialsMissing prefers the structured code and falls back to matching
// the detail text for services that only send free text.
func credentialsMissing(code, detail string) bool {
	if code != "" {
		return code == CodeCredentialsMissing
	}
	return strings.Contains(strings.ToLower(detail), "api key")
}

func misconfigured(detail string) state.ErrorInfo {
	return state.ErrorInfo{
		Kind:    state.ErrMisconfiguredUpstream,
		Message: "analysis service is missing its API key",
		Detail:  detail,
	}
}

// embeddedError finds an error reported inside a 2xx body that carries no
// recommendation.
func embeddedError(result *scoring.AnalysisResult) (string, bool) {
	if result == nil {
		return "", false
	}
	if strings.TrimSpace(result.Recommendation) != "" {
		return "", false
	}
	for _, key := range []string{"error", "detail"} {
		raw, ok := result.Extra[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), true
		}
	}
	return "", false
}
