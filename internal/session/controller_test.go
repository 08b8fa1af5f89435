package session

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/stockpulse/internal/recommend"
	"github.com/five82/stockpulse/internal/scoring"
	"github.com/five82/stockpulse/internal/state"
)

type countingProber struct {
	calls int
}

func (p *countingProber) Probe(context.Context) state.RateLimitStatus {
	p.calls++
	return state.RateLimitStatus{IsLimited: true}
}

func newTestController(t *testing.T, f *fakeService) (*Controller, *state.Store, *countingProber) {
	t.Helper()
	store := &state.Store{}
	prober := &countingProber{}
	return NewController(f.client(t), store, prober, nil), store, prober
}

func TestController_WhitespaceInputNeverHitsNetwork(t *testing.T) {
	f := newFakeService(t)
	c, store, _ := newTestController(t, f)

	got, err := c.Submit(context.Background(), "   \t ")
	require.NoError(t, err)
	assert.Equal(t, state.PhaseFailed, got.Phase)
	require.NotNil(t, got.Err)
	assert.Equal(t, state.ErrEmptyInput, got.Err.Kind)
	assert.EqualValues(t, 0, f.analyzeHits.Load())
	assert.False(t, c.Pending())
	assert.Equal(t, state.PhaseFailed, store.Snapshot().Analysis.Phase)
}

func TestController_SuccessTrimsAndClassifies(t *testing.T) {
	f := newFakeService(t)
	var posted scoring.AnalyzeRequest
	f.setAnalyze(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&posted)
		jsonHandler(http.StatusOK, `{"recommendation":"SELL","confidence":50,"risk_factors":["debt"]}`)(w, r)
	})
	c, store, prober := newTestController(t, f)

	got, err := c.Submit(context.Background(), "  TSLA ")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", posted.StockName)
	assert.Equal(t, state.PhaseSucceeded, got.Phase)
	assert.Equal(t, "TSLA", got.Query)
	require.NotNil(t, got.Result)
	assert.Equal(t, []string{"debt"}, got.Result.RiskFactors)
	require.NotNil(t, got.Verdict)
	assert.Equal(t, recommend.TierModerate, got.Verdict.Tier)
	assert.Equal(t, recommend.Negative, got.Verdict.Polarity)
	assert.Nil(t, got.Err)
	assert.Zero(t, prober.calls)
	assert.Equal(t, state.PhaseSucceeded, store.Snapshot().Analysis.Phase)
}

func TestController_FailureTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantKind   state.ErrorKind
		wantMsg    string
		wantProbes int
	}{
		{
			name:       "rate limited",
			handler:    jsonHandler(http.StatusTooManyRequests, `{"detail":"Rate limit exceeded. Try again in 60 seconds."}`),
			wantKind:   state.ErrRateLimited,
			wantMsg:    "Rate limit exceeded. Try again in 60 seconds.",
			wantProbes: 1,
		},
		{
			name:     "server detail",
			handler:  jsonHandler(http.StatusNotFound, `{"detail":"Stock not found"}`),
			wantKind: state.ErrServerError,
			wantMsg:  "Stock not found",
		},
		{
			name:     "server generic",
			handler:  jsonHandler(http.StatusInternalServerError, `oops`),
			wantKind: state.ErrServerError,
			wantMsg:  "server error (status 500)",
		},
		{
			name:     "api key text",
			handler:  jsonHandler(http.StatusInternalServerError, `{"detail":"GEMINI API KEY not configured"}`),
			wantKind: state.ErrMisconfiguredUpstream,
			wantMsg:  "analysis service is missing its API key",
		},
		{
			name:     "structured code",
			handler:  jsonHandler(http.StatusServiceUnavailable, `{"detail":"upstream unavailable","code":"upstream_credentials_missing"}`),
			wantKind: state.ErrMisconfiguredUpstream,
			wantMsg:  "analysis service is missing its API key",
		},
		{
			name:     "code wins over text",
			handler:  jsonHandler(http.StatusBadRequest, `{"detail":"bad API key format in request","code":"bad_request"}`),
			wantKind: state.ErrServerError,
			wantMsg:  "bad API key format in request",
		},
		{
			name:     "error inside 2xx",
			handler:  jsonHandler(http.StatusOK, `{"error":"OpenAI API key missing"}`),
			wantKind: state.ErrMisconfiguredUpstream,
			wantMsg:  "analysis service is missing its API key",
		},
		{
			name:     "invalid payload",
			handler:  jsonHandler(http.StatusOK, `[]`),
			wantKind: state.ErrServerError,
			wantMsg:  "invalid analysis payload",
		},
		{
			name:     "empty object",
			handler:  jsonHandler(http.StatusOK, `{}`),
			wantKind: state.ErrServerError,
			wantMsg:  "invalid analysis payload",
		},
		{
			name:     "null body",
			handler:  jsonHandler(http.StatusOK, `null`),
			wantKind: state.ErrServerError,
			wantMsg:  "invalid analysis payload",
		},
		{
			name:     "confidence without recommendation",
			handler:  jsonHandler(http.StatusOK, `{"confidence":90}`),
			wantKind: state.ErrServerError,
			wantMsg:  "invalid analysis payload",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeService(t)
			f.setAnalyze(tt.handler)
			c, _, prober := newTestController(t, f)

			got, err := c.Submit(context.Background(), "AAPL")
			require.NoError(t, err)
			assert.Equal(t, state.PhaseFailed, got.Phase)
			require.NotNil(t, got.Err)
			assert.Equal(t, tt.wantKind, got.Err.Kind)
			assert.Equal(t, tt.wantMsg, got.Err.Message)
			assert.Equal(t, tt.wantProbes, prober.calls)
			assert.EqualValues(t, 1, f.analyzeHits.Load(), "no retries")
			assert.False(t, c.Pending())
		})
	}
}

func TestController_Unreachable(t *testing.T) {
	client, err := scoring.NewClient(deadURL())
	require.NoError(t, err)
	c := NewController(client, &state.Store{}, nil, nil)

	got, err := c.Submit(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, got.Err)
	assert.Equal(t, state.ErrUnreachable, got.Err.Kind)
}

func TestController_SecondSubmitWhilePendingIsBusy(t *testing.T) {
	f := newFakeService(t)
	release := make(chan struct{})
	f.setAnalyze(func(w http.ResponseWriter, r *http.Request) {
		<-release
		jsonHandler(http.StatusOK, `{"recommendation":"HOLD","confidence":61}`)(w, r)
	})
	c, store, _ := newTestController(t, f)

	done := make(chan state.Analysis, 1)
	go func() {
		a, _ := c.Submit(context.Background(), "MSFT")
		done <- a
	}()
	require.Eventually(t, c.Pending, time.Second, time.Millisecond)
	assert.Equal(t, state.PhasePending, store.Snapshot().Analysis.Phase)

	_, err := c.Submit(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	first := <-done
	assert.Equal(t, state.PhaseSucceeded, first.Phase)
	assert.Equal(t, "MSFT", first.Query)
	assert.EqualValues(t, 1, f.analyzeHits.Load())
}
