package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/stockpulse/internal/state"
)

func newTestSession(t *testing.T, f *fakeService) *Session {
	t.Helper()
	s := New(f.client(t), Options{CountdownTick: testTick})
	t.Cleanup(s.Close)
	return s
}

func TestSession_StartProbesBothAndOpensGate(t *testing.T) {
	f := newFakeService(t)
	s := newTestSession(t, f)

	s.Start(context.Background())

	assert.EqualValues(t, 1, f.healthHits.Load())
	assert.EqualValues(t, 1, f.rateLimitHits.Load())
	ok, reason := s.CanSubmit()
	assert.True(t, ok)
	assert.Equal(t, state.BlockNone, reason)
}

func TestSession_OfflineHealthAloneDisablesSubmission(t *testing.T) {
	f := newFakeService(t)
	f.setHealth(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	s := newTestSession(t, f)
	s.Start(context.Background())

	snap := s.Snapshot()
	assert.Equal(t, state.Offline, snap.Health.State)
	assert.False(t, snap.RateLimited())

	ok, reason := s.CanSubmit()
	assert.False(t, ok)
	assert.Equal(t, state.BlockOffline, reason)

	_, err := s.Submit(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrSubmissionBlocked)
	assert.EqualValues(t, 0, f.analyzeHits.Load())
}

func TestSession_RateLimitedBlocksSubmission(t *testing.T) {
	f := newFakeService(t)
	f.setRateLimit(jsonHandler(http.StatusOK, `{"is_limited":true,"seconds_remaining":60}`))
	s := New(f.client(t), Options{}) // one-second ticks; the countdown never expires here
	t.Cleanup(s.Close)
	s.Start(context.Background())

	_, err := s.Submit(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrSubmissionBlocked)
	assert.Contains(t, err.Error(), string(state.BlockRateLimited))
	assert.EqualValues(t, 0, f.analyzeHits.Load())
	assert.Equal(t, 60, s.Snapshot().Countdown.SecondsLeft)
}

func TestSession_WhitespaceSubmitYieldsEmptyInput(t *testing.T) {
	f := newFakeService(t)
	s := newTestSession(t, f)
	s.Start(context.Background())

	got, err := s.Submit(context.Background(), "   ")
	require.NoError(t, err)
	require.NotNil(t, got.Err)
	assert.Equal(t, state.ErrEmptyInput, got.Err.Kind)
	assert.EqualValues(t, 0, f.analyzeHits.Load())
}

func TestSession_PendingGateRejectsSecondSubmit(t *testing.T) {
	f := newFakeService(t)
	release := make(chan struct{})
	f.setAnalyze(func(w http.ResponseWriter, r *http.Request) {
		<-release
		jsonHandler(http.StatusOK, `{"recommendation":"BUY","confidence":90}`)(w, r)
	})
	s := newTestSession(t, f)
	s.Start(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Submit(context.Background(), "NVDA")
	}()
	require.Eventually(t, func() bool {
		return s.Snapshot().Analysis.Phase == state.PhasePending
	}, time.Second, time.Millisecond)

	_, err := s.Submit(context.Background(), "AMD")
	assert.ErrorIs(t, err, ErrSubmissionBlocked)
	assert.Contains(t, err.Error(), string(state.BlockPending))

	close(release)
	<-done
	assert.EqualValues(t, 1, f.analyzeHits.Load())
	assert.Equal(t, state.PhaseSucceeded, s.Snapshot().Analysis.Phase)
}

func TestSession_429TriggersExactlyOneRateLimitProbe(t *testing.T) {
	f := newFakeService(t)
	f.setRateLimit(
		jsonHandler(http.StatusOK, `{"is_limited":false}`),
		jsonHandler(http.StatusOK, `{"is_limited":true,"message":"daily quota used"}`),
	)
	f.setAnalyze(jsonHandler(http.StatusTooManyRequests, `{"detail":"Too many requests"}`))
	s := newTestSession(t, f)
	s.Start(context.Background())
	require.EqualValues(t, 1, f.rateLimitHits.Load())

	got, err := s.Submit(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, got.Err)
	assert.Equal(t, state.ErrRateLimited, got.Err.Kind)
	assert.EqualValues(t, 2, f.rateLimitHits.Load())

	snap := s.Snapshot()
	assert.True(t, snap.RateLimited())
	assert.Equal(t, "daily quota used", snap.RateLimit.Message)
	ok, reason := snap.CanSubmit()
	assert.False(t, ok)
	assert.Equal(t, state.BlockRateLimited, reason)

	time.Sleep(5 * testTick)
	assert.EqualValues(t, 2, f.rateLimitHits.Load())
}

func TestSession_RefreshAndReconnect(t *testing.T) {
	f := newFakeService(t)
	f.setHealth(jsonHandler(http.StatusServiceUnavailable, `{}`))
	s := newTestSession(t, f)
	s.Start(context.Background())
	require.Equal(t, state.Offline, s.Snapshot().Health.State)

	f.setHealth(jsonHandler(http.StatusOK, `{"status":"healthy"}`))
	assert.Equal(t, state.Healthy, s.Reconnect(context.Background()).State)

	assert.False(t, s.RefreshRateLimit(context.Background()).IsLimited)
	assert.EqualValues(t, 2, f.rateLimitHits.Load())
	ok, _ := s.CanSubmit()
	assert.True(t, ok)
}

func TestSession_SubscribeSeesTransitions(t *testing.T) {
	f := newFakeService(t)
	s := newTestSession(t, f)
	events, cancel := s.Subscribe()
	defer cancel()

	s.Start(context.Background())
	_, err := s.Submit(context.Background(), "AAPL")
	require.NoError(t, err)

	kinds := map[state.EventKind]int{}
	for len(events) > 0 {
		ev := <-events
		kinds[ev.Kind]++
	}
	assert.Equal(t, 1, kinds[state.EventHealth])
	assert.Equal(t, 1, kinds[state.EventRateLimit])
	assert.Equal(t, 2, kinds[state.EventAnalysis], "pending then succeeded")
}
