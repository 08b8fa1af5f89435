package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/five82/stockpulse/internal/logging"
	"github.com/five82/stockpulse/internal/scoring"
	"github.com/five82/stockpulse/internal/state"
)

// ErrSubmissionBlocked is returned when the admission gate is closed.
var ErrSubmissionBlocked = errors.New("submission blocked")

// Options configure a Session.
type Options struct {
	Logger *log.Logger
	// CountdownTick is the countdown granularity. Zero means one second.
	CountdownTick time.Duration
}

// Session owns the store and the three components that write to it. Its
// lifetime runs from New to Close.
type Session struct {
	store      *state.Store
	monitor    *Monitor
	tracker    *Tracker
	controller *Controller
	logger     *log.Logger
}

// New wires a Session around client.
func New(client scoring.Service, opts Options) *Session {
	logger := logging.OrDiscard(opts.Logger)
	store := &state.Store{}
	tracker := NewTracker(client, store, logger, opts.CountdownTick)
	return &Session{
		store:      store,
		monitor:    NewMonitor(client, store, logger),
		tracker:    tracker,
		controller: NewController(client, store, tracker, logger),
		logger:     logger,
	}
}

// Start runs the health and rate-limit probes concurrently and returns once
// both have landed. Neither probe fails; outcomes are recorded in the store.
func (s *Session) Start(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.monitor.Probe(ctx)
	}()
	go func() {
		defer wg.Done()
		s.tracker.Probe(ctx)
	}()
	wg.Wait()

	snap := s.store.Snapshot()
	s.logger.Info().
		Str("health", string(snap.Health.State)).
		Bool("rate_limited", snap.RateLimited()).
		Msg("session started")
}

// CanSubmit reports whether a submission would be admitted.
func (s *Session) CanSubmit() (bool, state.BlockReason) {
	return s.store.Snapshot().CanSubmit()
}

// Submit runs one analysis if the admission gate is open. A closed gate
// returns ErrSubmissionBlocked without any network I/O.
func (s *Session) Submit(ctx context.Context, raw string) (state.Analysis, error) {
	if ok, reason := s.CanSubmit(); !ok {
		return s.store.Snapshot().Analysis, fmt.Errorf("%w: %s", ErrSubmissionBlocked, reason)
	}
	return s.controller.Submit(ctx, raw)
}

// RefreshRateLimit re-probes the rate limit on user request.
func (s *Session) RefreshRateLimit(ctx context.Context) state.RateLimitStatus {
	return s.tracker.Probe(ctx)
}

// Reconnect re-runs the health probe.
func (s *Session) Reconnect(ctx context.Context) state.HealthStatus {
	return s.monitor.Probe(ctx)
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() state.Snapshot {
	return s.store.Snapshot()
}

// Subscribe forwards to the store's change notifications.
func (s *Session) Subscribe() (<-chan state.Event, func()) {
	return s.store.Subscribe()
}

// Close stops the countdown. An in-flight analysis is left to finish.
func (s *Session) Close() {
	s.tracker.Close()
	s.logger.Info().Msg("session closed")
}
