package session

import (
	"context"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/five82/stockpulse/internal/logging"
	"github.com/five82/stockpulse/internal/scoring"
	"github.com/five82/stockpulse/internal/state"
)

// RateLimitUnavailable is the message recorded when the rate-limit probe
// fails. The tracker then reports "not limited" and lets the server decide.
const RateLimitUnavailable = "rate limit check unavailable"

const defaultTick = time.Second

// Tracker owns the rate-limit status and the cooldown countdown.
type Tracker struct {
	client scoring.Service
	store  *state.Store
	logger *log.Logger
	tick   time.Duration

	// life bounds automatic re-probes; Close cancels it.
	life   context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	closed      bool
	gen         uint64
	stopCurrent context.CancelFunc
	wg          sync.WaitGroup
}

// NewTracker builds a Tracker. tick is the countdown granularity; zero means
// one second.
func NewTracker(client scoring.Service, store *state.Store, logger *log.Logger, tick time.Duration) *Tracker {
	if tick <= 0 {
		tick = defaultTick
	}
	life, cancel := context.WithCancel(context.Background())
	return &Tracker{
		client: client,
		store:  store,
		logger: logging.OrDiscard(logger),
		tick:   tick,
		life:   life,
		cancel: cancel,
	}
}

// Probe fetches /rate-limit, replaces the stored status and starts, restarts
// or cancels the countdown to match. Results apply in arrival order.
func (t *Tracker) Probe(ctx context.Context) state.RateLimitStatus {
	resp, err := t.client.RateLimit(ctx)

	status := state.RateLimitStatus{CheckedAt: time.Now()}
	if err != nil {
		t.logger.Warn().Err(err).Msg("rate limit probe failed")
		status.Message = RateLimitUnavailable
	} else {
		status.IsLimited = resp.IsLimited
		status.Message = resp.Message
		if resp.IsLimited {
			status.SecondsRemaining = resp.SecondsRemaining
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return status
	}

	t.store.SetRateLimit(status)
	if remaining := status.Remaining(); remaining > 0 {
		t.logger.Info().Int("seconds", remaining).Msg("rate limited, starting countdown")
		t.startCountdownLocked(remaining)
	} else {
		t.stopCountdownLocked()
		t.store.SetCountdown(0)
	}
	return status
}

// Close stops the countdown and waits for its goroutine to exit.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.stopCountdownLocked()
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}

func (t *Tracker) startCountdownLocked(seconds int) {
	t.stopCountdownLocked()
	t.gen++
	ctx, stop := context.WithCancel(t.life)
	t.stopCurrent = stop
	t.store.SetCountdown(seconds)

	t.wg.Add(1)
	go t.runCountdown(ctx, t.gen, seconds)
}

func (t *Tracker) stopCountdownLocked() {
	if t.stopCurrent != nil {
		t.stopCurrent()
		t.stopCurrent = nil
	}
}

func (t *Tracker) runCountdown(ctx context.Context, gen uint64, left int) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		t.mu.Lock()
		if gen != t.gen || ctx.Err() != nil {
			t.mu.Unlock()
			return
		}
		if left-1 >= 1 {
			left--
			t.store.SetCountdown(left)
			t.mu.Unlock()
			continue
		}

		// Expired: clear the visible timer now, then re-probe exactly once.
		t.store.SetCountdown(0)
		t.stopCountdownLocked()
		t.mu.Unlock()

		t.logger.Debug().Msg("countdown expired, refreshing rate limit")
		t.Probe(t.life)
		return
	}
}
