package state

import (
	"sync"
	"time"
)

// Snapshot represents the latest session data available to the UI.
type Snapshot struct {
	Health       HealthStatus
	HasHealth    bool
	RateLimit    RateLimitStatus
	HasRateLimit bool
	Countdown    CountdownState
	Analysis     Analysis
	LastUpdated  time.Time
	Version      uint64
}

// RateLimited reports whether the last rate-limit probe said the service is
// limiting. The countdown is display only and does not reopen the gate.
func (s Snapshot) RateLimited() bool {
	return s.HasRateLimit && s.RateLimit.IsLimited
}

// CanSubmit is the admission gate: the backend must be healthy, the rate
// limit clear and no analysis pending.
func (s Snapshot) CanSubmit() (bool, BlockReason) {
	switch {
	case !s.HasHealth:
		return false, BlockConnecting
	case !s.Health.Healthy():
		return false, BlockOffline
	case s.RateLimited():
		return false, BlockRateLimited
	case s.Analysis.Phase == PhasePending:
		return false, BlockPending
	default:
		return true, BlockNone
	}
}

// Store coordinates concurrent updates to the snapshot. Each field has a
// single writer; any number of readers take copies through Snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	subs     map[int]chan Event
	nextSub  int
}

// SetHealth replaces the health snapshot wholesale.
func (s *Store) SetHealth(h HealthStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Health = h
	s.snapshot.HasHealth = true
	s.touchLocked(EventHealth)
}

// SetRateLimit replaces the rate-limit snapshot wholesale.
func (s *Store) SetRateLimit(r RateLimitStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.RateLimit = r
	s.snapshot.HasRateLimit = true
	s.touchLocked(EventRateLimit)
}

// SetCountdown records the seconds left on the cooldown timer.
func (s *Store) SetCountdown(secondsLeft int) {
	if secondsLeft < 0 {
		secondsLeft = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Countdown.SecondsLeft == secondsLeft {
		return
	}
	s.snapshot.Countdown.SecondsLeft = secondsLeft
	s.touchLocked(EventCountdown)
}

// SetAnalysis replaces the controller state.
func (s *Store) SetAnalysis(a Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Analysis = a
	s.touchLocked(EventAnalysis)
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Analysis = s.snapshot.Analysis.clone()
	return snap
}

// Subscribe returns a channel that receives an Event after every change and
// a function that cancels the subscription. Slow subscribers miss events
// rather than block writers; they should re-read Snapshot on each receive.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]chan Event)
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 16)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Store) touchLocked(kind EventKind) {
	s.snapshot.Version++
	s.snapshot.LastUpdated = time.Now()
	ev := Event{Kind: kind, Version: s.snapshot.Version}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
