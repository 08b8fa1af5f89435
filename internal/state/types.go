package state

import (
	"time"

	"github.com/five82/stockpulse/internal/recommend"
	"github.com/five82/stockpulse/internal/scoring"
)

// HealthState is the backend liveness classification.
type HealthState string

const (
	Healthy HealthState = "healthy"
	Offline HealthState = "offline"
)

// HealthStatus is the result of the startup health probe.
type HealthStatus struct {
	State            HealthState
	Detail           string
	APIKeyConfigured *bool
	CheckedAt        time.Time
}

// Healthy reports whether the backend accepted the probe.
func (h HealthStatus) Healthy() bool {
	return h.State == Healthy
}

// RateLimitStatus mirrors the last rate-limit probe. SecondsRemaining only
// means something when IsLimited is true.
type RateLimitStatus struct {
	IsLimited        bool
	Message          string
	SecondsRemaining *int
	CheckedAt        time.Time
}

// Remaining returns the cooldown in seconds, or zero when not limited.
func (r RateLimitStatus) Remaining() int {
	if !r.IsLimited || r.SecondsRemaining == nil || *r.SecondsRemaining < 0 {
		return 0
	}
	return *r.SecondsRemaining
}

// CountdownState is the visible cooldown timer.
type CountdownState struct {
	SecondsLeft int
}

// Active reports whether the timer is still running.
func (c CountdownState) Active() bool {
	return c.SecondsLeft > 0
}

// Phase is the analysis controller lifecycle position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Analysis is the controller state: exactly one of Idle, Pending,
// Succeeded(Result, Verdict) or Failed(Err). Build it with the constructors
// below so the union stays consistent.
type Analysis struct {
	Phase      Phase
	Query      string
	Result     *scoring.AnalysisResult
	Verdict    *recommend.Verdict
	Err        *ErrorInfo
	StartedAt  time.Time
	FinishedAt time.Time
}

// IdleAnalysis is the initial controller state.
func IdleAnalysis() Analysis {
	return Analysis{Phase: PhaseIdle}
}

// PendingAnalysis marks a request in flight.
func PendingAnalysis(query string, started time.Time) Analysis {
	return Analysis{Phase: PhasePending, Query: query, StartedAt: started}
}

// SucceededAnalysis holds a received result and its classification.
func SucceededAnalysis(query string, started time.Time, result *scoring.AnalysisResult, verdict recommend.Verdict) Analysis {
	return Analysis{
		Phase:      PhaseSucceeded,
		Query:      query,
		Result:     result,
		Verdict:    &verdict,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
}

// FailedAnalysis holds a classified failure.
func FailedAnalysis(query string, started time.Time, info ErrorInfo) Analysis {
	return Analysis{
		Phase:      PhaseFailed,
		Query:      query,
		Err:        &info,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
}

func (a Analysis) clone() Analysis {
	if a.Verdict != nil {
		v := *a.Verdict
		v.Guidance = append([]string(nil), a.Verdict.Guidance...)
		a.Verdict = &v
	}
	if a.Err != nil {
		e := *a.Err
		a.Err = &e
	}
	return a
}

// ErrorKind is the failure taxonomy surfaced to the user.
type ErrorKind string

const (
	ErrEmptyInput            ErrorKind = "EmptyInput"
	ErrUnreachable           ErrorKind = "Unreachable"
	ErrRateLimited           ErrorKind = "RateLimited"
	ErrServerError           ErrorKind = "ServerError"
	ErrMisconfiguredUpstream ErrorKind = "MisconfiguredUpstream"
)

// ErrorInfo describes a failed submission.
type ErrorInfo struct {
	Kind    ErrorKind
	Message string
	Detail  string
}

// Advice returns the advisory line shown for the failure kind.
func (e ErrorInfo) Advice() string {
	switch e.Kind {
	case ErrEmptyInput:
		return "Enter a stock name or ticker symbol."
	case ErrUnreachable:
		return "The analysis service could not be reached. Check your connection and try again."
	case ErrRateLimited:
		return "Request limit reached. Wait for the cooldown to finish before analyzing again."
	case ErrMisconfiguredUpstream:
		return "The analysis service is missing its API key. Contact the service operator."
	default:
		return "The analysis service returned an error. Try again later."
	}
}

// BlockReason explains why submission is disabled.
type BlockReason string

const (
	BlockNone        BlockReason = ""
	BlockConnecting  BlockReason = "checking service"
	BlockOffline     BlockReason = "service offline"
	BlockRateLimited BlockReason = "rate limited"
	BlockPending     BlockReason = "analysis in progress"
)

// EventKind names the part of the snapshot that changed.
type EventKind int

const (
	EventHealth EventKind = iota
	EventRateLimit
	EventCountdown
	EventAnalysis
)

// Event is published after every store mutation.
type Event struct {
	Kind    EventKind
	Version uint64
}
