package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/five82/stockpulse/internal/logging"
	"github.com/five82/stockpulse/internal/scoring"
	"github.com/five82/stockpulse/internal/state"
)

// Monitor records backend liveness. It probes once per call and never
// retries; an unreachable backend is a normal outcome, not an error.
type Monitor struct {
	client scoring.Service
	store  *state.Store
	logger *log.Logger
}

// NewMonitor builds a Monitor publishing into store.
func NewMonitor(client scoring.Service, store *state.Store, logger *log.Logger) *Monitor {
	return &Monitor{client: client, store: store, logger: logging.OrDiscard(logger)}
}

// Probe checks /health and replaces the stored HealthStatus.
func (m *Monitor) Probe(ctx context.Context) state.HealthStatus {
	status := state.HealthStatus{CheckedAt: time.Now()}

	resp, err := m.client.Health(ctx)
	switch {
	case err != nil:
		status.State = state.Offline
		status.Detail = describeFailure(err)
		m.logger.Warn().Err(err).Msg("health probe failed")
	case !resp.Healthy():
		status.State = state.Offline
		status.Detail = fmt.Sprintf("service reported status %q", resp.Status)
		status.APIKeyConfigured = resp.APIKeyConfigured
		m.logger.Warn().Str("status", resp.Status).Msg("service not healthy")
	default:
		status.State = state.Healthy
		status.APIKeyConfigured = resp.APIKeyConfigured
		m.logger.Info().Msg("service healthy")
	}

	m.store.SetHealth(status)
	return status
}

func describeFailure(err error) string {
	var transportErr *scoring.TransportError
	if errors.As(err, &transportErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return "service did not respond in time"
		}
		return "service unreachable: " + transportErr.Err.Error()
	}
	return err.Error()
}
