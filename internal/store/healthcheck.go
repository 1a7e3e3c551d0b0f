package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/foundly/foundly-server/internal/health"
)

// HealthChecker periodically pings the backing database and caches the result.
// Both store drivers implement health.HealthPinger on their Store.
type HealthChecker struct {
	pinger  health.HealthPinger
	healthy atomic.Int32
	log     zerolog.Logger
}

func NewHealthChecker(log zerolog.Logger, s Store) *HealthChecker {
	h := &HealthChecker{log: log}
	if p, ok := s.(health.HealthPinger); ok {
		h.pinger = p
	}
	return h
}

func (h *HealthChecker) Name() string { return "store" }

func (h *HealthChecker) IsHealthy() bool { return h.healthy.Load() == 1 }

// Start blocks, pinging at the given interval until ctx is canceled.
func (h *HealthChecker) Start(ctx context.Context, interval time.Duration) {
	if h.pinger == nil {
		h.healthy.Store(1)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := h.pinger.HealthPing(pingCtx); err != nil {
			if h.healthy.Swap(0) == 1 {
				h.log.Error().Err(err).Msg("store health: DOWN")
			}
			return
		}
		if h.healthy.Swap(1) == 0 {
			h.log.Info().Msg("store health: UP")
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
