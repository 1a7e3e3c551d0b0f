// Package sweep runs the privacy window sweeper: a background loop that
// publishes found items once their match window has lapsed.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/foundly/foundly-server/internal/metrics"
	"github.com/foundly/foundly-server/internal/store"
)

// Config controls sweep cadence.
type Config struct {
	Interval time.Duration
}

// Sweeper flips is_public on found items whose match window has ended. The
// flip touches only the visibility flag, so it is safe to run concurrently
// with match and claim transitions on the same items.
type Sweeper struct {
	store store.Store
	cfg   Config
	log   zerolog.Logger
	now   func() time.Time
}

func New(s store.Store, cfg Config, log zerolog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Sweeper{store: s, cfg: cfg, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Run sweeps immediately, then on every tick until ctx is canceled. Items
// reported before a restart are never stuck private longer than one interval.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Info().Dur("interval", s.cfg.Interval).Msg("privacy window sweeper starting")
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("privacy window sweeper stopping")
			return ctx.Err()
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	n, err := s.store.FoundItems().PublishExpired(ctx, s.now())
	if err != nil {
		metrics.SweepRuns.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Msg("privacy window sweep failed")
		return
	}
	metrics.SweepRuns.WithLabelValues("ok").Inc()
	if n > 0 {
		metrics.ItemsPublished.Add(float64(n))
		s.log.Info().Int64("published", n).Msg("found items made public")
	}
}
