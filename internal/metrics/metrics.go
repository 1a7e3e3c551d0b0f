// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchesCreated counts recorded matches by source (automatic, manual-claim).
	MatchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foundly_matches_created_total",
		Help: "Matches recorded, labeled by source.",
	}, []string{"source"})

	// ClaimsVerified counts quiz outcomes.
	ClaimsVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foundly_claims_verified_total",
		Help: "Claim verification attempts, labeled by outcome.",
	}, []string{"outcome"})

	// ItemsPublished counts found items flipped public by the privacy sweep.
	ItemsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foundly_items_published_total",
		Help: "Found items made public after their match window lapsed.",
	})

	// SweepRuns counts sweep cycles by result.
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foundly_sweep_runs_total",
		Help: "Privacy window sweep cycles, labeled by result.",
	}, []string{"result"})
)
