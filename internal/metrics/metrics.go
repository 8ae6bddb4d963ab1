// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the assembly engine:
// - Request throughput and latency per operation
// - Beam search expansion and prune behavior
// - Shortlist cache efficiency
// - Candidate index health

var (
	// Request Metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ensemble_requests_total",
			Help: "Total number of engine requests by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome is "ok" or an error kind
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ensemble_request_duration_seconds",
			Help:    "Engine request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.6, 1, 2.5}, // aligned with the 400ms/600ms budgets
		},
		[]string{"operation"},
	)

	InflightRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ensemble_inflight_requests",
			Help: "Current number of requests being served",
		},
	)

	// Beam Search Metrics
	BeamExpansions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ensemble_beam_expansions_total",
			Help: "Total number of beam search candidate expansions",
		},
	)

	BeamPrunes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ensemble_beam_prunes_total",
			Help: "Total number of beam expansions pruned by hard constraints",
		},
		[]string{"code"}, // violation code, e.g. LAYER_ORDER
	)

	// Shortlist Cache Metrics
	ShortlistCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ensemble_shortlist_cache_hits_total",
			Help: "Total number of shortlist cache hits",
		},
	)

	ShortlistCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ensemble_shortlist_cache_misses_total",
			Help: "Total number of shortlist cache misses",
		},
	)

	// Candidate Index Metrics
	IndexSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ensemble_index_search_duration_seconds",
			Help:    "Candidate index search duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"owner"}, // "wardrobe" or "catalog"
	)

	IndexErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ensemble_index_errors_total",
			Help: "Total number of candidate index failures",
		},
	)

	// Invalidation Metrics
	InvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ensemble_invalidations_total",
			Help: "Total number of shortlist cache invalidations by scope",
		},
		[]string{"scope"}, // "user" or "all"
	)
)

// ObserveIndexSearch records one index search with its duration.
func ObserveIndexSearch(owner string, start time.Time, err error) {
	IndexSearchDuration.WithLabelValues(owner).Observe(time.Since(start).Seconds())
	if err != nil {
		IndexErrors.Inc()
	}
}
