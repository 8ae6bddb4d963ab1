// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

/*
Package metrics provides Prometheus metrics collection for the assembly engine.

This package implements application instrumentation using the Prometheus
client library, exposing metrics for monitoring request performance, beam
search behavior, cache efficiency, and candidate index health.

# Overview

The package provides metrics for:
  - Engine request latency and throughput per operation
  - Beam search expansion and prune counts
  - Shortlist cache hit/miss rates
  - Candidate index search latency and failures
  - Cache invalidation events

# Available Metrics

Request Metrics:
  - ensemble_requests_total: Total engine requests (counter)
    Labels: operation (generate, replace, explain), outcome (ok or error kind)
  - ensemble_request_duration_seconds: Request latency (histogram)
    Labels: operation
    Buckets: .01, .025, .05, .1, .2, .4, .6, 1, 2.5
  - ensemble_inflight_requests: Requests currently being served (gauge)

Beam Search Metrics:
  - ensemble_beam_expansions_total: Candidate expansions (counter)
  - ensemble_beam_prunes_total: Hard-constraint prunes (counter)
    Labels: code (violation code)

Shortlist Cache Metrics:
  - ensemble_shortlist_cache_hits_total: Cache hits (counter)
  - ensemble_shortlist_cache_misses_total: Cache misses (counter)

Candidate Index Metrics:
  - ensemble_index_search_duration_seconds: Index search latency (histogram)
    Labels: owner (wardrobe, catalog)
  - ensemble_index_errors_total: Index failures (counter)

Invalidation Metrics:
  - ensemble_invalidations_total: Cache invalidations (counter)
    Labels: scope (user, all)

# Usage Example

	import "github.com/wardrobelabs/ensemble/internal/metrics"

	metrics.RequestsTotal.WithLabelValues("generate", "ok").Inc()
	metrics.RequestDuration.WithLabelValues("generate").Observe(elapsed.Seconds())

Metrics register on the default Prometheus registry via promauto; the host
process exposes them however it serves /metrics.

# Thread Safety

All Prometheus collectors are safe for concurrent use.
*/
package metrics
