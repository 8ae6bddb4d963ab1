// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRequestMetrics tests request metric recording across outcomes.
func TestRequestMetrics(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		outcome   string
		duration  time.Duration
	}{
		{
			name:      "successful generate",
			operation: "generate",
			outcome:   "ok",
			duration:  120 * time.Millisecond,
		},
		{
			name:      "successful replace",
			operation: "replace",
			outcome:   "ok",
			duration:  80 * time.Millisecond,
		},
		{
			name:      "generate hit deadline",
			operation: "generate",
			outcome:   "DEADLINE",
			duration:  400 * time.Millisecond,
		},
		{
			name:      "replace with no bundle",
			operation: "replace",
			outcome:   "NO_BUNDLE",
			duration:  30 * time.Millisecond,
		},
		{
			name:      "rejected at backpressure bound",
			operation: "generate",
			outcome:   "BUSY",
			duration:  time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Should not panic
			RequestsTotal.WithLabelValues(tt.operation, tt.outcome).Inc()
			RequestDuration.WithLabelValues(tt.operation).Observe(tt.duration.Seconds())
		})
	}
}

// TestInflightRequests tests the inflight gauge lifecycle.
func TestInflightRequests(t *testing.T) {
	// Simulate concurrent requests starting and finishing
	for i := 0; i < 10; i++ {
		InflightRequests.Inc()
	}
	for i := 0; i < 10; i++ {
		InflightRequests.Dec()
	}
	InflightRequests.Set(0)
}

// TestBeamMetrics tests beam search counters.
func TestBeamMetrics(t *testing.T) {
	BeamExpansions.Add(128)

	codes := []string{"LAYER_ORDER", "ONE_PIECE_EXCLUSIVE", "FORMALITY_RANGE", "TEMP_UNSAFE", "CATALOG_CAP", "STRICT_COORD_INCOMPLETE"}
	for _, code := range codes {
		t.Run("prune_"+code, func(t *testing.T) {
			BeamPrunes.WithLabelValues(code).Inc()
		})
	}
}

// TestShortlistCacheMetrics tests cache counters.
func TestShortlistCacheMetrics(t *testing.T) {
	ShortlistCacheHits.Inc()
	ShortlistCacheHits.Inc()
	ShortlistCacheMisses.Inc()
}

// TestObserveIndexSearch tests index search recording.
func TestObserveIndexSearch(t *testing.T) {
	tests := []struct {
		name  string
		owner string
		err   error
	}{
		{"wardrobe success", "wardrobe", nil},
		{"catalog success", "catalog", nil},
		{"wardrobe failure", "wardrobe", errors.New("index unavailable")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ObserveIndexSearch(tt.owner, time.Now().Add(-10*time.Millisecond), tt.err)
		})
	}
}

// TestInvalidationMetrics tests invalidation counters by scope.
func TestInvalidationMetrics(t *testing.T) {
	InvalidationsTotal.WithLabelValues("user").Inc()
	InvalidationsTotal.WithLabelValues("all").Inc()
}

// TestConcurrentMetricRecording tests thread safety of metric recording.
func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 100
	operationsPerGoroutine := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RequestsTotal.WithLabelValues("generate", "ok").Inc()
				RequestDuration.WithLabelValues("generate").Observe(float64(j) / 1000)
				BeamExpansions.Inc()
				InflightRequests.Inc()
				InflightRequests.Dec()
			}
		}(i)
	}

	wg.Wait()
}

// TestMetricsRegistration verifies all metrics are properly registered.
func TestMetricsRegistration(t *testing.T) {
	metrics := []prometheus.Collector{
		RequestsTotal,
		RequestDuration,
		InflightRequests,
		BeamExpansions,
		BeamPrunes,
		ShortlistCacheHits,
		ShortlistCacheMisses,
		IndexSearchDuration,
		IndexErrors,
		InvalidationsTotal,
	}

	for _, m := range metrics {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil.
func TestMetricGathering(t *testing.T) {
	RequestsTotal.WithLabelValues("generate", "ok").Inc()
	RequestDuration.WithLabelValues("generate").Observe(0.1)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRequestRecording(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RequestsTotal.WithLabelValues("generate", "ok").Inc()
		RequestDuration.WithLabelValues("generate").Observe(0.1)
	}
}

func BenchmarkBeamPrunes(b *testing.B) {
	for i := 0; i < b.N; i++ {
		BeamPrunes.WithLabelValues("LAYER_ORDER").Inc()
	}
}
