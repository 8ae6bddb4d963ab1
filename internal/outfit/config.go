// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package outfit

import (
	"fmt"
	"time"
)

// Config contains all configuration for the assembly engine.
type Config struct {
	// Search contains beam-search parameters.
	Search SearchConfig `json:"search" koanf:"search"`

	// Retrieval contains candidate shortlist parameters.
	Retrieval RetrievalConfig `json:"retrieval" koanf:"retrieval"`

	// Budgets contains per-operation latency budgets. They derive request
	// deadlines when the caller supplies none.
	Budgets BudgetConfig `json:"budgets" koanf:"budgets"`

	// Cache contains shortlist cache parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`

	// Breaker contains circuit-breaker parameters for the candidate index.
	Breaker BreakerConfig `json:"breaker" koanf:"breaker"`

	// MaxInflight bounds concurrent requests; excess is rejected with BUSY.
	MaxInflight int `json:"max_inflight" koanf:"max_inflight"`

	// Seed reserves a determinism seed for future stochastic extensions.
	// The deterministic paths ignore it.
	Seed int64 `json:"seed" koanf:"seed"`
}

// SearchConfig contains beam-search parameters.
type SearchConfig struct {
	// BeamWidth is the number of partials kept per slot step.
	BeamWidth int `json:"beam_width" koanf:"beam_width"`

	// ParallelScoring enables concurrent scoring of beam children.
	// Results are merged by composite key, so ordering is unaffected.
	ParallelScoring bool `json:"parallel_scoring" koanf:"parallel_scoring"`

	// MaxAlternatives bounds the replace planner's returned list.
	MaxAlternatives int `json:"max_alternatives" koanf:"max_alternatives"`
}

// RetrievalConfig contains candidate shortlist parameters.
type RetrievalConfig struct {
	// AnchorK is the shortlist size for the anchor slot.
	AnchorK int `json:"anchor_k" koanf:"anchor_k"`

	// SlotK is the shortlist size for non-anchor slots.
	SlotK int `json:"slot_k" koanf:"slot_k"`
}

// BudgetConfig contains per-operation latency budgets.
type BudgetConfig struct {
	// Generate is the whole-bundle generation budget (P95 target 400ms).
	Generate time.Duration `json:"generate" koanf:"generate"`

	// Replace is the single-slot replacement budget (P95 target 600ms).
	Replace time.Duration `json:"replace" koanf:"replace"`
}

// CacheConfig contains shortlist cache parameters.
type CacheConfig struct {
	// Enabled toggles the process-wide shortlist cache.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// MaxEntries bounds the LRU.
	MaxEntries int `json:"max_entries" koanf:"max_entries"`

	// TTL is the entry time-to-live.
	TTL time.Duration `json:"ttl" koanf:"ttl"`
}

// BreakerConfig contains circuit-breaker parameters for index calls.
type BreakerConfig struct {
	// Enabled toggles the breaker. When disabled, index errors pass
	// straight through as INDEX_ERROR.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// FailureThreshold is the consecutive-failure count that opens the
	// breaker.
	FailureThreshold uint32 `json:"failure_threshold" koanf:"failure_threshold"`

	// OpenTimeout is how long the breaker stays open before half-open.
	OpenTimeout time.Duration `json:"open_timeout" koanf:"open_timeout"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			BeamWidth:       8,
			ParallelScoring: true,
			MaxAlternatives: 10,
		},
		Retrieval: RetrievalConfig{
			AnchorK: 40,
			SlotK:   20,
		},
		Budgets: BudgetConfig{
			Generate: 400 * time.Millisecond,
			Replace:  600 * time.Millisecond,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 4096,
			TTL:        5 * time.Minute,
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
		MaxInflight: 256,
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Search.BeamWidth < 1 {
		return fmt.Errorf("search.beam_width must be >= 1, got %d", c.Search.BeamWidth)
	}
	if c.Search.MaxAlternatives < 1 {
		return fmt.Errorf("search.max_alternatives must be >= 1, got %d", c.Search.MaxAlternatives)
	}
	if c.Retrieval.AnchorK < 1 || c.Retrieval.SlotK < 1 {
		return fmt.Errorf("retrieval shortlist sizes must be >= 1, got anchor=%d slot=%d",
			c.Retrieval.AnchorK, c.Retrieval.SlotK)
	}
	if c.Budgets.Generate <= 0 || c.Budgets.Replace <= 0 {
		return fmt.Errorf("latency budgets must be positive")
	}
	if c.Cache.Enabled && c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be >= 1 when cache enabled")
	}
	if c.MaxInflight < 1 {
		return fmt.Errorf("max_inflight must be >= 1, got %d", c.MaxInflight)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
