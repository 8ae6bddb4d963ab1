// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

/*
Package cache provides a thread-safe LRU cache with TTL support.

The engine uses it for candidate shortlists: retrieval results for a
(user, context, slot) tuple are cached so repeated requests within the
TTL skip the index round trip. Invalidation is handled by the caller
through generation counters embedded in the key, so stale entries are
never served and simply age out of the LRU.

# Overview

The cache provides:
  - Thread-safe concurrent access (sync.RWMutex for reads, sync.Mutex writes)
  - O(1) Get, Add, Remove, and eviction via doubly-linked list + hashmap
  - Time-to-live (TTL) expiration with lazy checking on access
  - Hit/miss statistics for observability

# Usage Example

	import "github.com/wardrobelabs/ensemble/internal/cache"

	c := cache.NewLRU(4096, 5*time.Minute)

	c.Add("user-1|g0|u0|rs-2026-08|top|20|false", shortlist)

	if value, ok := c.Get(key); ok {
	    items := value.([]*outfit.Item)
	    // Use cached shortlist
	}

# Thread Safety

All operations are safe for concurrent use.
*/
package cache
