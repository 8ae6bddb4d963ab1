// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package rules

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// Provider publishes rule sets with snapshot semantics. Current never
// blocks a publish; a request that captured the previous set keeps it for
// its whole lifetime.
type Provider struct {
	current atomic.Pointer[outfit.RuleSet]

	// pubMu serializes publishes; seen holds every version ever accepted.
	pubMu sync.Mutex
	seen  map[string]struct{}

	// onPublish hooks run after each successful publish. Used to fan out
	// cache invalidation.
	onPublish []func(*outfit.RuleSet)
}

// NewProvider creates a provider seeded with an initial rule set.
func NewProvider(rs *outfit.RuleSet) *Provider {
	p := &Provider{seen: make(map[string]struct{})}
	if rs != nil {
		p.seen[rs.Version] = struct{}{}
		p.current.Store(rs)
	}
	return p
}

// Current returns the rule set snapshot for a new request.
func (p *Provider) Current() *outfit.RuleSet {
	return p.current.Load()
}

// OnPublish registers a hook invoked after every publish. Must be called
// before the provider serves concurrent publishes.
func (p *Provider) OnPublish(fn func(*outfit.RuleSet)) {
	p.onPublish = append(p.onPublish, fn)
}

// Publish validates and swaps in a new rule set. A version is accepted at
// most once for the provider's lifetime: event transports deliver publishes
// with no ordering guarantee, and a replayed stale version must never
// regress a newer active set.
func (p *Provider) Publish(rs *outfit.RuleSet) error {
	if err := rs.Validate(); err != nil {
		return fmt.Errorf("refusing to publish invalid rule set: %w", err)
	}

	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	if _, dup := p.seen[rs.Version]; dup {
		return fmt.Errorf("rule set version %q is already published", rs.Version)
	}
	p.seen[rs.Version] = struct{}{}

	p.current.Store(rs)
	for _, fn := range p.onPublish {
		fn(rs)
	}
	return nil
}
