// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package outfit

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/wardrobelabs/ensemble/internal/metrics"
)

// retrieve returns the ranked candidate shortlist for one template slot.
// Results are served from the process-wide LRU when possible; the cache key
// embeds generation counters so event-driven invalidation is O(1).
func (e *Engine) retrieve(st *requestState, tpl *Template, slot Slot, anchor bool) ([]*Item, *Error) {
	limit := e.config.Retrieval.SlotK
	if anchor {
		limit = e.config.Retrieval.AnchorK
	}

	key := e.shortlistKey(st, slot, limit)
	if e.shortlists != nil {
		if cached, ok := e.shortlists.Get(key); ok {
			metrics.ShortlistCacheHits.Inc()
			return cached.([]*Item), nil
		}
		metrics.ShortlistCacheMisses.Inc()
	}

	filter := e.buildFilter(st, slot)
	merged, err := e.searchOwners(st, filter, limit)
	if err != nil {
		return nil, err
	}

	// Stable merged order: unary score desc, wardrobe before catalog, then
	// item id.
	type ranked struct {
		item  *Item
		unary float64
	}
	rankedItems := make([]ranked, len(merged))
	for i, it := range merged {
		rankedItems[i] = ranked{item: it, unary: st.unaryScore(it)}
	}
	sort.Slice(rankedItems, func(i, j int) bool {
		a, b := rankedItems[i], rankedItems[j]
		if a.unary != b.unary {
			return a.unary > b.unary
		}
		if a.item.Owner != b.item.Owner {
			return a.item.Owner.Rank() < b.item.Owner.Rank()
		}
		return a.item.ID < b.item.ID
	})

	if len(rankedItems) > limit {
		rankedItems = rankedItems[:limit]
	}
	shortlist := make([]*Item, len(rankedItems))
	for i, r := range rankedItems {
		shortlist[i] = r.item
	}

	if e.shortlists != nil {
		e.shortlists.Add(key, shortlist)
	}
	return shortlist, nil
}

// buildFilter derives the index filter for a slot from the rule set and
// request context.
func (e *Engine) buildFilter(st *requestState, slot Slot) Filter {
	target := st.reqCtx.Dressiness(st.profile)
	lo := target - st.rules.FormalityTolLo
	if lo < 1 {
		lo = 1
	}
	hi := target + st.rules.FormalityTolHi
	if hi > 5 {
		hi = 5
	}

	f := Filter{
		Slot:         slot,
		FormalityMin: lo,
		FormalityMax: hi,
		ExcludeTags:  st.profile.ForbiddenTags,
	}
	if !st.rules.AllowOffSeason {
		f.Band = st.reqCtx.TemperatureBand
	}
	return f
}

// searchOwners queries wardrobe and, when permitted, catalog in parallel.
func (e *Engine) searchOwners(st *requestState, filter Filter, limit int) ([]*Item, *Error) {
	owners := []Owner{OwnerWardrobe}
	if st.allowCatalog {
		owners = append(owners, OwnerCatalog)
	}

	results := make([][]*Item, len(owners))
	errs := make([]error, len(owners))

	var wg sync.WaitGroup
	for i, owner := range owners {
		wg.Add(1)
		go func(idx int, o Owner) {
			defer wg.Done()
			results[idx], errs[idx] = e.searchIndex(st, o, filter, limit)
		}(i, owner)
	}
	wg.Wait()

	var merged []*Item
	for i, owner := range owners {
		if errs[i] != nil {
			return nil, wrapError(fetchKind(errs[i]), errs[i], "index search owner=%s slot=%s", owner, filter.Slot)
		}
		merged = append(merged, results[i]...)
	}
	return merged, nil
}

// searchIndex performs one index query, through the breaker when enabled.
func (e *Engine) searchIndex(st *requestState, owner Owner, filter Filter, limit int) ([]*Item, error) {
	start := time.Now()
	var items []*Item
	var err error
	if e.breaker == nil {
		items, err = e.providers.Index.Search(st.ctx, st.userID, owner, filter, limit)
	} else {
		items, err = e.breaker.execute(func() ([]*Item, error) {
			return e.providers.Index.Search(st.ctx, st.userID, owner, filter, limit)
		})
	}
	metrics.ObserveIndexSearch(owner.String(), start, err)
	return items, err
}

// shortlistKey builds the LRU key: user, generations, rule-set version,
// context hash, slot, limit, and catalog permission.
func (e *Engine) shortlistKey(st *requestState, slot Slot, limit int) string {
	e.genMu.Lock()
	userGen := e.userGen[st.userID]
	e.genMu.Unlock()

	return fmt.Sprintf("%s|g%d|u%d|%s|%x|%s|%d|%t",
		st.userID, e.globalGen.Load(), userGen,
		st.rules.Version, contextHash(st.reqCtx, st.profile),
		slot, limit, st.allowCatalog)
}

// contextHash fingerprints the request context fields that shape shortlists.
func contextHash(c *Context, p *Profile) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(c.Occasion))
	_, _ = fmt.Fprintf(h, "|%d|%s|", c.Dressiness(p), c.TemperatureBand)
	tags := make([]string, len(c.EventTags))
	copy(tags, c.EventTags)
	sort.Strings(tags)
	_, _ = h.Write([]byte(strings.Join(tags, ",")))
	forbidden := make([]string, len(p.ForbiddenTags))
	copy(forbidden, p.ForbiddenTags)
	sort.Strings(forbidden)
	_, _ = h.Write([]byte("|" + strings.Join(forbidden, ",")))
	return h.Sum64()
}

// indexBreaker shields the engine from a failing candidate index. An open
// breaker fails fast; the failure surfaces as INDEX_ERROR.
type indexBreaker struct {
	cb *gobreaker.CircuitBreaker[[]*Item]
}

func newIndexBreaker(cfg BreakerConfig) *indexBreaker {
	settings := gobreaker.Settings{
		Name:    "candidate-index",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	}
	return &indexBreaker{cb: gobreaker.NewCircuitBreaker[[]*Item](settings)}
}

func (b *indexBreaker) execute(fn func() ([]*Item, error)) ([]*Item, error) {
	return b.cb.Execute(fn)
}
