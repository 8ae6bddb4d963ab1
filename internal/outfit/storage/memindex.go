// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wardrobelabs/ensemble/internal/outfit"
	"github.com/wardrobelabs/ensemble/internal/outfit/registry"
)

// MemoryIndex is an in-memory candidate index. Wardrobe items are held per
// user; catalog items are shared. Items are validated against the registry
// at ingest, so the engine can assume well-formed attributes.
//
// Search results are sorted by item id, which gives the stable order the
// engine's deterministic merge depends on.
type MemoryIndex struct {
	mu       sync.RWMutex
	registry *registry.Registry
	wardrobe map[string]map[string]*outfit.Item
	catalog  map[string]*outfit.Item
}

// NewMemoryIndex creates an empty index validating against the registry.
func NewMemoryIndex(reg *registry.Registry) *MemoryIndex {
	return &MemoryIndex{
		registry: reg,
		wardrobe: make(map[string]map[string]*outfit.Item),
		catalog:  make(map[string]*outfit.Item),
	}
}

// Put ingests one item. Catalog items ignore userID.
func (m *MemoryIndex) Put(userID string, it *outfit.Item) error {
	if vs := m.registry.Validate(it); vs != nil {
		return fmt.Errorf("item %s rejected: %s", it.ID, vs[0].Reason)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if it.Owner == outfit.OwnerCatalog {
		m.catalog[it.ID] = it
		return nil
	}
	if m.wardrobe[userID] == nil {
		m.wardrobe[userID] = make(map[string]*outfit.Item)
	}
	m.wardrobe[userID][it.ID] = it
	return nil
}

// Remove drops an item from a user's wardrobe or the catalog.
func (m *MemoryIndex) Remove(userID, itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.catalog, itemID)
	if w := m.wardrobe[userID]; w != nil {
		delete(w, itemID)
	}
}

// Search implements outfit.CandidateIndex.
func (m *MemoryIndex) Search(ctx context.Context, userID string, owner outfit.Owner, filter outfit.Filter, limit int) ([]*outfit.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var pool map[string]*outfit.Item
	if owner == outfit.OwnerCatalog {
		pool = m.catalog
	} else {
		pool = m.wardrobe[userID]
	}

	var out []*outfit.Item
	for _, it := range pool {
		if matches(it, filter) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Group implements outfit.CandidateIndex. Members come from the user's
// wardrobe and the catalog alike, sorted by id.
func (m *MemoryIndex) Group(ctx context.Context, userID string, groupID string) ([]*outfit.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*outfit.Item
	for _, it := range m.wardrobe[userID] {
		if it.GroupID == groupID {
			out = append(out, it)
		}
	}
	for _, it := range m.catalog {
		if it.GroupID == groupID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get implements outfit.CandidateIndex.
func (m *MemoryIndex) Get(ctx context.Context, userID string, itemID string) (*outfit.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if it, ok := m.wardrobe[userID][itemID]; ok {
		return it, nil
	}
	if it, ok := m.catalog[itemID]; ok {
		return it, nil
	}
	return nil, fmt.Errorf("item %s not found", itemID)
}

func matches(it *outfit.Item, f outfit.Filter) bool {
	if f.Slot != "" && it.Slot != f.Slot {
		return false
	}
	if f.Band != "" && !it.SuitsBand(f.Band) {
		return false
	}
	if f.FormalityMin != 0 && it.Formality < f.FormalityMin {
		return false
	}
	if f.FormalityMax != 0 && it.Formality > f.FormalityMax {
		return false
	}
	if f.GroupID != "" && it.GroupID != f.GroupID {
		return false
	}
	for _, ex := range f.ExcludeTags {
		for _, tag := range it.StyleTags {
			if tag == ex {
				return false
			}
		}
	}
	return true
}
