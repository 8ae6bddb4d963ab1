// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// MemoryProfiles is an in-memory profile provider.
type MemoryProfiles struct {
	mu       sync.RWMutex
	profiles map[string]*outfit.Profile
}

// NewMemoryProfiles creates an empty profile store.
func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{profiles: make(map[string]*outfit.Profile)}
}

// Put stores a profile.
func (m *MemoryProfiles) Put(p *outfit.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
}

// Snapshot implements outfit.ProfileProvider.
func (m *MemoryProfiles) Snapshot(ctx context.Context, userID string) (*outfit.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s not found", userID)
	}
	return p, nil
}

// MemoryHistory is an in-memory wear history, most recent first.
type MemoryHistory struct {
	mu   sync.RWMutex
	worn map[string][]string
}

// NewMemoryHistory creates an empty wear history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{worn: make(map[string][]string)}
}

// RecordWear prepends the worn item ids for a user.
func (m *MemoryHistory) RecordWear(userID string, itemIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worn[userID] = append(append([]string{}, itemIDs...), m.worn[userID]...)
}

// Recent implements outfit.WearHistoryProvider.
func (m *MemoryHistory) Recent(ctx context.Context, userID string, n int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	worn := m.worn[userID]
	if n > 0 && len(worn) > n {
		worn = worn[:n]
	}
	out := make([]string, len(worn))
	copy(out, worn)
	return out, nil
}
