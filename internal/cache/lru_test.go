// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU(3, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	if v, found := c.Get("a"); !found || v.(int) != 1 {
		t.Error("Expected to find key 'a' with value 1")
	}
	if _, found := c.Get("b"); !found {
		t.Error("Expected to find key 'b'")
	}
	if _, found := c.Get("c"); !found {
		t.Error("Expected to find key 'c'")
	}

	if c.Len() != 3 {
		t.Errorf("Expected len 3, got %d", c.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU(3, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// Access 'a' to make it most recently used
	c.Get("a")

	// Add new item, should evict 'b' (least recently used)
	c.Add("d", 4)

	if _, found := c.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}

	if _, found := c.Get("a"); !found {
		t.Error("Expected 'a' to be present")
	}
	if _, found := c.Get("c"); !found {
		t.Error("Expected 'c' to be present")
	}
	if _, found := c.Get("d"); !found {
		t.Error("Expected 'd' to be present")
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	c := NewLRU(10, 50*time.Millisecond)

	c.Add("a", 1)

	if _, found := c.Get("a"); !found {
		t.Error("Expected to find key 'a' immediately")
	}

	time.Sleep(60 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("Expected key 'a' to be expired")
	}
}

func TestLRU_Remove(t *testing.T) {
	c := NewLRU(10, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)

	if !c.Remove("a") {
		t.Error("Expected Remove to return true for existing key")
	}

	if c.Remove("a") {
		t.Error("Expected Remove to return false for non-existing key")
	}

	if _, found := c.Get("a"); found {
		t.Error("Expected key 'a' to be removed")
	}

	if _, found := c.Get("b"); !found {
		t.Error("Expected key 'b' to still be present")
	}
}

func TestLRU_Clear(t *testing.T) {
	c := NewLRU(10, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got len %d", c.Len())
	}

	if _, found := c.Get("a"); found {
		t.Error("Expected no items after Clear")
	}
}

func TestLRU_CleanupExpired(t *testing.T) {
	c := NewLRU(10, 50*time.Millisecond)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	time.Sleep(60 * time.Millisecond)

	// Add a new item that shouldn't expire
	c.Add("d", 4)

	removed := c.CleanupExpired()
	if removed != 3 {
		t.Errorf("Expected 3 expired items removed, got %d", removed)
	}

	if c.Len() != 1 {
		t.Errorf("Expected 1 item remaining, got %d", c.Len())
	}

	if _, found := c.Get("d"); !found {
		t.Error("Expected 'd' to still be present")
	}
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU(10, time.Minute)

	c.Add("a", 1)
	c.Get("a")        // hit
	c.Get("a")        // hit
	c.Get("nonexist") // miss

	hits, misses, size := c.Stats()
	if hits != 2 {
		t.Errorf("Expected 2 hits, got %d", hits)
	}
	if misses != 1 {
		t.Errorf("Expected 1 miss, got %d", misses)
	}
	if size != 1 {
		t.Errorf("Expected size 1, got %d", size)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU(1000, time.Minute)

	var wg sync.WaitGroup
	numGoroutines := 100
	numOperations := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				key := string(rune('a' + (id+j)%26))
				c.Add(key, id)
				c.Get(key)
				c.Contains(key)
			}
		}(i)
	}

	wg.Wait()

	// Cache should still be functional
	c.Add("test", 42)
	if _, found := c.Get("test"); !found {
		t.Error("Cache should still work after concurrent access")
	}
}

func TestLRU_UpdateExisting(t *testing.T) {
	c := NewLRU(3, time.Minute)

	c.Add("a", 1)
	c.Add("a", 2)

	// Should still have only 1 entry
	if c.Len() != 1 {
		t.Errorf("Expected len 1 after update, got %d", c.Len())
	}

	if v, found := c.Get("a"); !found || v.(int) != 2 {
		t.Error("Expected updated value")
	}
}

func BenchmarkLRU_Add(b *testing.B) {
	c := NewLRU(10000, time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := string(rune('a' + i%26))
		c.Add(key, i)
	}
}

func BenchmarkLRU_Get(b *testing.B) {
	c := NewLRU(10000, time.Minute)

	for i := 0; i < 1000; i++ {
		key := string(rune('a' + i%26))
		c.Add(key, i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := string(rune('a' + i%26))
		c.Get(key)
	}
}

func BenchmarkLRU_Eviction(b *testing.B) {
	c := NewLRU(100, time.Minute)

	for i := 0; i < 100; i++ {
		c.Add(fmt.Sprintf("k%d", i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Add(fmt.Sprintf("k%d", 1000+i), i)
	}
}
