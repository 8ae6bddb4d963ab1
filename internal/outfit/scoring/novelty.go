// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package scoring

import (
	"fmt"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// NoveltyVariety penalizes re-wearing items from the recent history. The
// penalty decays linearly with how long ago the item was worn: the most
// recent wear costs the full share, the oldest in the window costs almost
// nothing. An empty history is a perfect score; new users are never
// penalized for having no data.
type NoveltyVariety struct{}

func (NoveltyVariety) Name() string { return NameNoveltyVariety }

func (NoveltyVariety) Score(in outfit.ScoreInput) (float64, float64, string) {
	items := in.State.Items()
	if len(items) == 0 {
		return 0.5, 0.5, "empty bundle"
	}

	window := in.Rules.NoveltyWindow
	if window <= 0 || window > len(in.RecentWorn) {
		window = len(in.RecentWorn)
	}
	if window == 0 {
		return 1.0, 1.0, "no wear history"
	}

	// recency[id] is the most recent position of id, 0 = just worn.
	recency := make(map[string]int, window)
	for i := window - 1; i >= 0; i-- {
		recency[in.RecentWorn[i]] = i
	}

	var penalty float64
	repeats := 0
	for _, it := range items {
		if pos, ok := recency[it.ID]; ok {
			repeats++
			penalty += 1 - float64(pos)/float64(window)
		}
	}

	score := clamp01(1 - penalty/float64(len(items)))
	if repeats == 0 {
		return score, 1.0, "all fresh"
	}
	return score, 1.0, fmt.Sprintf("%d recently worn", repeats)
}

// AccessoryConsistency enforces the rule set's accessory family discipline.
// Leather pieces should share a leather family; metal pieces should share
// both metal family and finish. strict_family zeroes on any mismatch,
// coordinated tolerates one with linear decay, free does not care.
type AccessoryConsistency struct{}

func (AccessoryConsistency) Name() string { return NameAccessoryConsistency }

func (AccessoryConsistency) Score(in outfit.ScoreInput) (float64, float64, string) {
	mode := in.Rules.AccessoryMode
	if mode == outfit.AccessoryFree {
		return 1.0, 1.0, "free mode"
	}

	var leather, metal []*outfit.Item
	for _, it := range in.State.Items() {
		if it.LeatherFamily != "" {
			leather = append(leather, it)
		}
		if it.MetalFamily != "" {
			metal = append(metal, it)
		}
	}

	if len(leather) == 0 && len(metal) == 0 {
		return 1.0, 1.0, "no accessories"
	}

	mismatches := distinctValues(leather, func(it *outfit.Item) string {
		return it.LeatherFamily
	})
	mismatches += distinctValues(metal, func(it *outfit.Item) string {
		return it.MetalFamily + "/" + it.MetalFinish
	})

	conf := minConf(1.0, leather, "leather_family")
	conf = minConf(conf, metal, "metal_family")
	conf = minConf(conf, metal, "metal_finish")

	var score float64
	switch {
	case mismatches == 0:
		score = 1.0
	case mode == outfit.AccessoryStrictFamily:
		score = 0
	case mismatches == 1:
		// Coordinated: one mismatch decays linearly to half credit.
		score = 0.5
	default:
		score = 0
	}

	if mismatches == 0 {
		return score, conf, "families consistent"
	}
	return score, conf, fmt.Sprintf("%d family mismatches", mismatches)
}

// distinctValues counts values beyond the first distinct one; zero means
// every item agrees.
func distinctValues(items []*outfit.Item, key func(*outfit.Item) string) int {
	if len(items) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		seen[key(it)] = struct{}{}
	}
	return len(seen) - 1
}
