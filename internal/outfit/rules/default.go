// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

// Package rules publishes rule sets to the engine: the built-in default
// set, a YAML loader for operator-tuned sets, and a swappable provider
// with snapshot semantics.
package rules

import (
	"fmt"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// DefaultVersion identifies the built-in rule set.
const DefaultVersion = "builtin-1"

// Default returns the built-in rule set, validated and ready to publish.
func Default() *outfit.RuleSet {
	rs := &outfit.RuleSet{
		Version: DefaultVersion,

		Layering: map[outfit.Slot][]outfit.Slot{
			outfit.SlotTop: {outfit.SlotMid},
			outfit.SlotMid: {outfit.SlotOuter},
		},

		Templates: []outfit.Template{
			{
				ID:            "work_office",
				Occasions:     []string{"work_office", "business_meeting", "creative_professional"},
				Required:      []outfit.Slot{outfit.SlotTop, outfit.SlotBottom, outfit.SlotFootwear},
				Optional:      []outfit.Slot{outfit.SlotMid, outfit.SlotOuter, outfit.SlotBelt, outfit.SlotBag, outfit.SlotJewelry},
				Anchor:        outfit.SlotMid,
				DressinessMin: 3,
				DressinessMax: 5,
				BeltGate:      4,
			},
			{
				ID:            "casual_day",
				Occasions:     []string{"casual_day", "work_casual", "errands", "weekend", "travel_airport", "beach_resort"},
				Required:      []outfit.Slot{outfit.SlotTop, outfit.SlotBottom, outfit.SlotFootwear},
				Optional:      []outfit.Slot{outfit.SlotMid, outfit.SlotOuter, outfit.SlotBag, outfit.SlotHeadwear},
				Anchor:        outfit.SlotTop,
				DressinessMin: 1,
				DressinessMax: 3,
			},
			{
				ID:            "evening_out",
				Occasions:     []string{"evening_out", "dinner", "date_night", "cocktail_evening", "formal_event", "wedding_guest"},
				Required:      []outfit.Slot{outfit.SlotOnePiece, outfit.SlotFootwear},
				Optional:      []outfit.Slot{outfit.SlotOuter, outfit.SlotBag, outfit.SlotJewelry, outfit.SlotHosiery},
				Anchor:        outfit.SlotOnePiece,
				DressinessMin: 3,
				DressinessMax: 5,
			},
			{
				ID:            "evening_separates",
				Occasions:     []string{"evening_out", "dinner", "date_night", "cocktail_evening", "wedding_guest"},
				Required:      []outfit.Slot{outfit.SlotTop, outfit.SlotBottom, outfit.SlotFootwear},
				Optional:      []outfit.Slot{outfit.SlotMid, outfit.SlotOuter, outfit.SlotBag, outfit.SlotJewelry},
				Anchor:        outfit.SlotTop,
				DressinessMin: 2,
				DressinessMax: 4,
			},
			{
				ID:            "athletic",
				Occasions:     []string{"workout", "active_gym", "athleisure"},
				Required:      []outfit.Slot{outfit.SlotTop, outfit.SlotBottom, outfit.SlotFootwear},
				Optional:      []outfit.Slot{outfit.SlotMid, outfit.SlotHeadwear, outfit.SlotBag},
				Anchor:        outfit.SlotTop,
				DressinessMin: 1,
				DressinessMax: 2,
			},
			{
				ID:            "streetwear",
				Occasions:     []string{"streetwear", "festival_concert"},
				Required:      []outfit.Slot{outfit.SlotTop, outfit.SlotBottom, outfit.SlotFootwear},
				Optional:      []outfit.Slot{outfit.SlotMid, outfit.SlotOuter, outfit.SlotHeadwear, outfit.SlotBag},
				Anchor:        outfit.SlotTop,
				DressinessMin: 1,
				DressinessMax: 3,
			},
			{
				ID:            "winter_layering",
				Occasions:     []string{"winter_layering", "rainwear_technical"},
				Required:      []outfit.Slot{outfit.SlotTop, outfit.SlotBottom, outfit.SlotOuter, outfit.SlotFootwear},
				Optional:      []outfit.Slot{outfit.SlotMid, outfit.SlotHeadwear, outfit.SlotHosiery, outfit.SlotBag},
				Anchor:        outfit.SlotOuter,
				DressinessMin: 1,
				DressinessMax: 4,
			},
		},

		Weights: map[string]float64{
			"palette_harmony":       0.22,
			"formality_closeness":   0.14,
			"pattern_mix":           0.12,
			"silhouette_balance":    0.12,
			"temperature_fit":       0.10,
			"proportion_fit":        0.10,
			"style_tag_match":       0.08,
			"skin_synergy":          0.08,
			"accessory_consistency": 0.07,
			"novelty_variety":       0.05,
		},

		FormalityTolLo: 1,
		FormalityTolHi: 1,

		Thresholds: outfit.Thresholds{
			DeltaENear:       12,
			DeltaESimilar:    25,
			MaxPatterns:      2,
			SkinContrastMin:  25,
			SkinHarmonizeMax: 15,
		},

		AccessoryMode: outfit.AccessoryCoordinated,

		CoordKinds: map[string][]outfit.Slot{
			"suit":      {outfit.SlotMid, outfit.SlotBottom},
			"tracksuit": {outfit.SlotTop, outfit.SlotBottom},
			"knit_set":  {outfit.SlotTop, outfit.SlotBottom},
		},

		PreferStrictBreakPenalty: 0.15,
		NoveltyWindow:            10,
	}

	if err := rs.Validate(); err != nil {
		// The built-in set is covered by tests; an invalid default is a
		// programming error, not a runtime condition.
		panic(fmt.Sprintf("built-in rule set invalid: %v", err))
	}
	return rs
}
