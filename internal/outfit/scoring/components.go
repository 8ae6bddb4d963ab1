// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package scoring

import (
	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// Component names. These are the keys the rule set uses for weights.
const (
	NamePaletteHarmony       = "palette_harmony"
	NamePatternMix           = "pattern_mix"
	NameSilhouetteBalance    = "silhouette_balance"
	NameFormalityCloseness   = "formality_closeness"
	NameTemperatureFit       = "temperature_fit"
	NameStyleTagMatch        = "style_tag_match"
	NameNoveltyVariety       = "novelty_variety"
	NameAccessoryConsistency = "accessory_consistency"
	NameSkinSynergy          = "skin_synergy"
	NameProportionFit        = "proportion_fit"
)

// DefaultComponents returns the full component set in registration order.
func DefaultComponents() []outfit.ScoreComponent {
	return []outfit.ScoreComponent{
		PaletteHarmony{},
		PatternMix{},
		SilhouetteBalance{},
		FormalityCloseness{},
		TemperatureFit{},
		StyleTagMatch{},
		NoveltyVariety{},
		AccessoryConsistency{},
		SkinSynergy{},
		ProportionFit{},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// minConf folds attribute confidences, starting at 1.0.
func minConf(conf float64, items []*outfit.Item, field string) float64 {
	for _, it := range items {
		if c := it.AttrConfidence(field); c < conf {
			conf = c
		}
	}
	return conf
}
