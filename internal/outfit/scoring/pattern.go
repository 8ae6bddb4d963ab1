// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package scoring

import (
	"fmt"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// PatternMix penalizes pattern overload. One statement pattern is free;
// every additional non-solid item eats into the budget set by the rule-set
// MaxPatterns threshold, and two patterns at the same visual scale compete
// for attention so each such pair costs extra.
type PatternMix struct{}

// sharedScalePenalty is subtracted per pair of non-solid items sharing a
// pattern scale.
const sharedScalePenalty = 0.2

func (PatternMix) Name() string { return NamePatternMix }

func (PatternMix) Score(in outfit.ScoreInput) (float64, float64, string) {
	var patterned []*outfit.Item
	for _, it := range in.State.Items() {
		if it.Pattern != "" && it.Pattern != outfit.PatternSolid {
			patterned = append(patterned, it)
		}
	}

	if len(patterned) == 0 {
		return 1.0, 1.0, "all solid"
	}

	pmax := in.Rules.Thresholds.MaxPatterns
	if pmax < 2 {
		pmax = 2
	}

	p := len(patterned)
	score := 1.0 - float64(maxInt(0, p-1))/float64(pmax-1)

	sharedPairs := 0
	for i := range patterned {
		for j := i + 1; j < len(patterned); j++ {
			if patterned[i].PatternScale != "" &&
				patterned[i].PatternScale == patterned[j].PatternScale {
				sharedPairs++
			}
		}
	}
	score -= float64(sharedPairs) * sharedScalePenalty
	score = clamp01(score)

	conf := minConf(1.0, patterned, "pattern")
	if sharedPairs > 0 {
		return score, conf, fmt.Sprintf("%d patterned, %d shared-scale pairs", p, sharedPairs)
	}
	return score, conf, fmt.Sprintf("%d patterned", p)
}

// SilhouetteBalance rewards volume contrast between the top and bottom
// halves. Oversized over fitted (or the reverse) reads as intentional;
// matching volumes read as flat. More than one structured-shoulder layer
// is penalized regardless.
type SilhouetteBalance struct{}

// fitVolume ranks fit profiles by visual volume.
var fitVolume = map[outfit.FitProfile]int{
	outfit.FitSlim:      0,
	outfit.FitRegular:   1,
	outfit.FitRelaxed:   2,
	outfit.FitOversized: 3,
}

const structuredLayerPenalty = 0.2

func (SilhouetteBalance) Name() string { return NameSilhouetteBalance }

func (SilhouetteBalance) Score(in outfit.ScoreInput) (float64, float64, string) {
	top := in.State.Get(outfit.SlotTop)
	bottom := in.State.Get(outfit.SlotBottom)
	onePiece := in.State.Get(outfit.SlotOnePiece)

	structured := 0
	for _, slot := range []outfit.Slot{outfit.SlotTop, outfit.SlotMid, outfit.SlotOuter} {
		if it := in.State.Get(slot); it != nil && it.ShoulderStructure == outfit.ShoulderStructured {
			structured++
		}
	}
	layerPenalty := float64(maxInt(0, structured-1)) * structuredLayerPenalty

	// A one-piece balances itself; only the layer penalty applies.
	if onePiece != nil {
		score := clamp01(0.8 - layerPenalty)
		return score, onePiece.AttrConfidence("fit_profile"), "one-piece silhouette"
	}

	if top == nil || bottom == nil || top.FitProfile == "" || bottom.FitProfile == "" {
		return 0.5, 0.5, "insufficient fit data"
	}

	gap := absInt(fitVolume[top.FitProfile] - fitVolume[bottom.FitProfile])
	var base float64
	switch {
	case gap >= 2:
		base = 1.0
	case gap == 1:
		base = 0.8
	default:
		base = 0.6
	}

	score := clamp01(base - layerPenalty)
	conf := minConf(1.0, []*outfit.Item{top, bottom}, "fit_profile")

	expl := fmt.Sprintf("%s over %s", top.FitProfile, bottom.FitProfile)
	if structured > 1 {
		expl = fmt.Sprintf("%s, %d structured layers", expl, structured)
	}
	return score, conf, expl
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
