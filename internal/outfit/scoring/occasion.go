// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package scoring

import (
	"fmt"
	"math"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// FormalityCloseness scores how close the bundle's formality sits to the
// occasion target. The visually loud slots (top, outer, footwear) weigh
// twice as much in the average as everything else.
type FormalityCloseness struct{}

// formalityWeight is 2 for the slots that set the formality impression.
func formalityWeight(slot outfit.Slot) float64 {
	switch slot {
	case outfit.SlotTop, outfit.SlotOuter, outfit.SlotFootwear:
		return 2
	default:
		return 1
	}
}

func (FormalityCloseness) Name() string { return NameFormalityCloseness }

func (FormalityCloseness) Score(in outfit.ScoreInput) (float64, float64, string) {
	items := in.State.Items()
	if len(items) == 0 {
		return 0.5, 0.5, "empty bundle"
	}

	var sum, weight float64
	for _, it := range items {
		w := formalityWeight(it.Slot)
		sum += w * float64(it.Formality)
		weight += w
	}
	avg := sum / weight

	target := float64(in.Context.Dressiness(in.Profile))
	score := clamp01(1 - math.Abs(avg-target)/4)
	conf := minConf(1.0, items, "formality")

	return score, conf, fmt.Sprintf("avg %.1f vs target %.0f", avg, target)
}

// TemperatureFit scores the fraction of items whose seasonality covers the
// requested band. In cold weather the presence of an outer layer earns a
// bonus on top of the fraction.
type TemperatureFit struct{}

const coldOuterBonus = 0.15

func (TemperatureFit) Name() string { return NameTemperatureFit }

func (TemperatureFit) Score(in outfit.ScoreInput) (float64, float64, string) {
	items := in.State.Items()
	if len(items) == 0 {
		return 0.5, 0.5, "empty bundle"
	}

	band := in.Context.TemperatureBand
	suited := 0
	for _, it := range items {
		if it.SuitsBand(band) {
			suited++
		}
	}
	score := float64(suited) / float64(len(items))

	if band == outfit.BandCold && in.State.Has(outfit.SlotOuter) {
		score = clamp01(score + coldOuterBonus)
	}

	conf := minConf(1.0, items, "seasonality")
	return score, conf, fmt.Sprintf("%d/%d suit %s", suited, len(items), band)
}

// StyleTagMatch scores the overlap between the bundle's style tags and the
// profile's style signature. A forbidden tag anywhere in the bundle zeroes
// the component outright; the guardrail is absolute.
type StyleTagMatch struct{}

func (StyleTagMatch) Name() string { return NameStyleTagMatch }

func (StyleTagMatch) Score(in outfit.ScoreInput) (float64, float64, string) {
	items := in.State.Items()

	union := make(map[string]struct{})
	var tagged []*outfit.Item
	for _, it := range items {
		if len(it.StyleTags) == 0 {
			continue
		}
		tagged = append(tagged, it)
		for _, tag := range it.StyleTags {
			if in.Profile.ForbidsTag(tag) {
				return 0, it.AttrConfidence("style_tags"),
					fmt.Sprintf("forbidden tag %q on %s", tag, it.ID)
			}
			union[tag] = struct{}{}
		}
	}

	if len(in.Profile.StyleSignature) == 0 {
		return 0.5, 1.0, "no style signature"
	}
	if len(union) == 0 {
		return 0.5, 0.5, "no style tags"
	}

	sig := make(map[string]struct{}, len(in.Profile.StyleSignature))
	for _, tag := range in.Profile.StyleSignature {
		sig[tag] = struct{}{}
	}
	inter := 0
	for tag := range union {
		if _, ok := sig[tag]; ok {
			inter++
		}
	}
	score := float64(inter) / float64(len(union)+len(sig)-inter)

	conf := minConf(1.0, tagged, "style_tags")
	return score, conf, fmt.Sprintf("%d shared tags", inter)
}
