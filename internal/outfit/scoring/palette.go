// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package scoring

import (
	"fmt"
	"math"

	"github.com/wardrobelabs/ensemble/internal/outfit"
	"github.com/wardrobelabs/ensemble/internal/outfit/color"
)

// PaletteHarmony scores how well the bundle's colors read together.
//
// Non-neutral colors are classified pairwise by hue relation; the dominant
// relation sets the base score, scaled down by the circular spread of the
// hues. Neutrals never fight a palette, so they contribute a small boost
// instead of participating in the pairwise classification.
type PaletteHarmony struct{}

// Base scores by dominant hue relation.
var relationBase = map[color.Relation]float64{
	color.RelationSame:          0.8,
	color.RelationAnalogous:     0.9,
	color.RelationComplementary: 0.85,
	color.RelationTriadic:       0.7,
	color.RelationUnrelated:     0.3,
}

// neutralBoostPer is the boost each neutral item adds, capped at
// neutralBoostCap.
const (
	neutralBoostPer = 0.05
	neutralBoostCap = 0.1
)

// neutralPaletteScore is the score of a bundle with fewer than two
// non-neutral colors. An all-neutral outfit cannot clash.
const neutralPaletteScore = 0.85

func (PaletteHarmony) Name() string { return NamePaletteHarmony }

func (PaletteHarmony) Score(in outfit.ScoreInput) (float64, float64, string) {
	var colored []*outfit.Item
	var chromatic []color.LCh
	neutrals := 0

	for _, it := range in.State.Items() {
		if it.Color == nil {
			continue
		}
		colored = append(colored, it)
		if it.Color.IsNeutral() {
			neutrals++
			continue
		}
		chromatic = append(chromatic, *it.Color)
	}

	if len(colored) == 0 {
		return 0.5, 0.5, "no color data"
	}

	conf := minConf(1.0, colored, "color")

	if len(chromatic) < 2 {
		return neutralPaletteScore, conf, "neutral palette"
	}

	// Dominant relation over all chromatic pairs. Ties resolve in relation
	// declaration order so the result never depends on map iteration.
	counts := make(map[color.Relation]int)
	for i := range chromatic {
		for j := i + 1; j < len(chromatic); j++ {
			counts[color.Relate(chromatic[i], chromatic[j])]++
		}
	}
	dominant := color.RelationSame
	best := 0
	for _, rel := range []color.Relation{
		color.RelationSame,
		color.RelationAnalogous,
		color.RelationTriadic,
		color.RelationComplementary,
		color.RelationUnrelated,
	} {
		if counts[rel] > best {
			best = counts[rel]
			dominant = rel
		}
	}

	hues := make([]float64, len(chromatic))
	for i, c := range chromatic {
		hues[i] = c.H
	}
	sigma := color.CircularStdDev(hues)

	score := relationBase[dominant] * (1 - math.Min(1, sigma/60))
	boost := math.Min(neutralBoostCap, float64(neutrals)*neutralBoostPer)
	score = clamp01(score + boost)

	return score, conf, fmt.Sprintf("dominant %s, hue spread %.1f", dominant, sigma)
}
