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

// SkinSynergy scores how the near-face colors (top, outer, headwear,
// jewelry) play against the user's skin tone. Contrast style wants the
// CIEDE2000 distance comfortably above the contrast threshold; harmonize
// wants it below the harmonize threshold; auto picks per undertone. Each
// item scores a Gaussian over its deviation from the preferred band center
// and the component averages them.
//
// Without an appearance signature the component is a fixed neutral 0.5 at
// full confidence, so its aggregate contribution is exactly half its weight.
type SkinSynergy struct{}

func (SkinSynergy) Name() string { return NameSkinSynergy }

func (SkinSynergy) Score(in outfit.ScoreInput) (float64, float64, string) {
	app := in.Profile.Appearance
	if app == nil {
		return 0.5, 1.0, "appearance absent, neutral 0.5"
	}

	style := app.SynergyStyle
	if style == outfit.SynergyAuto || style == "" {
		// Cool undertones carry contrast well; warm undertones flatter
		// with tonal dressing.
		if app.Undertone == outfit.UndertoneWarm {
			style = outfit.SynergyHarmonize
		} else {
			style = outfit.SynergyContrast
		}
	}

	contrastMin := in.Rules.Thresholds.SkinContrastMin
	if contrastMin <= 0 {
		contrastMin = 25
	}
	harmonizeMax := in.Rules.Thresholds.SkinHarmonizeMax
	if harmonizeMax <= 0 {
		harmonizeMax = 15
	}

	var center, sigma float64
	if style == outfit.SynergyContrast {
		center = contrastMin + 12.5
		sigma = 12.5
	} else {
		center = harmonizeMax / 2
		sigma = harmonizeMax / 2
	}

	var used []*outfit.Item
	var sum float64
	for _, it := range in.State.Items() {
		if _, ok := outfit.NearFaceSlots[it.Slot]; !ok || it.Color == nil {
			continue
		}
		used = append(used, it)
		d := color.DeltaE2000(app.SkinLCh, *it.Color)
		dev := (d - center) / sigma
		sum += math.Exp(-dev * dev / 2)
	}

	if len(used) == 0 {
		return 0.5, 0.5, "no near-face colors"
	}

	score := sum / float64(len(used))
	conf := minConf(1.0, used, "color")
	return score, conf, fmt.Sprintf("%s over %d near-face items", style, len(used))
}

// ProportionFit scores silhouette choices against the user's body
// signature via a small rule table. Long torsos like high-rise bottoms;
// petite frames drown in long outers; a declared fit preference earns
// credit when the bundle leans that way. Without a body signature the
// component is a fixed neutral 0.5 at full confidence.
type ProportionFit struct{}

func (ProportionFit) Name() string { return NameProportionFit }

func (ProportionFit) Score(in outfit.ScoreInput) (float64, float64, string) {
	body := in.Profile.Body
	if body == nil {
		return 0.5, 1.0, "body absent, neutral 0.5"
	}

	score := 0.5
	hits := 0
	conf := 1.0

	if bottom := in.State.Get(outfit.SlotBottom); bottom != nil && bottom.BottomRiseClass != "" {
		conf = minConf(conf, []*outfit.Item{bottom}, "bottom_rise_class")
		switch {
		case body.TorsoLegRatio == outfit.RatioLongTorso && bottom.BottomRiseClass == "high_rise":
			score += 0.25
			hits++
		case body.TorsoLegRatio == outfit.RatioLongLegs && bottom.BottomRiseClass == "low_rise":
			score += 0.15
			hits++
		case body.TorsoLegRatio == outfit.RatioLongTorso && bottom.BottomRiseClass == "low_rise":
			score -= 0.15
			hits++
		}
	}

	if outer := in.State.Get(outfit.SlotOuter); outer != nil && outer.TopLengthClass != "" {
		conf = minConf(conf, []*outfit.Item{outer}, "top_length_class")
		if body.HeightClass == outfit.HeightPetite && outer.TopLengthClass == "long" {
			score -= 0.25
			hits++
		}
	}

	if top := in.State.Get(outfit.SlotTop); top != nil && top.TopLengthClass != "" {
		conf = minConf(conf, []*outfit.Item{top}, "top_length_class")
		if body.HeightClass == outfit.HeightPetite && top.TopLengthClass == "cropped" {
			score += 0.15
			hits++
		}
	}

	if body.WaistDefinition != "" {
		for _, it := range in.State.Items() {
			if it.WaistEmphasis == body.WaistDefinition {
				score += 0.1
				hits++
				break
			}
		}
	}

	if body.FitPreference != "" {
		matched := 0
		fitted := 0
		for _, it := range in.State.Items() {
			if it.FitProfile == "" {
				continue
			}
			fitted++
			if it.FitProfile == body.FitPreference {
				matched++
			}
		}
		if fitted > 0 && matched*2 >= fitted {
			score += 0.1
			hits++
		}
	}

	score = clamp01(score)
	if hits == 0 {
		return score, conf, "no proportion rules applied"
	}
	return score, conf, fmt.Sprintf("%d proportion rules applied", hits)
}
