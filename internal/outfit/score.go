// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package outfit

import (
	"fmt"

	"github.com/wardrobelabs/ensemble/internal/outfit/color"
)

// scoredState is a partial bundle with its running aggregate score.
type scoredState struct {
	state        *BundleState
	score        float64
	details      map[string]ComponentScore
	explanations []string
	tieBreak     string
	partial      bool
}

// scoreState evaluates every registered component on the state and
// aggregates with rule-set weights scaled by input confidence. Component
// scores are clamped to [0, 1]; the aggregate therefore stays in [0, 1].
func (e *Engine) scoreState(st *requestState, state *BundleState) (float64, map[string]ComponentScore, []string) {
	components := e.getComponents()
	in := ScoreInput{
		State:      state,
		Rules:      st.rules,
		Profile:    st.profile,
		Context:    st.reqCtx,
		RecentWorn: st.recentWorn,
		Now:        st.now,
	}

	details := make(map[string]ComponentScore, len(components))
	explanations := make([]string, 0, len(components))
	total := 0.0

	for _, c := range components {
		score, confidence, explanation := c.Score(in)
		score = clamp01(score)
		confidence = clamp01(confidence)

		w := st.weights[c.Name()]
		total += w * score * confidence

		details[c.Name()] = ComponentScore{
			Score:       score,
			Weight:      w,
			Confidence:  confidence,
			Explanation: explanation,
		}
		if explanation != "" {
			explanations = append(explanations, fmt.Sprintf("%s: %s", c.Name(), explanation))
		}
	}

	return clamp01(total), details, explanations
}

// newScoredState scores a state and packages it for beam ranking.
func (e *Engine) newScoredState(st *requestState, state *BundleState) *scoredState {
	score, details, explanations := e.scoreState(st, state)
	return &scoredState{
		state:        state,
		score:        score,
		details:      details,
		explanations: explanations,
		tieBreak:     state.TieBreakKey(),
	}
}

// less orders scored states by (-score, tie-break token). The token is a
// lexicographic item-id tuple, so the order is total and scheduling-free.
func (a *scoredState) less(b *scoredState) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.tieBreak < b.tieBreak
}

// betterTerminal orders complete bundles: score, then fewer catalog items,
// then lower mean dE among near-face items, then the tie-break token.
func (a *scoredState) betterTerminal(b *scoredState) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if ac, bc := a.state.CatalogCount(), b.state.CatalogCount(); ac != bc {
		return ac < bc
	}
	if ad, bd := meanNearFaceDelta(a.state), meanNearFaceDelta(b.state); ad != bd {
		return ad < bd
	}
	return a.tieBreak < b.tieBreak
}

// meanNearFaceDelta computes the mean pairwise CIEDE2000 distance among
// colored near-face items. States without two such items yield 0.
func meanNearFaceDelta(state *BundleState) float64 {
	var colors []color.LCh
	for _, it := range state.Items() {
		if _, ok := NearFaceSlots[it.Slot]; !ok || it.Color == nil {
			continue
		}
		colors = append(colors, *it.Color)
	}
	if len(colors) < 2 {
		return 0
	}

	sum, n := 0.0, 0
	for i := range colors {
		for j := i + 1; j < len(colors); j++ {
			sum += color.DeltaE2000(colors[i], colors[j])
			n++
		}
	}
	return sum / float64(n)
}

// unaryScore ranks a single candidate: formality closeness + temperature
// fit + style tag match + 0.1 * confidence.
func (st *requestState) unaryScore(it *Item) float64 {
	target := st.reqCtx.Dressiness(st.profile)

	fc := 1.0 - absFloat(float64(it.Formality-target))/4.0
	tf := 0.0
	if it.SuitsBand(st.reqCtx.TemperatureBand) {
		tf = 1.0
	}
	stm := jaccard(it.StyleTags, st.profile.StyleSignature)

	return fc + tf + stm + 0.1*it.MinConfidence()
}

// jaccard computes Jaccard similarity of two tag sets, case-sensitive.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	inter := 0
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := setB[t]; dup {
			continue
		}
		setB[t] = struct{}{}
		if _, ok := setA[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
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

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
