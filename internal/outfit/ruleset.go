// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package outfit

import (
	"fmt"
	"sort"
)

// AccessoryMode selects how strictly accessory families must agree.
type AccessoryMode string

// Accessory consistency modes.
const (
	AccessoryStrictFamily AccessoryMode = "strict_family"
	AccessoryCoordinated  AccessoryMode = "coordinated"
	AccessoryFree         AccessoryMode = "free"
)

// Template is a per-occasion outfit recipe.
type Template struct {
	// ID is the template identifier.
	ID string `json:"id" koanf:"id"`

	// Occasions lists the occasion names the template serves.
	Occasions []string `json:"occasions" koanf:"occasions"`

	// Required slots must all be filled for coverage.
	Required []Slot `json:"required" koanf:"required"`

	// Optional slots may be filled or explicitly skipped.
	Optional []Slot `json:"optional" koanf:"optional"`

	// Anchor is the slot committed first; typically the slot bound to a
	// co-ord group or a one_piece role.
	Anchor Slot `json:"anchor" koanf:"anchor"`

	// DressinessMin and DressinessMax bound the target dressiness range.
	DressinessMin int `json:"dressiness_min" koanf:"dressiness_min"`
	DressinessMax int `json:"dressiness_max" koanf:"dressiness_max"`

	// BeltGate requires a belt when the bottom has belt loops and the
	// dressiness target is at or above this value. Zero disables the gate.
	BeltGate int `json:"belt_gate,omitempty" koanf:"belt_gate"`
}

// MatchesOccasion reports whether the template serves the occasion.
func (t *Template) MatchesOccasion(occasion string) bool {
	for _, o := range t.Occasions {
		if o == occasion {
			return true
		}
	}
	return false
}

// InDressinessRange reports whether the target dressiness falls in range.
func (t *Template) InDressinessRange(target int) bool {
	return target >= t.DressinessMin && target <= t.DressinessMax
}

// HasSlot reports whether the slot is required or optional in the template.
func (t *Template) HasSlot(slot Slot) bool {
	return t.IsRequired(slot) || t.IsOptional(slot)
}

// IsRequired reports whether the slot is mandatory.
func (t *Template) IsRequired(slot Slot) bool {
	for _, s := range t.Required {
		if s == slot {
			return true
		}
	}
	return false
}

// IsOptional reports whether the slot is optional.
func (t *Template) IsOptional(slot Slot) bool {
	for _, s := range t.Optional {
		if s == slot {
			return true
		}
	}
	return false
}

// SlotSequence returns the beam-search slot order: anchor first, then the
// declared required sequence, then optional slots with accessories last.
func (t *Template) SlotSequence() []Slot {
	seq := make([]Slot, 0, len(t.Required)+len(t.Optional)+1)
	seen := make(map[Slot]struct{}, len(t.Required)+len(t.Optional)+1)

	add := func(s Slot) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		seq = append(seq, s)
	}

	if t.Anchor != "" {
		add(t.Anchor)
	}
	for _, s := range t.Required {
		if !isAccessorySlot(s) {
			add(s)
		}
	}
	for _, s := range t.Optional {
		if !isAccessorySlot(s) {
			add(s)
		}
	}
	for _, s := range t.Required {
		if isAccessorySlot(s) {
			add(s)
		}
	}
	for _, s := range t.Optional {
		if isAccessorySlot(s) {
			add(s)
		}
	}
	return seq
}

// isAccessorySlot reports whether the slot is an accessory class that beam
// search should fill last.
func isAccessorySlot(s Slot) bool {
	switch s {
	case SlotBag, SlotBelt, SlotJewelry, SlotHeadwear, SlotHosiery:
		return true
	default:
		return false
	}
}

// Thresholds collects the numeric bands the rule set tunes.
type Thresholds struct {
	// DeltaENear is the CIEDE2000 distance below which colors read as near.
	DeltaENear float64 `json:"delta_e_near" koanf:"delta_e_near"`

	// DeltaESimilar is the upper bound for "similar" colors.
	DeltaESimilar float64 `json:"delta_e_similar" koanf:"delta_e_similar"`

	// MaxPatterns is the number of non-solid items before pattern mixing
	// is penalized to zero.
	MaxPatterns int `json:"max_patterns" koanf:"max_patterns"`

	// SkinContrastMin is the minimum near-face dE for contrast synergy.
	SkinContrastMin float64 `json:"skin_contrast_min" koanf:"skin_contrast_min"`

	// SkinHarmonizeMax is the maximum near-face dE for harmonize synergy.
	SkinHarmonizeMax float64 `json:"skin_harmonize_max" koanf:"skin_harmonize_max"`
}

// RuleSet is the immutable, versioned bundle of rules the engine evaluates
// against. A request captures one rule set pointer at entry and never
// observes mutation.
type RuleSet struct {
	// Version identifies the published rule set.
	Version string `json:"version" koanf:"version"`

	// Layering is a DAG over layer slots; an edge u -> v means u is worn
	// under v (e.g. top -> mid -> outer).
	Layering map[Slot][]Slot `json:"layering" koanf:"layering"`

	// Templates is the per-occasion recipe registry.
	Templates []Template `json:"templates" koanf:"templates"`

	// Weights maps score component names to non-negative weights.
	// Weights are normalized at aggregation time.
	Weights map[string]float64 `json:"weights" koanf:"weights"`

	// FormalityTolLo and FormalityTolHi bound item formality around the
	// dressiness target: [target-lo, target+hi].
	FormalityTolLo int `json:"formality_tol_lo" koanf:"formality_tol_lo"`
	FormalityTolHi int `json:"formality_tol_hi" koanf:"formality_tol_hi"`

	// AllowOffSeason permits items whose seasonality excludes the band.
	AllowOffSeason bool `json:"allow_off_season" koanf:"allow_off_season"`

	// Thresholds holds the numeric bands.
	Thresholds Thresholds `json:"thresholds" koanf:"thresholds"`

	// AccessoryMode selects accessory consistency behavior.
	AccessoryMode AccessoryMode `json:"accessory_mode" koanf:"accessory_mode"`

	// CoordKinds maps a coordinated-set kind (suit, tracksuit, knit_set)
	// to the slots the set spans. Strict co-ord integrity requires every
	// spanned slot the template uses to be filled from the same group.
	CoordKinds map[string][]Slot `json:"coord_kinds" koanf:"coord_kinds"`

	// PreferStrictBreakPenalty is subtracted from the rescored aggregate
	// when a prefer_strict group is broken during replacement.
	PreferStrictBreakPenalty float64 `json:"prefer_strict_break_penalty" koanf:"prefer_strict_break_penalty"`

	// NoveltyWindow is how many recent outfits the novelty component sees.
	NoveltyWindow int `json:"novelty_window" koanf:"novelty_window"`

	// reach caches layering DAG reachability, built by Validate.
	reach map[Slot]map[Slot]bool
}

// Validate checks rule-set invariants and precomputes layering reachability.
// It must be called once before the rule set is published to the engine.
func (rs *RuleSet) Validate() error {
	if rs.Version == "" {
		return fmt.Errorf("ruleset version is empty")
	}
	if len(rs.Templates) == 0 {
		return fmt.Errorf("ruleset has no templates")
	}
	for i := range rs.Templates {
		t := &rs.Templates[i]
		if t.ID == "" {
			return fmt.Errorf("template %d has no id", i)
		}
		if len(t.Required) == 0 {
			return fmt.Errorf("template %q has no required slots", t.ID)
		}
		if t.DressinessMin < 1 || t.DressinessMax > 5 || t.DressinessMin > t.DressinessMax {
			return fmt.Errorf("template %q dressiness range [%d, %d] invalid", t.ID, t.DressinessMin, t.DressinessMax)
		}
		if t.Anchor != "" && !t.HasSlot(t.Anchor) {
			return fmt.Errorf("template %q anchor %q not among its slots", t.ID, t.Anchor)
		}
	}
	for name, w := range rs.Weights {
		if w < 0 {
			return fmt.Errorf("weight %q is negative", name)
		}
	}
	if rs.FormalityTolLo < 0 || rs.FormalityTolHi < 0 {
		return fmt.Errorf("formality tolerances must be non-negative")
	}

	reach, err := buildReachability(rs.Layering)
	if err != nil {
		return err
	}
	rs.reach = reach
	return nil
}

// LayerReachable reports whether slot b is reachable from slot a in the
// layering graph (a is worn under b, possibly transitively).
func (rs *RuleSet) LayerReachable(a, b Slot) bool {
	if rs.reach == nil {
		rs.reach, _ = buildReachability(rs.Layering)
	}
	return rs.reach[a][b]
}

// IsLayerSlot reports whether the slot participates in the layering graph.
func (rs *RuleSet) IsLayerSlot(s Slot) bool {
	if _, ok := rs.Layering[s]; ok {
		return true
	}
	for _, succs := range rs.Layering {
		for _, v := range succs {
			if v == s {
				return true
			}
		}
	}
	return false
}

// LayerPredecessors returns the direct under-layers of a slot.
func (rs *RuleSet) LayerPredecessors(s Slot) []Slot {
	var preds []Slot
	for u, succs := range rs.Layering {
		for _, v := range succs {
			if v == s {
				preds = append(preds, u)
			}
		}
	}
	sort.Slice(preds, func(i, j int) bool { return preds[i] < preds[j] })
	return preds
}

// NormalizedWeights returns the rule-set weights for the named components,
// normalized to sum to 1.0. Components without a configured weight get zero.
// When every named component has zero weight, equal weights are returned.
func (rs *RuleSet) NormalizedWeights(names []string) map[string]float64 {
	out := make(map[string]float64, len(names))
	sum := 0.0
	for _, n := range names {
		w := rs.Weights[n]
		if w < 0 {
			w = 0
		}
		out[n] = w
		sum += w
	}
	if sum == 0 {
		if len(names) == 0 {
			return out
		}
		eq := 1.0 / float64(len(names))
		for _, n := range names {
			out[n] = eq
		}
		return out
	}
	for n := range out {
		out[n] /= sum
	}
	return out
}

// SelectTemplate picks the template whose dressiness range contains the
// target and whose occasion matches, tie-broken by profile tag affinity then
// template id. Returns nil when nothing matches.
func (rs *RuleSet) SelectTemplate(occasion string, target int, profile *Profile) *Template {
	var best *Template
	bestAffinity := -1.0

	for i := range rs.Templates {
		t := &rs.Templates[i]
		if !t.MatchesOccasion(occasion) || !t.InDressinessRange(target) {
			continue
		}
		aff := templateAffinity(t, profile)
		if best == nil || aff > bestAffinity || (aff == bestAffinity && t.ID < best.ID) {
			best = t
			bestAffinity = aff
		}
	}
	return best
}

// TemplateByID looks up a template by identifier. Returns nil when absent.
func (rs *RuleSet) TemplateByID(id string) *Template {
	for i := range rs.Templates {
		if rs.Templates[i].ID == id {
			return &rs.Templates[i]
		}
	}
	return nil
}

// templateAffinity scores how well a template matches the profile's default
// occasion. A coarse signal; the fine ranking happens in beam search.
func templateAffinity(t *Template, profile *Profile) float64 {
	if profile == nil {
		return 0
	}
	if t.MatchesOccasion(profile.DefaultOccasion) {
		return 1
	}
	return 0
}

// buildReachability computes transitive closure over the layering DAG and
// rejects cyclic graphs.
func buildReachability(graph map[Slot][]Slot) (map[Slot]map[Slot]bool, error) {
	nodes := make(map[Slot]struct{})
	for u, succs := range graph {
		nodes[u] = struct{}{}
		for _, v := range succs {
			nodes[v] = struct{}{}
		}
	}

	// Cycle detection via iterative DFS coloring.
	const (
		white = 0
		gray  = 1
		black = 2
	)
	colors := make(map[Slot]int, len(nodes))
	var visit func(Slot) error
	visit = func(u Slot) error {
		colors[u] = gray
		for _, v := range graph[u] {
			switch colors[v] {
			case gray:
				return fmt.Errorf("layering graph has a cycle through %q", v)
			case white:
				if err := visit(v); err != nil {
					return err
				}
			}
		}
		colors[u] = black
		return nil
	}
	for n := range nodes {
		if colors[n] == white {
			if err := visit(n); err != nil {
				return nil, err
			}
		}
	}

	reach := make(map[Slot]map[Slot]bool, len(nodes))
	var collect func(Slot, map[Slot]bool)
	collect = func(u Slot, acc map[Slot]bool) {
		for _, v := range graph[u] {
			if !acc[v] {
				acc[v] = true
				collect(v, acc)
			}
		}
	}
	for n := range nodes {
		acc := make(map[Slot]bool)
		collect(n, acc)
		reach[n] = acc
	}
	return reach, nil
}
