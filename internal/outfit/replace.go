// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package outfit

import (
	"context"
	"sort"
	"time"
)

// ReplaceRequest asks for ranked alternatives for one bundle slot.
type ReplaceRequest struct {
	// UserID identifies the wardrobe owner.
	UserID string `validate:"required"`

	// Bundle is the existing bundle to modify.
	Bundle *Bundle

	// Slot is the slot to replace.
	Slot Slot

	// Context is the occasion context the bundle was generated for.
	Context Context

	// Locks lists slots that must not appear in any cascade plan.
	// The remaining slots default to fixed; only cascades touch them.
	Locks []Slot

	// AllowCatalog permits catalog alternatives.
	AllowCatalog bool

	// Deadline caps the request; zero derives one from the replace budget.
	Deadline time.Time

	// RequestID is an optional trace identifier.
	RequestID string
}

// CascadePlan describes the additional replacements entailed by breaking a
// strict co-ord group.
type CascadePlan struct {
	// Slots are the other slots that must also be re-picked.
	Slots []Slot `json:"slots"`

	// GroupID is the proposed replacement group.
	GroupID string `json:"group_id"`

	// Replacements are the proposed items for the cascade slots.
	Replacements []BundleSlot `json:"replacements"`
}

// Alternative is one ranked replacement candidate.
type Alternative struct {
	// ItemID is the candidate item.
	ItemID string `json:"item_id"`

	// NewScore is the rescored bundle aggregate with the candidate in place.
	NewScore float64 `json:"new_score"`

	// Delta is NewScore minus the current bundle score.
	Delta float64 `json:"delta_vs_current"`

	// RequiresCascade marks alternatives that break a strict group.
	RequiresCascade bool `json:"requires_cascade"`

	// CascadePlan is set when RequiresCascade is true.
	CascadePlan *CascadePlan `json:"cascade_plan,omitempty"`

	// CoherenceReason explains the alternative's set coherence.
	CoherenceReason string `json:"coherence_reason,omitempty"`
}

// AlternativesResult is the ordered replacement list for one slot.
type AlternativesResult struct {
	Slot           Slot          `json:"slot"`
	CurrentItemID  string        `json:"current_item_id"`
	Alternatives   []Alternative `json:"alternatives"`
	RulesetVersion string        `json:"ruleset_version"`

	// Partial marks a list truncated by the deadline.
	Partial bool `json:"partial,omitempty"`
}

// Replace ranks alternatives for one slot of an existing bundle, holding
// the other slots fixed. Strict co-ord items cascade; see CascadePlan.
func (e *Engine) Replace(ctx context.Context, req ReplaceRequest) (*AlternativesResult, error) {
	start := time.Now()
	if err := e.admit(); err != nil {
		e.observe("replace", start, err)
		return nil, err
	}
	defer e.release()

	st, cancel, eng := e.newRequestState(ctx, req.UserID, &req.Context, req.AllowCatalog, req.RequestID, req.Deadline, e.config.Budgets.Replace, "replace")
	defer cancel()
	if eng != nil {
		e.observe("replace", start, eng)
		return nil, eng
	}

	result, repErr := e.replace(st, &req)
	e.observe("replace", start, repErr)
	if repErr != nil {
		return nil, repErr
	}
	return result, nil
}

// replace implements the planner for a prepared request.
func (e *Engine) replace(st *requestState, req *ReplaceRequest) (*AlternativesResult, *Error) {
	if req.Bundle == nil || len(req.Bundle.Slots) == 0 {
		return nil, newError(KindInvalidInput, "bundle is empty")
	}

	tpl := st.rules.TemplateByID(req.Bundle.TemplateID)
	if tpl == nil {
		return nil, newError(KindInvalidInput, "unknown template %q", req.Bundle.TemplateID)
	}
	if !tpl.HasSlot(req.Slot) {
		return nil, newError(KindInvalidInput, "slot %q not in template %q", req.Slot, tpl.ID)
	}

	fixed, current, eng := e.splitBundle(st, req.Bundle, tpl, req.Slot)
	if eng != nil {
		return nil, eng
	}
	if current == nil {
		return nil, newError(KindInvalidInput, "bundle has no item in slot %q", req.Slot)
	}

	shortlist, eng := e.retrieve(st, tpl, req.Slot, req.Slot == tpl.Anchor)
	if eng != nil {
		return nil, eng
	}

	plan := &planContext{
		tpl:      tpl,
		fixed:    fixed,
		current:  current,
		bundle:   req.Bundle,
		locks:    lockSet(req.Locks),
		baseline: req.Bundle.Score,
	}

	var alts []Alternative
	var planErr *Error
	switch current.CohesionPolicy {
	case CohesionStrict:
		alts, planErr = e.strictAlternatives(st, plan, shortlist)
	case CohesionPreferStrict:
		alts, planErr = e.preferStrictAlternatives(st, plan, shortlist)
	default:
		alts, planErr = e.looseAlternatives(st, plan, shortlist)
	}
	if planErr != nil {
		return nil, planErr
	}

	sort.Slice(alts, func(i, j int) bool {
		if alts[i].NewScore != alts[j].NewScore {
			return alts[i].NewScore > alts[j].NewScore
		}
		return alts[i].ItemID < alts[j].ItemID
	})
	if len(alts) > e.config.Search.MaxAlternatives {
		alts = alts[:e.config.Search.MaxAlternatives]
	}

	return &AlternativesResult{
		Slot:           req.Slot,
		CurrentItemID:  current.ID,
		Alternatives:   alts,
		RulesetVersion: st.rules.Version,
		Partial:        st.expired(),
	}, nil
}

// planContext carries the fixed context a replacement is evaluated in.
type planContext struct {
	tpl      *Template
	fixed    []*Item
	current  *Item
	bundle   *Bundle
	locks    map[Slot]struct{}
	baseline float64
}

// splitBundle resolves bundle items, returning the fixed items and the
// current occupant of the target slot.
func (e *Engine) splitBundle(st *requestState, bundle *Bundle, tpl *Template, slot Slot) ([]*Item, *Item, *Error) {
	var fixed []*Item
	var current *Item
	for _, bs := range bundle.Slots {
		it, err := e.getItem(st, bs.ItemID)
		if err != nil {
			return nil, nil, err
		}
		if bs.Slot == slot {
			current = it
			continue
		}
		fixed = append(fixed, it)
	}
	return fixed, current, nil
}

// strictAlternatives handles a strict current item: same-group members swap
// freely; other groups of the same set kind cascade.
func (e *Engine) strictAlternatives(st *requestState, plan *planContext, shortlist []*Item) ([]Alternative, *Error) {
	var alts []Alternative

	members, err := e.getGroup(st, plan.current.GroupID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.Slot != plan.current.Slot || m.ID == plan.current.ID {
			continue
		}
		if alt, ok := e.rescoreSwap(st, plan, []*Item{m}); ok {
			alt.CoherenceReason = "keeps coordinated set " + plan.current.GroupID
			alts = append(alts, alt)
		}
	}

	cascades, err := e.cascadeAlternatives(st, plan, shortlist)
	if err != nil {
		return nil, err
	}
	return append(alts, cascades...), nil
}

// cascadeAlternatives proposes whole-group swaps to other strict groups of
// the same coordinated-set kind.
func (e *Engine) cascadeAlternatives(st *requestState, plan *planContext, shortlist []*Item) ([]Alternative, *Error) {
	groupSlots := st.rules.CoordKinds[plan.current.CoordSetKind]

	// Cascade slots are the group-spanned slots other than the target.
	var cascadeSlots []Slot
	for _, s := range groupSlots {
		if s != plan.current.Slot && plan.tpl.HasSlot(s) {
			cascadeSlots = append(cascadeSlots, s)
		}
	}
	for _, s := range cascadeSlots {
		if _, locked := plan.locks[s]; locked {
			// A locked slot blocks every cascade.
			return nil, nil
		}
	}

	seen := map[string]struct{}{plan.current.GroupID: {}}
	var alts []Alternative

	for _, cand := range shortlist {
		if st.expired() {
			break
		}
		if !cand.InGroup() || cand.CoordSetKind != plan.current.CoordSetKind {
			continue
		}
		if _, dup := seen[cand.GroupID]; dup {
			continue
		}
		seen[cand.GroupID] = struct{}{}

		members, err := e.getGroup(st, cand.GroupID)
		if err != nil {
			return nil, err
		}
		var swap []*Item
		for _, m := range members {
			if plan.tpl.HasSlot(m.Slot) {
				swap = append(swap, m)
			}
		}

		alt, ok := e.rescoreSwap(st, plan, swap)
		if !ok {
			continue
		}
		alt.ItemID = cand.ID
		alt.RequiresCascade = true
		alt.CoherenceReason = "replaces coordinated set " + plan.current.GroupID + " with " + cand.GroupID
		alt.CascadePlan = buildCascadePlan(cascadeSlots, cand.GroupID, swap, plan.current.Slot)
		alts = append(alts, alt)
	}
	return alts, nil
}

func buildCascadePlan(cascadeSlots []Slot, groupID string, swap []*Item, targetSlot Slot) *CascadePlan {
	cp := &CascadePlan{Slots: cascadeSlots, GroupID: groupID}
	for _, m := range swap {
		if m.Slot == targetSlot {
			continue
		}
		cp.Replacements = append(cp.Replacements, BundleSlot{Slot: m.Slot, ItemID: m.ID, Owner: m.Owner})
	}
	sort.Slice(cp.Replacements, func(i, j int) bool { return cp.Replacements[i].Slot < cp.Replacements[j].Slot })
	return cp
}

// preferStrictAlternatives tries same-group members first, then outside
// items carrying the configured break penalty.
func (e *Engine) preferStrictAlternatives(st *requestState, plan *planContext, shortlist []*Item) ([]Alternative, *Error) {
	var alts []Alternative

	members, err := e.getGroup(st, plan.current.GroupID)
	if err != nil {
		return nil, err
	}
	sameSlotMembers := make(map[string]struct{})
	for _, m := range members {
		if m.Slot != plan.current.Slot || m.ID == plan.current.ID {
			continue
		}
		sameSlotMembers[m.ID] = struct{}{}
		if alt, ok := e.rescoreSwap(st, plan, []*Item{m}); ok {
			alt.CoherenceReason = "keeps coordinated set " + plan.current.GroupID
			alts = append(alts, alt)
		}
	}

	for _, cand := range shortlist {
		if st.expired() {
			break
		}
		if cand.ID == plan.current.ID {
			continue
		}
		if _, same := sameSlotMembers[cand.ID]; same {
			continue
		}
		if cand.GroupID == plan.current.GroupID {
			continue
		}
		alt, ok := e.rescoreSwap(st, plan, []*Item{cand})
		if !ok {
			continue
		}
		alt.NewScore = clamp01(alt.NewScore - st.rules.PreferStrictBreakPenalty)
		alt.Delta = alt.NewScore - plan.baseline
		alt.CoherenceReason = "breaks prefer-strict set " + plan.current.GroupID
		alts = append(alts, alt)
	}
	return alts, nil
}

// looseAlternatives ranks unconstrained candidates by the rescored bundle
// aggregate, which folds in palette, pattern, formality, and temperature
// compatibility with the fixed items.
func (e *Engine) looseAlternatives(st *requestState, plan *planContext, shortlist []*Item) ([]Alternative, *Error) {
	var alts []Alternative
	for _, cand := range shortlist {
		if st.expired() {
			break
		}
		if cand.ID == plan.current.ID {
			continue
		}
		if alt, ok := e.rescoreSwap(st, plan, []*Item{cand}); ok {
			alts = append(alts, alt)
		}
	}
	return alts, nil
}

// rescoreSwap rebuilds the bundle with the swap items in place of the
// replaced slots, re-checks every hard constraint against the fixed state
// plus candidates, and recomputes the aggregate.
func (e *Engine) rescoreSwap(st *requestState, plan *planContext, swap []*Item) (Alternative, bool) {
	replaced := make(map[Slot]struct{}, len(swap))
	for _, it := range swap {
		replaced[it.Slot] = struct{}{}
	}
	replaced[plan.current.Slot] = struct{}{}

	state := NewBundleState(plan.tpl)
	for _, it := range plan.fixed {
		if _, isReplaced := replaced[it.Slot]; isReplaced {
			continue
		}
		state = state.Commit(it)
	}
	state = state.CommitGroup(swap)

	if v := e.checkState(st, state, true); v != nil {
		return Alternative{}, false
	}

	score, _, _ := e.scoreState(st, state)
	primary := ""
	for _, it := range swap {
		if it.Slot == plan.current.Slot {
			primary = it.ID
		}
	}
	return Alternative{
		ItemID:   primary,
		NewScore: score,
		Delta:    score - plan.baseline,
	}, true
}

func lockSet(locks []Slot) map[Slot]struct{} {
	out := make(map[Slot]struct{}, len(locks))
	for _, s := range locks {
		out[s] = struct{}{}
	}
	return out
}
