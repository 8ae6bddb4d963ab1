// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package outfit

import (
	"sort"
	"sync"

	"github.com/wardrobelabs/ensemble/internal/metrics"
)

// candidateBatchSize is how many expansions happen between deadline checks.
const candidateBatchSize = 16

// search runs beam search over the template's slot sequence and returns the
// best terminal state. Depth is bounded by the template length, width by the
// configured beam width, so total expansions stay within W * K * depth.
func (e *Engine) search(st *requestState, tpl *Template) (*scoredState, *Error) {
	seq := tpl.SlotSequence()
	beam := []*scoredState{e.newScoredState(st, NewBundleState(tpl))}

	var bestTerminal *scoredState
	prunes := newPruneLog()

	for _, slot := range seq {
		if st.expired() {
			return e.deadlineResult(st, bestTerminal)
		}

		anchor := slot == seq[0]
		shortlist, err := e.retrieve(st, tpl, slot, anchor)
		if err != nil {
			return nil, err
		}

		children, err := e.expandSlot(st, tpl, beam, slot, shortlist, prunes)
		if err != nil {
			return nil, err
		}

		if len(children) == 0 {
			return nil, e.noBundle(st, slot, prunes, beam)
		}

		sort.Slice(children, func(i, j int) bool { return children[i].less(children[j]) })
		if len(children) > e.config.Search.BeamWidth {
			children = children[:e.config.Search.BeamWidth]
		}
		beam = children

		bestTerminal = e.updateBestTerminal(st, tpl, beam, bestTerminal)
	}

	terminal := e.selectTerminal(st, tpl, beam)
	if terminal == nil {
		return nil, e.noBundle(st, seq[len(seq)-1], prunes, beam)
	}
	return terminal, nil
}

// expandSlot expands every partial in the beam at one slot, pruning children
// that fail a hard constraint. Scoring of surviving children may run
// concurrently; the caller sorts by the composite key afterwards, so the
// result order never depends on scheduling.
func (e *Engine) expandSlot(st *requestState, tpl *Template, beam []*scoredState, slot Slot, shortlist []*Item, prunes *pruneLog) ([]*scoredState, *Error) {
	var states []*BundleState
	var passThrough []*scoredState

	expanded := 0
	for _, parent := range beam {
		// A previous group commit may have filled this slot already.
		if parent.state.Has(slot) {
			passThrough = append(passThrough, parent)
			continue
		}

		cands := e.filterForPartial(st, parent.state, slot, shortlist)
		for _, cand := range cands {
			expanded++
			if expanded%candidateBatchSize == 0 && st.expired() {
				// Deadline checks happen at candidate-batch boundaries;
				// the caller turns this into a partial or DEADLINE.
				break
			}

			child, childErr := e.commitCandidate(st, tpl, parent.state, cand, slot)
			if childErr != nil {
				return nil, childErr
			}
			if child == nil {
				continue
			}
			if v := e.checkState(st, child, false); v != nil {
				prunes.record(slot, v)
				metrics.BeamPrunes.WithLabelValues(v.Code).Inc()
				continue
			}
			states = append(states, child)
		}

		if tpl.IsOptional(slot) {
			states = append(states, parent.state.Skip(slot))
		}
	}
	metrics.BeamExpansions.Add(float64(expanded))

	scored := e.scoreStates(st, states)
	return append(scored, passThrough...), nil
}

// scoreStates scores candidate states, concurrently when configured.
// Results are collected by index, preserving determinism.
func (e *Engine) scoreStates(st *requestState, states []*BundleState) []*scoredState {
	scored := make([]*scoredState, len(states))
	if !e.config.Search.ParallelScoring || len(states) < 2 {
		for i, s := range states {
			scored[i] = e.newScoredState(st, s)
		}
		return scored
	}

	var wg sync.WaitGroup
	for i, s := range states {
		wg.Add(1)
		go func(idx int, state *BundleState) {
			defer wg.Done()
			scored[idx] = e.newScoredState(st, state)
		}(i, s)
	}
	wg.Wait()
	return scored
}

// commitCandidate builds the child state for one candidate. Items with a
// strict cohesion policy commit their whole co-ord group atomically;
// prefer_strict groups commit atomically at the anchor slot.
func (e *Engine) commitCandidate(st *requestState, tpl *Template, parent *BundleState, cand *Item, slot Slot) (*BundleState, *Error) {
	groupCommit := cand.InGroup() &&
		(cand.CohesionPolicy == CohesionStrict ||
			(cand.CohesionPolicy == CohesionPreferStrict && slot == tpl.Anchor))

	if !groupCommit {
		return parent.Commit(cand), nil
	}

	members, err := e.getGroup(st, cand.GroupID)
	if err != nil {
		return nil, err
	}

	commit := make([]*Item, 0, len(members))
	for _, m := range members {
		if !tpl.HasSlot(m.Slot) {
			continue
		}
		if existing := parent.Get(m.Slot); existing != nil && existing.ID != m.ID {
			// Conflicting occupant; this expansion is not viable.
			return nil, nil
		}
		commit = append(commit, m)
	}
	if len(commit) == 0 {
		return nil, nil
	}
	return parent.CommitGroup(commit), nil
}

// filterForPartial narrows the slot shortlist to candidates compatible with
// the committed state. This is an efficiency filter; the hard-constraint
// engine remains the source of truth.
func (e *Engine) filterForPartial(st *requestState, parent *BundleState, slot Slot, shortlist []*Item) []*Item {
	// One-piece exclusivity: never expand top/mid/bottom over a one-piece.
	if parent.Has(SlotOnePiece) && (slot == SlotTop || slot == SlotMid || slot == SlotBottom) {
		return nil
	}

	required := e.strictGroupRequirement(st, parent, slot)
	catalogUsed := parent.CatalogCount() > 0

	out := make([]*Item, 0, len(shortlist))
	for _, it := range shortlist {
		if required != "" && it.GroupID != required {
			continue
		}
		if catalogUsed && it.Owner == OwnerCatalog {
			continue
		}
		out = append(out, it)
	}
	return out
}

// strictGroupRequirement returns the group id this slot must draw from, if a
// committed strict group spans it.
func (e *Engine) strictGroupRequirement(st *requestState, parent *BundleState, slot Slot) string {
	for _, it := range parent.Items() {
		if it.CohesionPolicy != CohesionStrict || !it.InGroup() {
			continue
		}
		for _, s := range st.rules.CoordKinds[it.CoordSetKind] {
			if s == slot {
				return it.GroupID
			}
		}
	}
	return ""
}

// checkState evaluates hard constraints against a state. FinalOnly
// constraints run only when final is set.
func (e *Engine) checkState(st *requestState, state *BundleState, final bool) *Violation {
	in := CheckInput{
		State:        state,
		Rules:        st.rules,
		Profile:      st.profile,
		Context:      st.reqCtx,
		AllowCatalog: st.allowCatalog,
	}
	for _, hc := range e.getConstraints() {
		if hc.FinalOnly() && !final {
			continue
		}
		if v := hc.Check(in); v != nil {
			return v
		}
	}
	return nil
}

// updateBestTerminal tracks the best coverage-complete state seen so far,
// for deadline degradation.
func (e *Engine) updateBestTerminal(st *requestState, tpl *Template, beam []*scoredState, best *scoredState) *scoredState {
	for _, s := range beam {
		if !coverageComplete(s.state, tpl) {
			continue
		}
		if e.checkState(st, s.state, true) != nil {
			continue
		}
		if best == nil || s.betterTerminal(best) {
			best = s
		}
	}
	return best
}

// selectTerminal picks the best final beam entry that satisfies every
// constraint including FinalOnly ones.
func (e *Engine) selectTerminal(st *requestState, tpl *Template, beam []*scoredState) *scoredState {
	var best *scoredState
	for _, s := range beam {
		if !coverageComplete(s.state, tpl) {
			continue
		}
		if e.checkState(st, s.state, true) != nil {
			continue
		}
		if best == nil || s.betterTerminal(best) {
			best = s
		}
	}
	return best
}

// coverageComplete reports whether every required template slot is filled.
func coverageComplete(state *BundleState, tpl *Template) bool {
	for _, slot := range tpl.Required {
		if !state.Has(slot) {
			return false
		}
	}
	return true
}

// deadlineResult degrades gracefully on expiry: the best terminal so far is
// returned with the partial marker, else a DEADLINE error.
func (e *Engine) deadlineResult(st *requestState, best *scoredState) (*scoredState, *Error) {
	if best != nil {
		st.logger.Warn().Msg("deadline expired, returning best-so-far terminal")
		partial := *best
		partial.partial = true
		return &partial, nil
	}
	return nil, &Error{
		Kind:           KindDeadline,
		RulesetVersion: st.rules.Version,
		msg:            "time budget exceeded before any terminal bundle",
	}
}

// noBundle reports pruning exhaustion with the dominant violation code and
// the slot where the last candidate was eliminated.
func (e *Engine) noBundle(st *requestState, slot Slot, prunes *pruneLog, lastBeam []*scoredState) *Error {
	v := prunes.dominant(slot)
	if v == nil {
		// No candidate was even expanded at this slot; derive the failure
		// from the best surviving parent's final-state violations.
		v = e.finalViolation(st, lastBeam)
	}
	if v == nil {
		v = &Violation{Code: "NO_CANDIDATES", Reason: "no candidates available for slot " + string(slot)}
	}
	return &Error{
		Kind:           KindNoBundle,
		Violation:      v,
		Slot:           slot,
		RulesetVersion: st.rules.Version,
		msg:            "hard constraints pruned all paths: " + v.Code,
	}
}

// finalViolation runs the full constraint set against surviving parents to
// surface the blocking violation (e.g. an incomplete strict co-ord).
func (e *Engine) finalViolation(st *requestState, beam []*scoredState) *Violation {
	for _, s := range beam {
		if v := e.checkState(st, s.state, true); v != nil {
			return v
		}
	}
	return nil
}

// expired reports whether the request deadline has passed.
func (st *requestState) expired() bool {
	select {
	case <-st.ctx.Done():
		return true
	default:
		return false
	}
}

// pruneLog counts hard-constraint violations per slot during beam search.
type pruneLog struct {
	bySlot map[Slot]map[string]*pruneEntry
}

type pruneEntry struct {
	count     int
	violation *Violation
}

func newPruneLog() *pruneLog {
	return &pruneLog{bySlot: make(map[Slot]map[string]*pruneEntry)}
}

func (p *pruneLog) record(slot Slot, v *Violation) {
	m := p.bySlot[slot]
	if m == nil {
		m = make(map[string]*pruneEntry)
		p.bySlot[slot] = m
	}
	entry := m[v.Code]
	if entry == nil {
		entry = &pruneEntry{violation: v}
		m[v.Code] = entry
	}
	entry.count++
}

// dominant returns the most frequent violation at a slot, ties broken by
// code for determinism.
func (p *pruneLog) dominant(slot Slot) *Violation {
	m := p.bySlot[slot]
	if len(m) == 0 {
		return nil
	}
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var best *pruneEntry
	for _, code := range codes {
		if best == nil || m[code].count > best.count {
			best = m[code]
		}
	}
	return best.violation
}
