// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package constraints

import (
	"fmt"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// coordSlots resolves the slot set a strict co-ord group must cover,
// intersected with the template. Unknown kinds fall back to the slots the
// group's committed members actually occupy.
func coordSlots(in outfit.CheckInput, kind string) []outfit.Slot {
	slots, ok := in.Rules.CoordKinds[kind]
	if !ok {
		return nil
	}
	tpl := in.State.Template()
	var out []outfit.Slot
	for _, s := range slots {
		if tpl == nil || tpl.HasSlot(s) {
			out = append(out, s)
		}
	}
	return out
}

// StrictCoordIntegrity prunes partials that can no longer complete a strict
// co-ord set: a coord slot holding an item from a different group, or a
// coord slot already skipped. Missing members are not a violation here; a
// later step can still commit them.
type StrictCoordIntegrity struct{}

func (StrictCoordIntegrity) Name() string    { return "strict_coord_integrity" }
func (StrictCoordIntegrity) FinalOnly() bool { return false }

func (StrictCoordIntegrity) Check(in outfit.CheckInput) *outfit.Violation {
	for _, it := range in.State.Items() {
		if it.CohesionPolicy != outfit.CohesionStrict || !it.InGroup() {
			continue
		}
		for _, slot := range coordSlots(in, it.CoordSetKind) {
			if in.State.Skipped(slot) {
				return &outfit.Violation{
					Code:   CodeStrictCoord,
					Items:  []string{it.ID},
					Reason: fmt.Sprintf("coord slot %s skipped under strict set %s", slot, it.GroupID),
				}
			}
			occupant := in.State.Get(slot)
			if occupant != nil && occupant.GroupID != it.GroupID {
				return &outfit.Violation{
					Code:   CodeStrictCoord,
					Items:  []string{it.ID, occupant.ID},
					Reason: fmt.Sprintf("coord slot %s held outside strict set %s", slot, it.GroupID),
				}
			}
		}
	}
	return nil
}

// StrictCoordCompletion verifies on terminal states that every strict
// co-ord set is complete: all coord slots the template carries hold members
// of the same group.
type StrictCoordCompletion struct{}

func (StrictCoordCompletion) Name() string    { return "strict_coord_completion" }
func (StrictCoordCompletion) FinalOnly() bool { return true }

func (StrictCoordCompletion) Check(in outfit.CheckInput) *outfit.Violation {
	for _, it := range in.State.Items() {
		if it.CohesionPolicy != outfit.CohesionStrict || !it.InGroup() {
			continue
		}
		for _, slot := range coordSlots(in, it.CoordSetKind) {
			occupant := in.State.Get(slot)
			if occupant == nil {
				return &outfit.Violation{
					Code:   CodeStrictCoord,
					Items:  []string{it.ID},
					Reason: fmt.Sprintf("strict set %s missing member in %s", it.GroupID, slot),
				}
			}
		}
	}
	return nil
}
