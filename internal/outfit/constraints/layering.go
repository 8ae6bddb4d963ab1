// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package constraints

import (
	"fmt"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// LayeringOrder enforces the rule-set layering DAG: a layer slot may only
// be worn when every under-layer the template carries is still fillable.
// The monotone trigger is a skipped under-layer beneath a committed
// over-layer; a pending under-layer is fine because a later step can fill
// it, but a skip never reverts. Terminal states have every template slot
// committed or skipped, so the same test also proves completeness at the
// end of the search.
type LayeringOrder struct{}

func (LayeringOrder) Name() string    { return "layering_order" }
func (LayeringOrder) FinalOnly() bool { return false }

func (LayeringOrder) Check(in outfit.CheckInput) *outfit.Violation {
	tpl := in.State.Template()
	if tpl == nil {
		return nil
	}

	for _, over := range in.State.Slots() {
		if !in.Rules.IsLayerSlot(over) {
			continue
		}
		for _, under := range layerSlots(in.Rules) {
			if under == over || !tpl.HasSlot(under) {
				continue
			}
			if !in.Rules.LayerReachable(under, over) {
				continue
			}
			if in.State.Skipped(under) {
				item := in.State.Get(over)
				return &outfit.Violation{
					Code:   CodeLayerOrder,
					Items:  []string{item.ID},
					Reason: fmt.Sprintf("%s committed over skipped %s", over, under),
				}
			}
		}
	}
	return nil
}

// layerSlots enumerates the slots participating in the layering graph,
// in fixed slot order.
func layerSlots(rs *outfit.RuleSet) []outfit.Slot {
	all := []outfit.Slot{
		outfit.SlotTop, outfit.SlotMid, outfit.SlotOuter,
		outfit.SlotBottom, outfit.SlotOnePiece,
	}
	var out []outfit.Slot
	for _, s := range all {
		if rs.IsLayerSlot(s) {
			out = append(out, s)
		}
	}
	return out
}
