// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package constraints

import (
	"fmt"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// Violation codes.
const (
	CodeLayerOrder        = "LAYER_ORDER"
	CodeOnePieceExclusive = "ONE_PIECE_EXCLUSIVE"
	CodeStrictCoord       = "STRICT_COORD_INCOMPLETE"
	CodeFormalityRange    = "FORMALITY_RANGE"
	CodeTempUnsafe        = "TEMP_UNSAFE"
	CodeCatalogCap        = "CATALOG_CAP"
	CodeBeltRequired      = "BELT_REQUIRED"
	CodeCoverage          = "COVERAGE"
)

// DefaultConstraints returns the full constraint set in registration order.
// Cheap checks come first so pruning pays for itself.
func DefaultConstraints() []outfit.HardConstraint {
	return []outfit.HardConstraint{
		CatalogCap{},
		OnePieceExclusive{},
		FormalityBounds{},
		TemperatureSafety{},
		LayeringOrder{},
		StrictCoordIntegrity{},
		StrictCoordCompletion{},
		BeltGate{},
		Coverage{},
	}
}

// OnePieceExclusive forbids combining a one-piece with separates. A dress
// occupies the top, mid, and bottom visual zones at once.
type OnePieceExclusive struct{}

func (OnePieceExclusive) Name() string    { return "one_piece_exclusive" }
func (OnePieceExclusive) FinalOnly() bool { return false }

func (OnePieceExclusive) Check(in outfit.CheckInput) *outfit.Violation {
	onePiece := in.State.Get(outfit.SlotOnePiece)
	if onePiece == nil {
		return nil
	}
	for _, slot := range []outfit.Slot{outfit.SlotTop, outfit.SlotMid, outfit.SlotBottom} {
		if it := in.State.Get(slot); it != nil {
			return &outfit.Violation{
				Code:   CodeOnePieceExclusive,
				Items:  []string{onePiece.ID, it.ID},
				Reason: fmt.Sprintf("one-piece excludes %s", slot),
			}
		}
	}
	return nil
}

// FormalityBounds requires every item's formality to sit inside the
// rule-set tolerance window around the occasion target.
type FormalityBounds struct{}

func (FormalityBounds) Name() string    { return "formality_bounds" }
func (FormalityBounds) FinalOnly() bool { return false }

func (FormalityBounds) Check(in outfit.CheckInput) *outfit.Violation {
	target := in.Context.Dressiness(in.Profile)
	lo := target - in.Rules.FormalityTolLo
	hi := target + in.Rules.FormalityTolHi

	for _, it := range in.State.Items() {
		if it.Formality < lo || it.Formality > hi {
			return &outfit.Violation{
				Code:   CodeFormalityRange,
				Items:  []string{it.ID},
				Reason: fmt.Sprintf("formality %d outside [%d, %d]", it.Formality, lo, hi),
			}
		}
	}
	return nil
}

// TemperatureSafety rejects items whose seasonality excludes the requested
// band, unless the rule set allows off-season wear.
type TemperatureSafety struct{}

func (TemperatureSafety) Name() string    { return "temperature_safety" }
func (TemperatureSafety) FinalOnly() bool { return false }

func (TemperatureSafety) Check(in outfit.CheckInput) *outfit.Violation {
	if in.Rules.AllowOffSeason {
		return nil
	}
	band := in.Context.TemperatureBand
	for _, it := range in.State.Items() {
		if !it.SuitsBand(band) {
			return &outfit.Violation{
				Code:   CodeTempUnsafe,
				Items:  []string{it.ID},
				Reason: fmt.Sprintf("seasonality excludes %s", band),
			}
		}
	}
	return nil
}

// CatalogCap limits catalog items to one when catalog fill-in is allowed
// and zero when it is not.
type CatalogCap struct{}

func (CatalogCap) Name() string    { return "catalog_cap" }
func (CatalogCap) FinalOnly() bool { return false }

func (CatalogCap) Check(in outfit.CheckInput) *outfit.Violation {
	limit := 0
	if in.AllowCatalog {
		limit = 1
	}
	if in.State.CatalogCount() <= limit {
		return nil
	}

	var offenders []string
	for _, it := range in.State.Items() {
		if it.Owner == outfit.OwnerCatalog {
			offenders = append(offenders, it.ID)
		}
	}
	return &outfit.Violation{
		Code:   CodeCatalogCap,
		Items:  offenders,
		Reason: fmt.Sprintf("%d catalog items, cap %d", len(offenders), limit),
	}
}

// BeltGate requires a belt when the committed bottom has belt loops and the
// occasion dressiness reaches the template's gate level. Judged only on
// complete bundles; the belt slot may fill after the bottom.
type BeltGate struct{}

func (BeltGate) Name() string    { return "belt_gate" }
func (BeltGate) FinalOnly() bool { return true }

func (BeltGate) Check(in outfit.CheckInput) *outfit.Violation {
	tpl := in.State.Template()
	if tpl == nil || tpl.BeltGate <= 0 {
		return nil
	}
	if in.Context.Dressiness(in.Profile) < tpl.BeltGate {
		return nil
	}
	bottom := in.State.Get(outfit.SlotBottom)
	if bottom == nil || !bottom.HasBeltLoops {
		return nil
	}
	if in.State.Has(outfit.SlotBelt) {
		return nil
	}
	return &outfit.Violation{
		Code:   CodeBeltRequired,
		Items:  []string{bottom.ID},
		Reason: "belt loops present and dressiness at gate level, no belt",
	}
}

// Coverage requires every mandatory template slot to be filled. Judged only
// on complete bundles.
type Coverage struct{}

func (Coverage) Name() string    { return "coverage" }
func (Coverage) FinalOnly() bool { return true }

func (Coverage) Check(in outfit.CheckInput) *outfit.Violation {
	tpl := in.State.Template()
	if tpl == nil {
		return nil
	}
	var missing []outfit.Slot
	for _, slot := range tpl.Required {
		if !in.State.Has(slot) {
			missing = append(missing, slot)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &outfit.Violation{
		Code:   CodeCoverage,
		Reason: fmt.Sprintf("required slots unfilled: %v", missing),
	}
}
