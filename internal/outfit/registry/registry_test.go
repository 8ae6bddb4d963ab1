// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package registry

import (
	"testing"

	"github.com/wardrobelabs/ensemble/internal/outfit"
	"github.com/wardrobelabs/ensemble/internal/outfit/color"
)

func validShirt() *outfit.Item {
	c := color.New(70, 30, 220)
	return &outfit.Item{
		ID:          "i1",
		Role:        "shirt",
		Slot:        outfit.SlotTop,
		Formality:   3,
		Seasonality: []outfit.Band{outfit.BandMild, outfit.BandWarm},
		Color:       &c,
		Pattern:     outfit.PatternSolid,
		StyleTags:   []string{"classic"},
		FitProfile:  outfit.FitRegular,
	}
}

func TestValidate_CleanItem(t *testing.T) {
	t.Parallel()

	if vs := Default().Validate(validShirt()); vs != nil {
		t.Errorf("expected clean item, got %+v", vs)
	}
}

func TestValidate_UnknownRole(t *testing.T) {
	t.Parallel()

	it := validShirt()
	it.Role = "spacesuit"

	vs := Default().Validate(it)
	if len(vs) != 1 || vs[0].Code != CodeUnknownRole {
		t.Fatalf("expected single %s, got %+v", CodeUnknownRole, vs)
	}
}

func TestValidate_SlotMismatch(t *testing.T) {
	t.Parallel()

	it := validShirt()
	it.Slot = outfit.SlotBottom

	vs := Default().Validate(it)
	if !hasCode(vs, CodeSlotMismatch) {
		t.Errorf("expected %s, got %+v", CodeSlotMismatch, vs)
	}
}

func TestValidate_BadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*outfit.Item)
		code   string
	}{
		{"formality out of range", func(it *outfit.Item) { it.Formality = 6 }, CodeBadValue},
		{"empty seasonality", func(it *outfit.Item) { it.Seasonality = nil }, CodeBadValue},
		{"unknown band", func(it *outfit.Item) { it.Seasonality = []outfit.Band{"arctic"} }, CodeBadValue},
		{"color out of bounds", func(it *outfit.Item) { it.Color.L = 140 }, CodeBadValue},
		{"unknown pattern", func(it *outfit.Item) { it.Pattern = "paisley_swirl" }, CodeBadValue},
		{"confidence out of range", func(it *outfit.Item) {
			it.Confidence = map[string]float64{"color": 1.4}
		}, CodeBadValue},
		{"undeclared tag", func(it *outfit.Item) { it.StyleTags = []string{"extraterrestrial"} }, CodeUnknownTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			it := validShirt()
			tt.mutate(it)
			if vs := Default().Validate(it); !hasCode(vs, tt.code) {
				t.Errorf("expected %s, got %+v", tt.code, vs)
			}
		})
	}
}

func TestValidate_FieldApplicability(t *testing.T) {
	t.Parallel()

	// A shirt cannot carry a bottom rise class.
	it := validShirt()
	it.BottomRiseClass = "high_rise"

	vs := Default().Validate(it)
	if !hasCode(vs, CodeFieldNotApplicable) {
		t.Errorf("expected %s, got %+v", CodeFieldNotApplicable, vs)
	}
}

func TestValidate_GroupFields(t *testing.T) {
	t.Parallel()

	incomplete := validShirt()
	incomplete.GroupID = "g1" // missing set_role, kind, policy

	vs := Default().Validate(incomplete)
	if !hasCode(vs, CodeGroupIncoherent) {
		t.Errorf("expected %s for incomplete group fields, got %+v", CodeGroupIncoherent, vs)
	}

	orphan := validShirt()
	orphan.SetRole = "jacket" // set_role without group_id
	vs = Default().Validate(orphan)
	if !hasCode(vs, CodeGroupIncoherent) {
		t.Errorf("expected %s for orphan co-ord field, got %+v", CodeGroupIncoherent, vs)
	}
}

func TestValidateGroup(t *testing.T) {
	t.Parallel()

	jacket := &outfit.Item{ID: "j1", GroupID: "g1", SetRole: "jacket",
		CoordSetKind: "suit", CohesionPolicy: outfit.CohesionStrict}
	trousers := &outfit.Item{ID: "p1", GroupID: "g1", SetRole: "trousers",
		CoordSetKind: "suit", CohesionPolicy: outfit.CohesionStrict}

	if vs := ValidateGroup([]*outfit.Item{jacket, trousers}); vs != nil {
		t.Errorf("coherent group should pass, got %+v", vs)
	}

	loose := *trousers
	loose.CohesionPolicy = outfit.CohesionLoose
	if vs := ValidateGroup([]*outfit.Item{jacket, &loose}); !hasCode(vs, CodeGroupIncoherent) {
		t.Errorf("policy disagreement should violate, got %+v", vs)
	}

	dup := *trousers
	dup.ID = "p2"
	dup.SetRole = "jacket"
	if vs := ValidateGroup([]*outfit.Item{jacket, &dup}); !hasCode(vs, CodeGroupIncoherent) {
		t.Errorf("duplicate set role should violate, got %+v", vs)
	}
}

func TestApplicableFields(t *testing.T) {
	t.Parallel()

	reg := Default()

	fields := reg.ApplicableFields("trousers")
	if fields == nil {
		t.Fatal("expected fields for trousers")
	}
	if !contains(fields, FieldBottomRiseClass) || !contains(fields, FieldColor) {
		t.Errorf("trousers should carry core and lower fields, got %v", fields)
	}
	if contains(fields, FieldJewelryKind) {
		t.Errorf("trousers should not carry jewelry fields, got %v", fields)
	}

	if reg.ApplicableFields("spacesuit") != nil {
		t.Error("unknown role should yield nil")
	}
}

func TestSlotFor(t *testing.T) {
	t.Parallel()

	reg := Default()
	if slot, ok := reg.SlotFor("dress"); !ok || slot != outfit.SlotOnePiece {
		t.Errorf("dress should bind one_piece, got %v/%v", slot, ok)
	}
	if _, ok := reg.SlotFor("spacesuit"); ok {
		t.Error("unknown role should not resolve")
	}
}

func hasCode(vs []outfit.Violation, code string) bool {
	for _, v := range vs {
		if v.Code == code {
			return true
		}
	}
	return false
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
