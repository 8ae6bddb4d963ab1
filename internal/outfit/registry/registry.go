// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

// Package registry declares which attributes apply to which garment roles
// and validates items on ingress. The registry is immutable for the process
// lifetime; the engine assumes registry-validated items thereafter.
package registry

import (
	"fmt"
	"sort"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// Violation codes for ingress validation.
const (
	CodeUnknownRole        = "REGISTRY_UNKNOWN_ROLE"
	CodeSlotMismatch       = "REGISTRY_SLOT_MISMATCH"
	CodeFieldNotApplicable = "REGISTRY_FIELD_NOT_APPLICABLE"
	CodeBadValue           = "REGISTRY_BAD_VALUE"
	CodeGroupIncoherent    = "REGISTRY_GROUP_INCOHERENT"
	CodeUnknownTag         = "REGISTRY_UNKNOWN_TAG"
)

// Attribute field names, matching the item wire names.
const (
	FieldColor             = "color"
	FieldPattern           = "pattern"
	FieldPatternScale      = "pattern_scale"
	FieldMaterial          = "material"
	FieldStyleTags         = "style_tags"
	FieldFitProfile        = "fit_profile"
	FieldTopLengthClass    = "top_length_class"
	FieldBottomRiseClass   = "bottom_rise_class"
	FieldShoulderStructure = "shoulder_structure"
	FieldWaistEmphasis     = "waist_emphasis"
	FieldHasBeltLoops      = "has_belt_loops"
	FieldGroup             = "group_id"
	FieldLeatherFamily     = "leather_family"
	FieldMetalFamily       = "metal_family"
	FieldMetalFinish       = "metal_finish"
	FieldBagKind           = "bag_kind"
	FieldJewelryKind       = "jewelry_kind"
	FieldFootwearClass     = "footwear_class"
)

// RoleSpec declares a role's slot binding and its applicable fields beyond
// the core set (which applies to every role).
type RoleSpec struct {
	Slot   outfit.Slot
	Fields map[string]struct{}
}

// Registry is the immutable role and tag catalog.
type Registry struct {
	roles map[string]RoleSpec
	tags  map[string]struct{}
}

// New builds a registry from role specs and the allowed style tag set.
func New(roles map[string]RoleSpec, tags []string) *Registry {
	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[t] = struct{}{}
	}
	return &Registry{roles: roles, tags: tagSet}
}

// Roles returns the declared role names, sorted.
func (r *Registry) Roles() []string {
	out := make([]string, 0, len(r.roles))
	for name := range r.roles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SlotFor returns the slot a role is bound to.
func (r *Registry) SlotFor(role string) (outfit.Slot, bool) {
	spec, ok := r.roles[role]
	return spec.Slot, ok
}

// ApplicableFields returns the sorted attribute fields applicable to a
// role, core fields included. Unknown roles yield nil.
func (r *Registry) ApplicableFields(role string) []string {
	spec, ok := r.roles[role]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(coreFields)+len(spec.Fields))
	for f := range coreFields {
		out = append(out, f)
	}
	for f := range spec.Fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// applicable reports whether a field applies to the role spec.
func (spec RoleSpec) applicable(field string) bool {
	if _, core := coreFields[field]; core {
		return true
	}
	_, ok := spec.Fields[field]
	return ok
}

// coreFields apply to every role.
var coreFields = map[string]struct{}{
	FieldColor:        {},
	FieldPattern:      {},
	FieldPatternScale: {},
	FieldMaterial:     {},
	FieldStyleTags:    {},
}

// Validate checks an item against the registry. A nil return means the
// item is well formed; otherwise every problem found is reported.
func (r *Registry) Validate(it *outfit.Item) []outfit.Violation {
	var out []outfit.Violation

	spec, known := r.roles[it.Role]
	if !known {
		return []outfit.Violation{{
			Code:   CodeUnknownRole,
			Items:  []string{it.ID},
			Reason: fmt.Sprintf("role %q not declared", it.Role),
		}}
	}
	if it.Slot != spec.Slot {
		out = append(out, outfit.Violation{
			Code:   CodeSlotMismatch,
			Items:  []string{it.ID},
			Reason: fmt.Sprintf("role %q binds slot %s, item claims %s", it.Role, spec.Slot, it.Slot),
		})
	}

	out = append(out, r.checkCore(it)...)
	out = append(out, checkApplicability(it, spec)...)
	out = append(out, checkGroup(it)...)

	if len(out) == 0 {
		return nil
	}
	return out
}

func (r *Registry) checkCore(it *outfit.Item) []outfit.Violation {
	var out []outfit.Violation
	bad := func(reason string) {
		out = append(out, outfit.Violation{
			Code: CodeBadValue, Items: []string{it.ID}, Reason: reason,
		})
	}

	if it.Formality < 1 || it.Formality > 5 {
		bad(fmt.Sprintf("formality %d outside 1..5", it.Formality))
	}
	if len(it.Seasonality) == 0 {
		bad("seasonality empty")
	}
	for _, b := range it.Seasonality {
		if _, ok := outfit.ValidBands[b]; !ok {
			bad(fmt.Sprintf("unknown band %q", b))
		}
	}
	if it.Color != nil {
		if err := it.Color.Validate(); err != nil {
			bad("color: " + err.Error())
		}
	}
	if it.Pattern != "" {
		if _, ok := validPatterns[it.Pattern]; !ok {
			bad(fmt.Sprintf("unknown pattern %q", it.Pattern))
		}
	}
	if it.PatternScale != "" {
		if _, ok := validScales[it.PatternScale]; !ok {
			bad(fmt.Sprintf("unknown pattern scale %q", it.PatternScale))
		}
	}
	for field, c := range it.Confidence {
		if c < 0 || c > 1 {
			bad(fmt.Sprintf("confidence for %q outside [0, 1]", field))
		}
	}
	for _, tag := range it.StyleTags {
		if _, ok := r.tags[tag]; !ok {
			out = append(out, outfit.Violation{
				Code: CodeUnknownTag, Items: []string{it.ID},
				Reason: fmt.Sprintf("style tag %q not declared", tag),
			})
		}
	}
	return out
}

var validPatterns = map[outfit.Pattern]struct{}{
	outfit.PatternSolid: {}, outfit.PatternStripe: {}, outfit.PatternCheck: {},
	outfit.PatternPrint: {}, outfit.PatternTexture: {},
}

var validScales = map[outfit.PatternScale]struct{}{
	outfit.ScaleMicro: {}, outfit.ScaleSmall: {}, outfit.ScaleMedium: {},
	outfit.ScaleLarge: {},
}

// checkApplicability reports set fields the role does not declare.
func checkApplicability(it *outfit.Item, spec RoleSpec) []outfit.Violation {
	present := map[string]bool{
		FieldFitProfile:        it.FitProfile != "",
		FieldTopLengthClass:    it.TopLengthClass != "",
		FieldBottomRiseClass:   it.BottomRiseClass != "",
		FieldShoulderStructure: it.ShoulderStructure != "",
		FieldWaistEmphasis:     it.WaistEmphasis != "",
		FieldHasBeltLoops:      it.HasBeltLoops,
		FieldGroup:             it.GroupID != "",
		FieldLeatherFamily:     it.LeatherFamily != "",
		FieldMetalFamily:       it.MetalFamily != "",
		FieldMetalFinish:       it.MetalFinish != "",
		FieldBagKind:           it.BagKind != "",
		FieldJewelryKind:       it.JewelryKind != "",
		FieldFootwearClass:     it.FootwearClass != "",
	}

	fields := make([]string, 0, len(present))
	for f, set := range present {
		if set {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)

	var out []outfit.Violation
	for _, f := range fields {
		if !spec.applicable(f) {
			out = append(out, outfit.Violation{
				Code:   CodeFieldNotApplicable,
				Items:  []string{it.ID},
				Reason: fmt.Sprintf("field %q not applicable to role %q", f, it.Role),
			})
		}
	}
	return out
}

// checkGroup enforces the all-or-nothing co-ord group fields.
func checkGroup(it *outfit.Item) []outfit.Violation {
	if it.GroupID == "" {
		if it.SetRole != "" || it.CoordSetKind != "" || it.CohesionPolicy != "" {
			return []outfit.Violation{{
				Code:   CodeGroupIncoherent,
				Items:  []string{it.ID},
				Reason: "co-ord fields set without group_id",
			}}
		}
		return nil
	}
	if it.SetRole == "" || it.CoordSetKind == "" || it.CohesionPolicy == "" {
		return []outfit.Violation{{
			Code:   CodeGroupIncoherent,
			Items:  []string{it.ID},
			Reason: "group_id requires set_role, coord_set_kind and set_cohesion_policy",
		}}
	}
	switch it.CohesionPolicy {
	case outfit.CohesionStrict, outfit.CohesionPreferStrict, outfit.CohesionLoose:
		return nil
	default:
		return []outfit.Violation{{
			Code:   CodeGroupIncoherent,
			Items:  []string{it.ID},
			Reason: fmt.Sprintf("unknown cohesion policy %q", it.CohesionPolicy),
		}}
	}
}

// ValidateGroup checks cross-member coherence for one co-ord group: every
// member agrees on kind and policy, and set roles are distinct.
func ValidateGroup(members []*outfit.Item) []outfit.Violation {
	if len(members) < 2 {
		return nil
	}

	var out []outfit.Violation
	first := members[0]
	roles := make(map[string]string, len(members))
	for _, m := range members {
		if m.CoordSetKind != first.CoordSetKind || m.CohesionPolicy != first.CohesionPolicy {
			out = append(out, outfit.Violation{
				Code:   CodeGroupIncoherent,
				Items:  []string{first.ID, m.ID},
				Reason: fmt.Sprintf("group %s members disagree on kind or policy", m.GroupID),
			})
		}
		if prev, dup := roles[m.SetRole]; dup {
			out = append(out, outfit.Violation{
				Code:   CodeGroupIncoherent,
				Items:  []string{prev, m.ID},
				Reason: fmt.Sprintf("group %s has duplicate set role %q", m.GroupID, m.SetRole),
			})
		}
		roles[m.SetRole] = m.ID
	}
	return out
}
