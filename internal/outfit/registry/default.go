// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package registry

import "github.com/wardrobelabs/ensemble/internal/outfit"

// Field bundles shared by role families.
var (
	upperFields = set(FieldFitProfile, FieldTopLengthClass, FieldShoulderStructure, FieldGroup)
	lowerFields = set(FieldFitProfile, FieldBottomRiseClass, FieldWaistEmphasis, FieldHasBeltLoops, FieldGroup)
	wholeFields = set(FieldFitProfile, FieldTopLengthClass, FieldShoulderStructure, FieldWaistEmphasis, FieldGroup)
)

func set(fields ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		m[f] = struct{}{}
	}
	return m
}

// Default returns the built-in role and tag catalog.
func Default() *Registry {
	roles := map[string]RoleSpec{
		// Tops
		"shirt":    {Slot: outfit.SlotTop, Fields: upperFields},
		"tshirt":   {Slot: outfit.SlotTop, Fields: upperFields},
		"blouse":   {Slot: outfit.SlotTop, Fields: upperFields},
		"knit_top": {Slot: outfit.SlotTop, Fields: upperFields},

		// Mid layers
		"sweater":  {Slot: outfit.SlotMid, Fields: upperFields},
		"cardigan": {Slot: outfit.SlotMid, Fields: upperFields},
		"jacket":   {Slot: outfit.SlotMid, Fields: upperFields},
		"vest":     {Slot: outfit.SlotMid, Fields: upperFields},

		// Outers
		"coat":     {Slot: outfit.SlotOuter, Fields: upperFields},
		"parka":    {Slot: outfit.SlotOuter, Fields: upperFields},
		"blazer":   {Slot: outfit.SlotOuter, Fields: upperFields},
		"raincoat": {Slot: outfit.SlotOuter, Fields: upperFields},

		// Bottoms
		"trousers": {Slot: outfit.SlotBottom, Fields: lowerFields},
		"jeans":    {Slot: outfit.SlotBottom, Fields: lowerFields},
		"skirt":    {Slot: outfit.SlotBottom, Fields: lowerFields},
		"shorts":   {Slot: outfit.SlotBottom, Fields: lowerFields},

		// One-pieces
		"dress":    {Slot: outfit.SlotOnePiece, Fields: wholeFields},
		"jumpsuit": {Slot: outfit.SlotOnePiece, Fields: wholeFields},

		// Footwear
		"shoes":    {Slot: outfit.SlotFootwear, Fields: set(FieldFootwearClass, FieldLeatherFamily)},
		"sneakers": {Slot: outfit.SlotFootwear, Fields: set(FieldFootwearClass, FieldLeatherFamily)},
		"boots":    {Slot: outfit.SlotFootwear, Fields: set(FieldFootwearClass, FieldLeatherFamily)},

		// Accessories
		"bag":      {Slot: outfit.SlotBag, Fields: set(FieldBagKind, FieldLeatherFamily, FieldMetalFamily, FieldMetalFinish)},
		"belt":     {Slot: outfit.SlotBelt, Fields: set(FieldLeatherFamily, FieldMetalFamily, FieldMetalFinish)},
		"necklace": {Slot: outfit.SlotJewelry, Fields: set(FieldJewelryKind, FieldMetalFamily, FieldMetalFinish)},
		"watch":    {Slot: outfit.SlotJewelry, Fields: set(FieldJewelryKind, FieldMetalFamily, FieldMetalFinish, FieldLeatherFamily)},
		"hat":      {Slot: outfit.SlotHeadwear, Fields: set(FieldMetalFamily, FieldMetalFinish)},
		"socks":    {Slot: outfit.SlotHosiery, Fields: nil},
		"tights":   {Slot: outfit.SlotHosiery, Fields: nil},
	}

	tags := []string{
		"classic", "minimal", "sporty", "streetwear", "preppy", "bohemian",
		"romantic", "edgy", "business", "smart_casual", "vintage", "neon",
		"formal", "outdoor", "loungewear",
	}

	return New(roles, tags)
}
