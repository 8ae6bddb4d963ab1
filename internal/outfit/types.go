// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package outfit

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/wardrobelabs/ensemble/internal/outfit/color"
)

// Slot identifies a position in an outfit. Roles are slot-typed: every role
// in the attribute registry maps to exactly one slot.
type Slot string

// Slot classes recognized by the layering graph and templates.
const (
	SlotTop      Slot = "top"
	SlotMid      Slot = "mid"
	SlotOuter    Slot = "outer"
	SlotBottom   Slot = "bottom"
	SlotOnePiece Slot = "one_piece"
	SlotFootwear Slot = "footwear"
	SlotBag      Slot = "bag"
	SlotBelt     Slot = "belt"
	SlotJewelry  Slot = "jewelry"
	SlotHeadwear Slot = "headwear"
	SlotHosiery  Slot = "hosiery"
)

// NearFaceSlots are the slots considered for skin synergy scoring.
var NearFaceSlots = map[Slot]struct{}{
	SlotTop:      {},
	SlotOuter:    {},
	SlotHeadwear: {},
	SlotJewelry:  {},
}

// Owner identifies where an item lives.
type Owner int

const (
	// OwnerWardrobe is an item the user owns.
	OwnerWardrobe Owner = iota
	// OwnerCatalog is a global catalog item the user does not own.
	OwnerCatalog
)

// String returns a human-readable owner name.
func (o Owner) String() string {
	switch o {
	case OwnerWardrobe:
		return "wardrobe"
	case OwnerCatalog:
		return "catalog"
	default:
		return "unknown"
	}
}

// Rank orders owners for candidate merging: wardrobe before catalog.
func (o Owner) Rank() int {
	if o == OwnerWardrobe {
		return 0
	}
	return 1
}

// Band is a temperature band for seasonality matching.
type Band string

// Temperature bands, coldest to hottest.
const (
	BandCold Band = "cold"
	BandCool Band = "cool"
	BandMild Band = "mild"
	BandWarm Band = "warm"
	BandHot  Band = "hot"
)

// ValidBands is the set of recognized temperature bands.
var ValidBands = map[Band]struct{}{
	BandCold: {}, BandCool: {}, BandMild: {}, BandWarm: {}, BandHot: {},
}

// Pattern describes a surface pattern kind.
type Pattern string

// Common pattern kinds. PatternSolid is the absence of a pattern for
// pattern-mix purposes.
const (
	PatternSolid   Pattern = "solid"
	PatternStripe  Pattern = "stripe"
	PatternCheck   Pattern = "check"
	PatternPrint   Pattern = "print"
	PatternTexture Pattern = "texture"
)

// PatternScale is the visual scale of a pattern.
type PatternScale string

// Pattern scales, smallest to largest.
const (
	ScaleMicro  PatternScale = "micro"
	ScaleSmall  PatternScale = "small"
	ScaleMedium PatternScale = "medium"
	ScaleLarge  PatternScale = "large"
)

// FitProfile is the silhouette volume of a garment.
type FitProfile string

// Fit profiles, most to least fitted.
const (
	FitSlim      FitProfile = "slim"
	FitRegular   FitProfile = "regular"
	FitRelaxed   FitProfile = "relaxed"
	FitOversized FitProfile = "oversized"
)

// ShoulderStructure describes garment shoulder construction.
type ShoulderStructure string

// Shoulder structures.
const (
	ShoulderStructured ShoulderStructure = "structured"
	ShoulderSoft       ShoulderStructure = "soft"
	ShoulderNone       ShoulderStructure = "none"
)

// CohesionPolicy governs breaking a coordinated set.
type CohesionPolicy string

// Cohesion policies.
const (
	CohesionStrict       CohesionPolicy = "strict"
	CohesionPreferStrict CohesionPolicy = "prefer_strict"
	CohesionLoose        CohesionPolicy = "loose"
)

// Item is a sparse attribute bag describing one garment or accessory.
// Which attributes may be present is declared per role by the registry;
// the engine assumes registry-validated items.
type Item struct {
	// ID is the unique item identifier.
	ID string `json:"item_id"`

	// Owner says whether the item is wardrobe or catalog.
	Owner Owner `json:"owner"`

	// Role is the garment kind (shirt, trousers, dress, ...).
	Role string `json:"role"`

	// Slot is the slot class the role maps to.
	Slot Slot `json:"slot"`

	// Formality is the dressiness level, 1 (casual) to 5 (formal).
	Formality int `json:"formality"`

	// Seasonality is the non-empty set of temperature bands the item suits.
	Seasonality []Band `json:"seasonality"`

	// Color is the dominant color; nil when the pattern carries color.
	Color *color.LCh `json:"color,omitempty"`

	// Pattern and PatternScale describe surface patterning.
	Pattern      Pattern      `json:"pattern,omitempty"`
	PatternScale PatternScale `json:"pattern_scale,omitempty"`

	// Material is the primary material name.
	Material string `json:"material,omitempty"`

	// StyleTags are registry-declared style descriptors.
	StyleTags []string `json:"style_tags,omitempty"`

	// Fit attributes.
	FitProfile        FitProfile        `json:"fit_profile,omitempty"`
	TopLengthClass    string            `json:"top_length_class,omitempty"`
	BottomRiseClass   string            `json:"bottom_rise_class,omitempty"`
	ShoulderStructure ShoulderStructure `json:"shoulder_structure,omitempty"`
	WaistEmphasis     string            `json:"waist_emphasis,omitempty"`
	HasBeltLoops      bool              `json:"has_belt_loops,omitempty"`

	// Co-ord group attributes. When GroupID is set, SetRole, CoordSetKind
	// and CohesionPolicy must all be set and consistent across the group.
	GroupID        string         `json:"group_id,omitempty"`
	SetRole        string         `json:"set_role,omitempty"`
	CoordSetKind   string         `json:"coord_set_kind,omitempty"`
	CohesionPolicy CohesionPolicy `json:"set_cohesion_policy,omitempty"`

	// Accessory attributes.
	LeatherFamily string `json:"leather_family,omitempty"`
	MetalFamily   string `json:"metal_family,omitempty"`
	MetalFinish   string `json:"metal_finish,omitempty"`
	BagKind       string `json:"bag_kind,omitempty"`
	JewelryKind   string `json:"jewelry_kind,omitempty"`
	FootwearClass string `json:"footwear_class,omitempty"`

	// Confidence holds per-attribute inference confidence in [0, 1].
	// Attributes absent from the map are asserted and carry confidence 1.0.
	Confidence map[string]float64 `json:"confidence,omitempty"`
}

// AttrConfidence returns the confidence for a named attribute.
// Asserted attributes (absent from the map) have confidence 1.0.
func (it *Item) AttrConfidence(field string) float64 {
	if it.Confidence == nil {
		return 1.0
	}
	if c, ok := it.Confidence[field]; ok {
		return c
	}
	return 1.0
}

// MinConfidence returns the lowest confidence across the item's inferred
// attributes, or 1.0 when everything is asserted.
func (it *Item) MinConfidence() float64 {
	minConf := 1.0
	for _, c := range it.Confidence {
		if c < minConf {
			minConf = c
		}
	}
	return minConf
}

// SuitsBand reports whether the item's seasonality covers the band.
func (it *Item) SuitsBand(band Band) bool {
	for _, b := range it.Seasonality {
		if b == band {
			return true
		}
	}
	return false
}

// InGroup reports whether the item belongs to a coordinated set.
func (it *Item) InGroup() bool {
	return it.GroupID != ""
}

// Undertone classifies skin undertone for synergy scoring.
type Undertone string

// Undertones.
const (
	UndertoneWarm    Undertone = "warm"
	UndertoneCool    Undertone = "cool"
	UndertoneNeutral Undertone = "neutral"
)

// SynergyStyle selects the preferred near-face contrast behavior.
type SynergyStyle string

// Synergy styles. SynergyAuto picks contrast or harmonize by undertone.
const (
	SynergyContrast  SynergyStyle = "contrast"
	SynergyHarmonize SynergyStyle = "harmonize"
	SynergyAuto      SynergyStyle = "auto"
)

// AppearanceSignature carries the user's declared coloring.
type AppearanceSignature struct {
	SkinLCh      color.LCh    `json:"skin_lch" koanf:"skin_lch"`
	Undertone    Undertone    `json:"undertone" koanf:"undertone"`
	HairLCh      *color.LCh   `json:"hair_lch,omitempty" koanf:"hair_lch"`
	EyeLCh       *color.LCh   `json:"eye_lch,omitempty" koanf:"eye_lch"`
	SynergyStyle SynergyStyle `json:"synergy_style" koanf:"synergy_style"`
}

// TorsoLegRatio classifies body proportions.
type TorsoLegRatio string

// Torso/leg ratios.
const (
	RatioLongTorso TorsoLegRatio = "long_torso"
	RatioBalanced  TorsoLegRatio = "balanced"
	RatioLongLegs  TorsoLegRatio = "long_legs"
)

// HeightClass classifies overall height.
type HeightClass string

// Height classes.
const (
	HeightPetite  HeightClass = "petite"
	HeightAverage HeightClass = "average"
	HeightTall    HeightClass = "tall"
)

// BodySignature carries the user's declared body proportions.
type BodySignature struct {
	HeightClass     HeightClass   `json:"height_class" koanf:"height_class"`
	TorsoLegRatio   TorsoLegRatio `json:"torso_leg_ratio" koanf:"torso_leg_ratio"`
	WaistDefinition string        `json:"waist_definition,omitempty" koanf:"waist_definition"`
	FitPreference   FitProfile    `json:"fit_preference,omitempty" koanf:"fit_preference"`
}

// Profile is the user's declared styling profile. The appearance and body
// signatures are optional; when absent the dependent score components fall
// back to a neutral 0.5.
type Profile struct {
	UserID             string               `json:"user_id" validate:"required"`
	BaselineDressiness int                  `json:"baseline_dressiness" validate:"dressiness"`
	DefaultOccasion    string               `json:"default_occasion"`
	StyleSignature     []string             `json:"style_signature,omitempty"`
	ForbiddenTags      []string             `json:"forbidden_tags,omitempty"`
	PreferredTags      []string             `json:"preferred_tags,omitempty"`
	Appearance         *AppearanceSignature `json:"appearance_signature,omitempty"`
	Body               *BodySignature       `json:"body_signature,omitempty"`
}

// ForbidsTag reports whether the profile guardrails forbid a style tag.
func (p *Profile) ForbidsTag(tag string) bool {
	for _, t := range p.ForbiddenTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Context is the occasion context a bundle is generated for.
type Context struct {
	// Occasion names the event kind (work_office, casual_day, ...).
	Occasion string `json:"occasion" validate:"required"`

	// TargetDressiness overrides the profile baseline when non-zero.
	TargetDressiness int `json:"target_dressiness" validate:"omitempty,dressiness"`

	// TemperatureBand is the expected weather band.
	TemperatureBand Band `json:"temperature_band" validate:"required,temp_band"`

	// EventTags are optional social/event descriptors.
	EventTags []string `json:"event_tags,omitempty"`
}

// Dressiness resolves the effective dressiness target against the profile.
func (c *Context) Dressiness(p *Profile) int {
	if c.TargetDressiness != 0 {
		return c.TargetDressiness
	}
	return p.BaselineDressiness
}

// BundleSlot is one committed (slot, item) pair in a bundle.
type BundleSlot struct {
	Slot   Slot   `json:"slot"`
	ItemID string `json:"item_id"`
	Owner  Owner  `json:"owner"`
}

// ComponentScore is one soft component's contribution to a bundle score.
type ComponentScore struct {
	// Score is the raw component score in [0, 1].
	Score float64 `json:"score"`

	// Weight is the normalized weight applied at aggregation.
	Weight float64 `json:"weight"`

	// Confidence is the minimum input confidence the component saw.
	Confidence float64 `json:"confidence"`

	// Explanation is a short human-readable tag for the score.
	Explanation string `json:"explanation,omitempty"`
}

// Bundle is a complete outfit returned by the engine. Context is the
// occasion context the bundle was generated under, kept so explanations
// re-run against the same inputs.
type Bundle struct {
	ID              string                    `json:"bundle_id"`
	Slots           []BundleSlot              `json:"slots"`
	Score           float64                   `json:"score"`
	ComponentScores map[string]ComponentScore `json:"component_scores"`
	Explanations    []string                  `json:"explanations,omitempty"`
	RulesetVersion  string                    `json:"ruleset_version"`
	TemplateID      string                    `json:"template_id"`
	Context         Context                   `json:"context"`
	TieBreak        string                    `json:"tie_break"`
	Partial         bool                      `json:"partial,omitempty"`
	GeneratedAt     time.Time                 `json:"generated_at"`
}

// Violation reports a hard-constraint failure.
type Violation struct {
	// Code identifies the violated constraint (e.g. STRICT_COORD_INCOMPLETE).
	Code string `json:"code"`

	// Items lists the offending item ids.
	Items []string `json:"items,omitempty"`

	// Reason is a short human-readable explanation.
	Reason string `json:"reason"`
}

// BundleState is a partial bundle under construction during beam search.
// States are immutable; Commit returns a copy.
type BundleState struct {
	template *Template
	slots    map[Slot]*Item
	order    []Slot
	skipped  map[Slot]struct{}
}

// NewBundleState returns an empty partial bundle for a template.
func NewBundleState(tpl *Template) *BundleState {
	return &BundleState{
		template: tpl,
		slots:    make(map[Slot]*Item),
		skipped:  make(map[Slot]struct{}),
	}
}

// Template returns the template the state is being built for.
func (s *BundleState) Template() *Template {
	return s.template
}

// Get returns the committed item for a slot, or nil.
func (s *BundleState) Get(slot Slot) *Item {
	return s.slots[slot]
}

// Has reports whether a slot has a committed item.
func (s *BundleState) Has(slot Slot) bool {
	return s.slots[slot] != nil
}

// Skipped reports whether an optional slot was explicitly skipped.
func (s *BundleState) Skipped(slot Slot) bool {
	_, ok := s.skipped[slot]
	return ok
}

// Len returns the number of committed items.
func (s *BundleState) Len() int {
	return len(s.slots)
}

// Items returns committed items in commit order.
func (s *BundleState) Items() []*Item {
	items := make([]*Item, 0, len(s.order))
	for _, slot := range s.order {
		if it := s.slots[slot]; it != nil {
			items = append(items, it)
		}
	}
	return items
}

// Slots returns the committed slots in commit order.
func (s *BundleState) Slots() []Slot {
	out := make([]Slot, 0, len(s.order))
	for _, slot := range s.order {
		if s.slots[slot] != nil {
			out = append(out, slot)
		}
	}
	return out
}

// Commit returns a copy of the state with the item committed to its slot.
func (s *BundleState) Commit(it *Item) *BundleState {
	next := s.clone()
	if _, exists := next.slots[it.Slot]; !exists {
		next.order = append(next.order, it.Slot)
	}
	next.slots[it.Slot] = it
	return next
}

// CommitGroup returns a copy with every group member committed in one step.
// Members are committed in (slot) lexicographic order for determinism.
func (s *BundleState) CommitGroup(members []*Item) *BundleState {
	sorted := make([]*Item, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Slot != sorted[j].Slot {
			return sorted[i].Slot < sorted[j].Slot
		}
		return sorted[i].ID < sorted[j].ID
	})

	next := s.clone()
	for _, it := range sorted {
		if _, exists := next.slots[it.Slot]; !exists {
			next.order = append(next.order, it.Slot)
		}
		next.slots[it.Slot] = it
	}
	return next
}

// Skip returns a copy with the optional slot marked skipped.
func (s *BundleState) Skip(slot Slot) *BundleState {
	next := s.clone()
	next.skipped[slot] = struct{}{}
	return next
}

// TieBreakKey returns the lexicographic item-id tuple used as the stable
// tie-break token. It is independent of commit order.
func (s *BundleState) TieBreakKey() string {
	ids := make([]string, 0, len(s.slots))
	for _, it := range s.slots {
		ids = append(ids, it.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// CatalogCount returns the number of committed catalog items.
func (s *BundleState) CatalogCount() int {
	n := 0
	for _, it := range s.slots {
		if it.Owner == OwnerCatalog {
			n++
		}
	}
	return n
}

func (s *BundleState) clone() *BundleState {
	slots := make(map[Slot]*Item, len(s.slots)+1)
	for k, v := range s.slots {
		slots[k] = v
	}
	skipped := make(map[Slot]struct{}, len(s.skipped)+1)
	for k := range s.skipped {
		skipped[k] = struct{}{}
	}
	order := make([]Slot, len(s.order), len(s.order)+2)
	copy(order, s.order)
	return &BundleState{
		template: s.template,
		slots:    slots,
		order:    order,
		skipped:  skipped,
	}
}

// ScoreInput is the read-only evaluation context for a score component.
type ScoreInput struct {
	// State is the partial bundle under evaluation.
	State *BundleState

	// Rules is the rule set captured for the request.
	Rules *RuleSet

	// Profile is the user's styling profile.
	Profile *Profile

	// Context is the occasion context.
	Context *Context

	// RecentWorn lists recently worn item ids, most recent first.
	RecentWorn []string

	// Now is the request timestamp.
	Now time.Time
}

// ScoreComponent is a pure soft-scoring function. Implementations must be
// deterministic, side-effect free, and return scores in [0, 1].
type ScoreComponent interface {
	// Name returns the component identifier used to look up its rule-set
	// weight (e.g. "palette_harmony").
	Name() string

	// Score evaluates the partial bundle. The returned confidence is the
	// minimum confidence of the inputs the component actually used, and the
	// explanation is a short tag describing the outcome.
	Score(in ScoreInput) (score, confidence float64, explanation string)
}

// CheckInput is the read-only evaluation context for a hard constraint.
type CheckInput struct {
	// State is the partial bundle under evaluation.
	State *BundleState

	// Rules is the rule set captured for the request.
	Rules *RuleSet

	// Profile is the user's styling profile.
	Profile *Profile

	// Context is the occasion context.
	Context *Context

	// AllowCatalog says whether a single catalog item is permitted.
	AllowCatalog bool
}

// HardConstraint is a monotone predicate over a partial bundle: once a
// partial violates it, no extension can satisfy it. Constraints marked
// FinalOnly are checked only on terminal (coverage-complete) states.
type HardConstraint interface {
	// Name returns the constraint identifier.
	Name() string

	// Check returns nil when the state satisfies the constraint, or a
	// violation describing the failure.
	Check(in CheckInput) *Violation

	// FinalOnly reports whether the constraint applies only to complete
	// bundles (e.g. template coverage).
	FinalOnly() bool
}

// Filter narrows a candidate index search.
type Filter struct {
	// Slot restricts results to one slot class.
	Slot Slot

	// Band requires seasonality to include the temperature band.
	Band Band

	// FormalityMin and FormalityMax bound item formality inclusively.
	FormalityMin int
	FormalityMax int

	// ExcludeTags drops items carrying any of these style tags.
	ExcludeTags []string

	// GroupID, when set, restricts results to members of one co-ord group.
	GroupID string
}

// CandidateIndex is the read-only per-user item view the engine consumes.
// Implementations must return items in a stable order under equal keys.
type CandidateIndex interface {
	// Search returns items for one owner matching the filter, up to limit.
	Search(ctx context.Context, userID string, owner Owner, filter Filter, limit int) ([]*Item, error)

	// Group returns all members of a coordinated set.
	Group(ctx context.Context, userID string, groupID string) ([]*Item, error)

	// Get resolves a single item by id across wardrobe and catalog.
	Get(ctx context.Context, userID string, itemID string) (*Item, error)
}

// RuleSetProvider supplies the current rule set. The engine captures one
// rule set per request at entry.
type RuleSetProvider interface {
	Current() *RuleSet
}

// ProfileProvider supplies user profiles.
type ProfileProvider interface {
	Snapshot(ctx context.Context, userID string) (*Profile, error)
}

// WearHistoryProvider supplies recently worn item ids, most recent first.
type WearHistoryProvider interface {
	Recent(ctx context.Context, userID string, n int) ([]string, error)
}

// Clock abstracts time for recency scoring and deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }
