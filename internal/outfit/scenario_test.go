// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package outfit_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wardrobelabs/ensemble/internal/outfit"
	"github.com/wardrobelabs/ensemble/internal/outfit/color"
	"github.com/wardrobelabs/ensemble/internal/outfit/constraints"
	"github.com/wardrobelabs/ensemble/internal/outfit/registry"
	"github.com/wardrobelabs/ensemble/internal/outfit/rules"
	"github.com/wardrobelabs/ensemble/internal/outfit/scoring"
	"github.com/wardrobelabs/ensemble/internal/outfit/storage"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// testClock is the frozen engine time every harness runs on. It is
// deliberately far from the wall clock; budgets must follow it anyway.
var testClock = time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

type testHarness struct {
	engine   *outfit.Engine
	index    *storage.MemoryIndex
	profiles *storage.MemoryProfiles
	history  *storage.MemoryHistory
}

func newHarness(t *testing.T, cfg *outfit.Config) *testHarness {
	t.Helper()

	engine, err := outfit.NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	h := &testHarness{
		engine:   engine,
		index:    storage.NewMemoryIndex(registry.Default()),
		profiles: storage.NewMemoryProfiles(),
		history:  storage.NewMemoryHistory(),
	}
	engine.SetProviders(outfit.Providers{
		Index:    h.index,
		RuleSets: rules.NewProvider(rules.Default()),
		Profiles: h.profiles,
		History:  h.history,
		Clock:    fixedClock{t: testClock},
	})
	for _, c := range scoring.DefaultComponents() {
		engine.RegisterComponent(c)
	}
	for _, hc := range constraints.DefaultConstraints() {
		engine.RegisterConstraint(hc)
	}
	return h
}

func (h *testHarness) put(t *testing.T, userID string, items ...*outfit.Item) {
	t.Helper()
	for _, it := range items {
		if err := h.index.Put(userID, it); err != nil {
			t.Fatalf("Put(%s) error: %v", it.ID, err)
		}
	}
}

var warmMild = []outfit.Band{outfit.BandWarm, outfit.BandMild}

func charcoalSuit(group string) (*outfit.Item, *outfit.Item) {
	c := color.New(25, 2, 250)
	jacket := &outfit.Item{
		ID: group + "-jacket", Role: "jacket", Slot: outfit.SlotMid,
		Formality: 4, Seasonality: warmMild, Color: &c,
		GroupID: group, SetRole: "jacket", CoordSetKind: "suit",
		CohesionPolicy: outfit.CohesionStrict,
	}
	trousers := &outfit.Item{
		ID: group + "-trousers", Role: "trousers", Slot: outfit.SlotBottom,
		Formality: 4, Seasonality: warmMild, Color: &c,
		GroupID: group, SetRole: "trousers", CoordSetKind: "suit",
		CohesionPolicy: outfit.CohesionStrict,
	}
	return jacket, trousers
}

func whiteShirt() *outfit.Item {
	c := color.New(95, 2, 180)
	return &outfit.Item{
		ID: "shirt-white", Role: "shirt", Slot: outfit.SlotTop,
		Formality: 4, Seasonality: warmMild, Color: &c,
	}
}

func blackOxfords() *outfit.Item {
	c := color.New(5, 2, 20)
	return &outfit.Item{
		ID: "oxfords-black", Role: "shoes", Slot: outfit.SlotFootwear,
		Formality: 5, Seasonality: warmMild, Color: &c,
		FootwearClass: "oxford",
	}
}

func officeProfile(userID string) *outfit.Profile {
	return &outfit.Profile{
		UserID:             userID,
		BaselineDressiness: 3,
		Appearance: &outfit.AppearanceSignature{
			SkinLCh:      color.New(60, 20, 60),
			Undertone:    outfit.UndertoneWarm,
			SynergyStyle: outfit.SynergyAuto,
		},
	}
}

func officeContext() outfit.Context {
	return outfit.Context{
		Occasion:         "work_office",
		TargetDressiness: 4,
		TemperatureBand:  outfit.BandWarm,
	}
}

func slotMap(b *outfit.Bundle) map[outfit.Slot]string {
	out := make(map[outfit.Slot]string, len(b.Slots))
	for _, bs := range b.Slots {
		out[bs.Slot] = bs.ItemID
	}
	return out
}

func TestGenerate_SuitCommitsAtomically(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	bundle, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:  "u1",
		Context: officeContext(),
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	got := slotMap(bundle)
	if got[outfit.SlotMid] != "g1-jacket" || got[outfit.SlotBottom] != "g1-trousers" {
		t.Errorf("suit not committed atomically: %v", got)
	}
	if got[outfit.SlotTop] != "shirt-white" || got[outfit.SlotFootwear] != "oxfords-black" {
		t.Errorf("separates missing: %v", got)
	}
	if bundle.TemplateID != "work_office" {
		t.Errorf("TemplateID = %q, want work_office", bundle.TemplateID)
	}
	if bundle.Partial {
		t.Error("bundle should not be partial")
	}

	for _, bs := range bundle.Slots {
		if bs.Owner == outfit.OwnerCatalog {
			t.Errorf("catalog item %s in wardrobe-only request", bs.ItemID)
		}
	}

	cs, ok := bundle.ComponentScores["palette_harmony"]
	if !ok {
		t.Fatal("palette_harmony missing from component scores")
	}
	if cs.Score < 0.7 {
		t.Errorf("palette_harmony = %v for a neutral palette, want >= 0.7", cs.Score)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	req := outfit.GenerateRequest{UserID: "u1", Context: officeContext()}
	first, err := h.engine.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	second, err := h.engine.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if first.TieBreak != second.TieBreak {
		t.Errorf("tie-break changed between runs: %q vs %q", first.TieBreak, second.TieBreak)
	}
	if first.Score != second.Score {
		t.Errorf("score changed between runs: %v vs %v", first.Score, second.Score)
	}
	fm, sm := slotMap(first), slotMap(second)
	for slot, id := range fm {
		if sm[slot] != id {
			t.Errorf("slot %s changed between runs: %s vs %s", slot, id, sm[slot])
		}
	}
}

func TestGenerate_ScoreRoundTrip(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	bundle, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:  "u1",
		Context: officeContext(),
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	sum := 0.0
	for name, cs := range bundle.ComponentScores {
		if cs.Score < 0 || cs.Score > 1 {
			t.Errorf("%s score %v outside [0, 1]", name, cs.Score)
		}
		if cs.Confidence < 0 || cs.Confidence > 1 {
			t.Errorf("%s confidence %v outside [0, 1]", name, cs.Confidence)
		}
		sum += cs.Weight * cs.Score * cs.Confidence
	}
	if math.Abs(sum-bundle.Score) > 1e-9 {
		t.Errorf("component contributions sum to %v, bundle score %v", sum, bundle.Score)
	}
	if bundle.Score < 0 || bundle.Score > 1 {
		t.Errorf("bundle score %v outside [0, 1]", bundle.Score)
	}
}

func TestGenerate_MissingSuitMemberBlocksBundle(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, _ := charcoalSuit("g1")
	h.put(t, "u1", jacket, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	_, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:  "u1",
		Context: officeContext(),
	})
	if err == nil {
		t.Fatal("expected NO_BUNDLE when the suit bottom is gone")
	}
	if outfit.KindOf(err) != outfit.KindNoBundle {
		t.Fatalf("kind = %s, want NO_BUNDLE", outfit.KindOf(err))
	}

	var engErr *outfit.Error
	if !errors.As(err, &engErr) {
		t.Fatalf("error is not *outfit.Error: %v", err)
	}
	if engErr.Violation == nil || engErr.Violation.Code != constraints.CodeStrictCoord {
		t.Errorf("violation = %+v, want code %s", engErr.Violation, constraints.CodeStrictCoord)
	}
}

func TestGenerate_OnePieceExcludesSeparates(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	dressColor := color.New(40, 35, 10)
	dress := &outfit.Item{
		ID: "dress-red", Role: "dress", Slot: outfit.SlotOnePiece,
		Formality: 3, Seasonality: warmMild, Color: &dressColor,
	}
	pumpsColor := color.New(10, 4, 20)
	pumps := &outfit.Item{
		ID: "pumps-black", Role: "shoes", Slot: outfit.SlotFootwear,
		Formality: 4, Seasonality: warmMild, Color: &pumpsColor,
	}
	h.put(t, "u1", dress, pumps, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	bundle, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID: "u1",
		Context: outfit.Context{
			Occasion:         "evening_out",
			TargetDressiness: 3,
			TemperatureBand:  outfit.BandWarm,
		},
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	got := slotMap(bundle)
	if got[outfit.SlotOnePiece] != "dress-red" {
		t.Fatalf("expected the dress, got %v", got)
	}
	if _, hasTop := got[outfit.SlotTop]; hasTop {
		t.Error("one-piece bundle must not carry a top")
	}
	if _, hasBottom := got[outfit.SlotBottom]; hasBottom {
		t.Error("one-piece bundle must not carry a bottom")
	}
}

func TestGenerate_MissingAppearanceDegradesGracefully(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers, whiteShirt(), blackOxfords())
	profile := officeProfile("u1")
	profile.Appearance = nil
	h.profiles.Put(profile)

	bundle, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:  "u1",
		Context: officeContext(),
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	cs, ok := bundle.ComponentScores["skin_synergy"]
	if !ok {
		t.Fatal("skin_synergy missing from component scores")
	}
	if cs.Score != 0.5 {
		t.Errorf("skin_synergy score = %v without appearance, want exactly 0.5", cs.Score)
	}
	if cs.Confidence != 1.0 {
		t.Errorf("skin_synergy confidence = %v without appearance, want 1.0", cs.Confidence)
	}
	if got, want := cs.Weight*cs.Score*cs.Confidence, cs.Weight*0.5; got != want {
		t.Errorf("skin_synergy contribution = %v, want exactly %v", got, want)
	}
}

func TestReplace_StrictBottomCascadesToOtherSuit(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	g1Jacket, g1Trousers := charcoalSuit("g1")
	g2Jacket, g2Trousers := charcoalSuit("g2")
	h.put(t, "u1", g1Jacket, g1Trousers, g2Jacket, g2Trousers, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	bundle, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:  "u1",
		Context: officeContext(),
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if slotMap(bundle)[outfit.SlotBottom] != "g1-trousers" {
		t.Fatalf("expected g1 to win the tie-break, got %v", slotMap(bundle))
	}

	result, err := h.engine.Replace(context.Background(), outfit.ReplaceRequest{
		UserID:  "u1",
		Bundle:  bundle,
		Slot:    outfit.SlotBottom,
		Context: officeContext(),
	})
	if err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	if result.CurrentItemID != "g1-trousers" {
		t.Errorf("CurrentItemID = %q", result.CurrentItemID)
	}

	var cascade *outfit.Alternative
	for i := range result.Alternatives {
		if result.Alternatives[i].ItemID == "g2-trousers" {
			cascade = &result.Alternatives[i]
		}
	}
	if cascade == nil {
		t.Fatalf("no alternative from the second suit: %+v", result.Alternatives)
	}
	if !cascade.RequiresCascade || cascade.CascadePlan == nil {
		t.Fatalf("cross-suit swap must cascade: %+v", cascade)
	}
	if cascade.CascadePlan.GroupID != "g2" {
		t.Errorf("cascade group = %q, want g2", cascade.CascadePlan.GroupID)
	}
	if len(cascade.CascadePlan.Slots) != 1 || cascade.CascadePlan.Slots[0] != outfit.SlotMid {
		t.Errorf("cascade slots = %v, want [mid]", cascade.CascadePlan.Slots)
	}
	if len(cascade.CascadePlan.Replacements) != 1 ||
		cascade.CascadePlan.Replacements[0].ItemID != "g2-jacket" {
		t.Errorf("cascade replacements = %+v, want g2-jacket", cascade.CascadePlan.Replacements)
	}
}

func TestReplace_LockedSlotBlocksCascade(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	g1Jacket, g1Trousers := charcoalSuit("g1")
	g2Jacket, g2Trousers := charcoalSuit("g2")
	h.put(t, "u1", g1Jacket, g1Trousers, g2Jacket, g2Trousers, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	bundle, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:  "u1",
		Context: officeContext(),
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	result, err := h.engine.Replace(context.Background(), outfit.ReplaceRequest{
		UserID:  "u1",
		Bundle:  bundle,
		Slot:    outfit.SlotBottom,
		Context: officeContext(),
		Locks:   []outfit.Slot{outfit.SlotMid},
	})
	if err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	for _, alt := range result.Alternatives {
		if alt.RequiresCascade {
			t.Errorf("locked mid slot must block cascades: %+v", alt)
		}
	}
}

func TestGenerate_DeadlineDegradation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	slow := &slowIndex{inner: h.index, delay: 30 * time.Millisecond}
	h.engine.SetProviders(outfit.Providers{
		Index:    slow,
		RuleSets: rules.NewProvider(rules.Default()),
		Profiles: h.profiles,
		History:  h.history,
	})

	bundle, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:   "u1",
		Context:  officeContext(),
		Deadline: time.Now().Add(10 * time.Millisecond),
	})
	switch {
	case err != nil:
		if outfit.KindOf(err) != outfit.KindDeadline {
			t.Errorf("kind = %s, want DEADLINE", outfit.KindOf(err))
		}
	case !bundle.Partial:
		t.Error("a deadline-clipped bundle must carry the partial marker")
	}
}

func TestGenerate_DeadlineOnEngineClock(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	// A deadline behind the engine clock leaves no budget at all,
	// whatever the wall clock says.
	_, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:   "u1",
		Context:  officeContext(),
		Deadline: testClock.Add(-time.Second),
	})
	if outfit.KindOf(err) != outfit.KindDeadline {
		t.Fatalf("kind = %v, want DEADLINE for a spent budget", outfit.KindOf(err))
	}

	// A deadline ahead of the engine clock is a live budget even though it
	// is nowhere near wall time.
	bundle, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:   "u1",
		Context:  officeContext(),
		Deadline: testClock.Add(5 * time.Second),
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if bundle.Partial {
		t.Error("a live budget must not clip the bundle")
	}
	if !bundle.GeneratedAt.Equal(testClock) {
		t.Errorf("GeneratedAt = %v, want the engine clock %v", bundle.GeneratedAt, testClock)
	}
}

// slowIndex delegates and then sleeps, so the first shortlist lands but the
// budget is gone by the next slot.
type slowIndex struct {
	inner *storage.MemoryIndex
	delay time.Duration
}

func (s *slowIndex) Search(ctx context.Context, userID string, owner outfit.Owner, filter outfit.Filter, limit int) ([]*outfit.Item, error) {
	items, err := s.inner.Search(ctx, userID, owner, filter, limit)
	time.Sleep(s.delay)
	return items, err
}

func (s *slowIndex) Group(ctx context.Context, userID, groupID string) ([]*outfit.Item, error) {
	return s.inner.Group(ctx, userID, groupID)
}

func (s *slowIndex) Get(ctx context.Context, userID, itemID string) (*outfit.Item, error) {
	return s.inner.Get(ctx, userID, itemID)
}

func TestGenerate_CatalogCap(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers, whiteShirt())
	catalogShoes := blackOxfords()
	catalogShoes.Owner = outfit.OwnerCatalog
	h.put(t, "", catalogShoes)
	h.profiles.Put(officeProfile("u1"))

	// Without catalog permission the missing footwear blocks the bundle.
	_, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:  "u1",
		Context: officeContext(),
	})
	if outfit.KindOf(err) != outfit.KindNoBundle {
		t.Fatalf("kind = %v, want NO_BUNDLE without catalog access", outfit.KindOf(err))
	}

	bundle, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:       "u1",
		Context:      officeContext(),
		AllowCatalog: true,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	catalogCount := 0
	for _, bs := range bundle.Slots {
		if bs.Owner == outfit.OwnerCatalog {
			catalogCount++
		}
	}
	if catalogCount != 1 {
		t.Errorf("catalog items = %d, want exactly 1", catalogCount)
	}
	if slotMap(bundle)[outfit.SlotFootwear] != "oxfords-black" {
		t.Errorf("catalog footwear not used: %v", slotMap(bundle))
	}
}

func TestGenerate_SecondCatalogGapStaysUnfillable(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers)
	catalogShirt := whiteShirt()
	catalogShirt.Owner = outfit.OwnerCatalog
	catalogShoes := blackOxfords()
	catalogShoes.Owner = outfit.OwnerCatalog
	h.put(t, "", catalogShirt, catalogShoes)
	h.profiles.Put(officeProfile("u1"))

	// Two required slots only the catalog can fill; the single-item cap
	// leaves one of them empty.
	_, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:       "u1",
		Context:      officeContext(),
		AllowCatalog: true,
	})
	if outfit.KindOf(err) != outfit.KindNoBundle {
		t.Errorf("kind = %v, want NO_BUNDLE", outfit.KindOf(err))
	}
}

func TestGenerate_Backpressure(t *testing.T) {
	t.Parallel()

	cfg := outfit.DefaultConfig()
	cfg.MaxInflight = 1
	h := newHarness(t, cfg)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	gate := make(chan struct{})
	h.engine.SetProviders(outfit.Providers{
		Index:    &gatedIndex{inner: h.index, gate: gate},
		RuleSets: rules.NewProvider(rules.Default()),
		Profiles: h.profiles,
		History:  h.history,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = h.engine.Generate(context.Background(), outfit.GenerateRequest{
			UserID:  "u1",
			Context: officeContext(),
		})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for h.engine.Inflight() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("first request never admitted")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:  "u1",
		Context: officeContext(),
	})
	if outfit.KindOf(err) != outfit.KindBusy {
		t.Errorf("kind = %v, want BUSY at the inflight bound", outfit.KindOf(err))
	}

	close(gate)
	<-done
}

// gatedIndex blocks searches until the gate closes, pinning one request
// inflight.
type gatedIndex struct {
	inner *storage.MemoryIndex
	gate  chan struct{}
}

func (g *gatedIndex) Search(ctx context.Context, userID string, owner outfit.Owner, filter outfit.Filter, limit int) ([]*outfit.Item, error) {
	<-g.gate
	return g.inner.Search(ctx, userID, owner, filter, limit)
}

func (g *gatedIndex) Group(ctx context.Context, userID, groupID string) ([]*outfit.Item, error) {
	return g.inner.Group(ctx, userID, groupID)
}

func (g *gatedIndex) Get(ctx context.Context, userID, itemID string) (*outfit.Item, error) {
	return g.inner.Get(ctx, userID, itemID)
}

func TestGenerate_InputValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.profiles.Put(officeProfile("u1"))

	cases := []struct {
		name string
		req  outfit.GenerateRequest
		want outfit.Kind
	}{
		{
			name: "empty user",
			req:  outfit.GenerateRequest{Context: officeContext()},
			want: outfit.KindInvalidInput,
		},
		{
			name: "unknown band",
			req: outfit.GenerateRequest{
				UserID: "u1",
				Context: outfit.Context{
					Occasion:        "work_office",
					TemperatureBand: "scorching",
				},
			},
			want: outfit.KindInvalidInput,
		},
		{
			name: "unknown occasion",
			req: outfit.GenerateRequest{
				UserID: "u1",
				Context: outfit.Context{
					Occasion:         "gala_masquerade",
					TargetDressiness: 4,
					TemperatureBand:  outfit.BandWarm,
				},
			},
			want: outfit.KindNoTemplate,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.engine.Generate(context.Background(), tc.req)
			if outfit.KindOf(err) != tc.want {
				t.Errorf("kind = %v, want %v", outfit.KindOf(err), tc.want)
			}
		})
	}
}

func TestExplain_RecomputesComponents(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	bundle, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:  "u1",
		Context: officeContext(),
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	result, err := h.engine.Explain(context.Background(), "u1", bundle)
	if err != nil {
		t.Fatalf("Explain() error: %v", err)
	}
	if len(result.Components) != 10 {
		t.Errorf("components = %d, want 10", len(result.Components))
	}
	if result.Score < 0 || result.Score > 1 {
		t.Errorf("score %v outside [0, 1]", result.Score)
	}
	for _, slot := range []outfit.Slot{outfit.SlotMid, outfit.SlotBottom, outfit.SlotTop, outfit.SlotFootwear} {
		if result.Slots[slot] == "" {
			t.Errorf("slot %s has no explanation", slot)
		}
	}
}

func TestExplain_UsesOriginatingContext(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	bundle, err := h.engine.Generate(context.Background(), outfit.GenerateRequest{
		UserID:  "u1",
		Context: officeContext(),
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if bundle.Context.Occasion != "work_office" {
		t.Fatalf("bundle context = %+v, want the generating occasion", bundle.Context)
	}

	result, err := h.engine.Explain(context.Background(), "u1", bundle)
	if err != nil {
		t.Fatalf("Explain() error: %v", err)
	}

	// Re-scoring under the bundle's own context must reproduce its score;
	// a drifted context would move the formality component.
	if math.Abs(result.Score-bundle.Score) > 1e-9 {
		t.Errorf("Explain score = %v, bundle score %v", result.Score, bundle.Score)
	}
}

func TestInvalidateUser_RefreshesShortlists(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	jacket, trousers := charcoalSuit("g1")
	h.put(t, "u1", jacket, trousers, whiteShirt(), blackOxfords())
	h.profiles.Put(officeProfile("u1"))

	req := outfit.GenerateRequest{UserID: "u1", Context: officeContext()}
	if _, err := h.engine.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	// A removed item lingers in cached shortlists until invalidation.
	h.index.Remove("u1", "oxfords-black")
	h.engine.InvalidateUser("u1")

	_, err := h.engine.Generate(context.Background(), req)
	if outfit.KindOf(err) != outfit.KindNoBundle {
		t.Errorf("kind = %v, want NO_BUNDLE after footwear removal", outfit.KindOf(err))
	}
}
