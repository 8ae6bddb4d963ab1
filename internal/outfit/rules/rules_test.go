// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

func TestDefault_Valid(t *testing.T) {
	t.Parallel()

	rs := Default()
	if rs.Version != DefaultVersion {
		t.Errorf("expected version %q, got %q", DefaultVersion, rs.Version)
	}
	if err := rs.Validate(); err != nil {
		t.Fatalf("built-in rule set failed validation: %v", err)
	}

	// All ten components carry a weight.
	if len(rs.Weights) != 10 {
		t.Errorf("expected 10 component weights, got %d", len(rs.Weights))
	}
	var sum float64
	for name, w := range rs.Weights {
		if w <= 0 {
			t.Errorf("weight %q should be positive, got %v", name, w)
		}
		sum += w
	}
	if diff := sum - 1.08; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("default weights should sum to 1.08, got %v", sum)
	}
}

func TestDefault_TemplateSelection(t *testing.T) {
	t.Parallel()

	rs := Default()
	profile := &outfit.Profile{UserID: "u1", BaselineDressiness: 4}

	tpl := rs.SelectTemplate("work_office", 4, profile)
	if tpl == nil || tpl.ID != "work_office" {
		t.Fatalf("expected work_office template, got %+v", tpl)
	}
	if tpl.BeltGate != 4 {
		t.Errorf("work_office belt gate should be 4, got %d", tpl.BeltGate)
	}

	if rs.SelectTemplate("moon_landing", 3, profile) != nil {
		t.Error("unknown occasion should select no template")
	}
}

func TestDefault_CoordKinds(t *testing.T) {
	t.Parallel()

	rs := Default()
	suit, ok := rs.CoordKinds["suit"]
	if !ok {
		t.Fatal("expected suit coord kind")
	}
	if len(suit) != 2 {
		t.Errorf("suit should span two slots, got %v", suit)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ruleset.yaml")
	content := `
version: office-tuned-2
weights:
  palette_harmony: 0.30
novelty_window: 5
accessory_mode: strict_family
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rule set: %v", err)
	}

	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if rs.Version != "office-tuned-2" {
		t.Errorf("expected overridden version, got %q", rs.Version)
	}
	if rs.Weights["palette_harmony"] != 0.30 {
		t.Errorf("expected overridden weight, got %v", rs.Weights["palette_harmony"])
	}
	if rs.NoveltyWindow != 5 {
		t.Errorf("expected overridden novelty window, got %d", rs.NoveltyWindow)
	}
	if rs.AccessoryMode != outfit.AccessoryStrictFamily {
		t.Errorf("expected strict_family mode, got %q", rs.AccessoryMode)
	}

	// Untouched fields keep the built-in values.
	if len(rs.Templates) == 0 {
		t.Error("expected built-in templates retained")
	}
	if rs.Thresholds.MaxPatterns != 2 {
		t.Errorf("expected built-in max patterns retained, got %d", rs.Thresholds.MaxPatterns)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load("/nonexistent/ruleset.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOrDefault_EmptyPath(t *testing.T) {
	t.Parallel()

	rs, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if rs.Version != DefaultVersion {
		t.Errorf("empty path should yield the built-in set, got %q", rs.Version)
	}
}

func TestProvider_PublishAndSnapshot(t *testing.T) {
	t.Parallel()

	p := NewProvider(Default())
	captured := p.Current()

	published := 0
	p.OnPublish(func(*outfit.RuleSet) { published++ })

	next := Default()
	next.Version = "builtin-2"
	if err := p.Publish(next); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	if p.Current().Version != "builtin-2" {
		t.Errorf("expected new version current, got %q", p.Current().Version)
	}
	if captured.Version != DefaultVersion {
		t.Errorf("captured snapshot must not change, got %q", captured.Version)
	}
	if published != 1 {
		t.Errorf("expected one publish hook call, got %d", published)
	}
}

func TestProvider_RejectsDuplicateVersion(t *testing.T) {
	t.Parallel()

	p := NewProvider(Default())
	if err := p.Publish(Default()); err == nil {
		t.Error("expected error republishing the same version")
	}
}

func TestProvider_ReplayedVersionCannotRegress(t *testing.T) {
	t.Parallel()

	p := NewProvider(Default())

	next := Default()
	next.Version = "builtin-2"
	if err := p.Publish(next); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	// A delayed duplicate of the seeded version arrives after its
	// successor; it must be refused, not reinstated.
	if err := p.Publish(Default()); err == nil {
		t.Error("expected error replaying an earlier version")
	}
	if p.Current().Version != "builtin-2" {
		t.Errorf("replay regressed the active set to %q", p.Current().Version)
	}
}

func TestProvider_RejectsInvalid(t *testing.T) {
	t.Parallel()

	p := NewProvider(Default())
	bad := &outfit.RuleSet{Version: ""}
	if err := p.Publish(bad); err == nil {
		t.Error("expected error publishing invalid rule set")
	}
}
