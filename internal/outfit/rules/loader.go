// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package rules

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// Load reads a rule set from a YAML file. Fields absent from the file fall
// back to the built-in defaults, so an operator file only has to carry the
// tuning it changes plus a distinct version.
func Load(path string) (*outfit.RuleSet, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to read rule set %s: %w", path, err)
	}

	rs := Default()
	if err := k.Unmarshal("", rs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rule set %s: %w", path, err)
	}

	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("rule set %s invalid: %w", path, err)
	}
	return rs, nil
}

// LoadOrDefault resolves the rule set for a configured path: empty path
// means the built-in set.
func LoadOrDefault(path string) (*outfit.RuleSet, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
