// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

// Package scoring provides the soft score components registered on the
// assembly engine.
//
// Every component is a pure function over a partial bundle: deterministic,
// side-effect free, score in [0, 1]. Components report the minimum
// confidence of the item attributes they actually consulted, so inferred
// attributes dampen their own contribution at aggregation time. Components
// that depend on an optional profile signature (appearance, body) return a
// neutral 0.5 with full confidence when the signature is absent, keeping
// the aggregate comparable across users with different profile completeness.
//
// Register the full set with:
//
//	for _, c := range scoring.DefaultComponents() {
//	    engine.RegisterComponent(c)
//	}
package scoring
