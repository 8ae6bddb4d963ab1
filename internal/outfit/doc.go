// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

// Package outfit implements the outfit bundle assembly engine.
//
// # Architecture
//
// The engine assembles a coherent head-to-toe outfit (a bundle) from a user's
// wardrobe and, optionally, a global catalog, given an occasion context. It
// combines:
//
//   - Candidate retrieval: per-slot filtered, unary-ranked shortlists
//   - Hard constraints: monotone predicates enabling early beam pruning
//   - Soft scoring: weighted components in [0, 1] with explanations
//   - Beam search: anchor-first slot ordering with atomic co-ord commits
//   - Replace planning: group-aware single-slot replacement with cascades
//
// # Design Principles
//
//   - Deterministic: identical inputs and rule-set version produce identical
//     bundles; every comparator ends in a lexicographic item-id tie-break so
//     merge order never depends on goroutine scheduling
//   - Snapshot semantics: each request captures the rule set, profile, and
//     item view once at entry
//   - Bounded: deadlines are checked between slot steps and candidate
//     batches; best-so-far terminals are returned with a partial marker
//   - Tagged failures: the API boundary returns *Error values classified by
//     Kind, never panics
//
// # Usage
//
//	engine, err := outfit.NewEngine(cfg, logger)
//	engine.SetProviders(outfit.Providers{
//	    Index:    index,
//	    RuleSets: rules,
//	    Profiles: profiles,
//	    History:  history,
//	})
//
//	// Register score components and hard constraints
//	for _, c := range scoring.DefaultComponents() {
//	    engine.RegisterComponent(c)
//	}
//	for _, hc := range constraints.DefaultConstraints() {
//	    engine.RegisterConstraint(hc)
//	}
//
//	bundle, err := engine.Generate(ctx, outfit.GenerateRequest{
//	    UserID:  "u1",
//	    Context: outfit.Context{Occasion: "work_office", TargetDressiness: 4, TemperatureBand: outfit.BandWarm},
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Registration must complete before
// serving; per-request state (pairwise dE cache, unary score cache) is
// request-scoped, and the process-wide shortlist cache is lock-protected.
package outfit
