// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

// Package constraints provides the hard constraints registered on the
// assembly engine.
//
// Every constraint is a monotone predicate over a partial bundle: once a
// partial violates it, no extension can satisfy it, which is what lets the
// beam prune early. Constraints whose judgement only makes sense on a
// complete bundle (coverage, missing co-ord members, the belt gate) are
// marked FinalOnly and run against terminal states only.
//
// Register the full set with:
//
//	for _, hc := range constraints.DefaultConstraints() {
//	    engine.RegisterConstraint(hc)
//	}
package constraints
