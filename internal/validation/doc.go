// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library in a thread-safe
// singleton so every engine entry point validates request structs the same
// way, and validation failures carry human-readable field messages suitable
// for INVALID_INPUT errors.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Error translation to human-readable messages
//   - Built-in validator support (required, min/max, gte/lt, oneof)
//   - Future v11 compatibility with WithRequiredStructEnabled
//
// # Quick Start
//
//	type GenerateRequest struct {
//	    UserID  string  `validate:"required"`
//	    Context Context
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    return nil, wrapError(KindInvalidInput, verr, "request failed validation")
//	}
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//
// Numeric validations:
//   - gte=n: Greater than or equal to n
//   - lt=n: Less than n
//   - min=n: Minimum value n
//   - max=n: Maximum value n
//
// # Thread Safety
//
// The singleton validator caches struct metadata and is safe for concurrent
// use across requests.
package validation
