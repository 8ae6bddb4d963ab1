// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package outfit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies engine errors at the API boundary. The engine never panics
// through its API; every failure is a tagged *Error.
type Kind int

// Error kinds.
const (
	// KindInvalidInput means the context or profile failed validation.
	KindInvalidInput Kind = iota
	// KindNoTemplate means no template matches the occasion and dressiness.
	KindNoTemplate
	// KindNoBundle means hard constraints pruned every path.
	KindNoBundle
	// KindDeadline means the time budget expired before any terminal.
	KindDeadline
	// KindIndexError wraps a candidate index retrieval failure.
	KindIndexError
	// KindBusy means the bounded inflight count was exceeded.
	KindBusy
	// KindInternal is an invariant violation (a bug).
	KindInternal
)

// String returns the wire code for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindNoTemplate:
		return "NO_TEMPLATE"
	case KindNoBundle:
		return "NO_BUNDLE"
	case KindDeadline:
		return "DEADLINE"
	case KindIndexError:
		return "INDEX_ERROR"
	case KindBusy:
		return "BUSY"
	case KindInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// Error is the tagged error the engine returns across its API boundary.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Violation carries the dominant hard-constraint violation for
	// KindNoBundle.
	Violation *Violation

	// Slot is where pruning eliminated the last candidate (KindNoBundle),
	// when known.
	Slot Slot

	// RulesetVersion is the rule set active for the request.
	RulesetVersion string

	// TraceID identifies the failure for log correlation. Always set for
	// KindInternal.
	TraceID string

	msg string
	err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.err }

// KindOf extracts the engine error kind, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// fetchKind classifies a provider fetch failure. A budget expiring mid-call
// is a DEADLINE, not a fault of the provider.
func fetchKind(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindDeadline
	}
	return KindIndexError
}

// newError builds a tagged error without a cause.
func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// wrapError builds a tagged error wrapping a cause.
func wrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// internalError builds a KindInternal error with a fresh trace id.
func internalError(rulesetVersion, format string, args ...any) *Error {
	return &Error{
		Kind:           KindInternal,
		RulesetVersion: rulesetVersion,
		TraceID:        uuid.NewString(),
		msg:            fmt.Sprintf(format, args...),
	}
}
