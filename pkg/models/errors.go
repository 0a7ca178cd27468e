package models

import "errors"

var (
	// ErrInvalidScaleSpec is returned by ScaleSpec.Validate when a spec
	// loaded from the rule store violates its invariants.
	ErrInvalidScaleSpec = errors.New("models: invalid scale spec")

	// ErrInvariantViolation flags a usage snapshot that cannot be trusted,
	// e.g. idleCount > totalCount. The offending entry is dropped, not the
	// whole sample.
	ErrInvariantViolation = errors.New("models: usage invariant violation")
)
