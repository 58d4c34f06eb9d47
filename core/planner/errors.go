package planner

import "errors"

var (
	// ErrNotFound is returned by ApplyWhatIf when the focus trainset has no
	// record for the requested date.
	ErrNotFound = errors.New("trainset not found for date")

	// ErrOracle wraps any scoring oracle failure: unreachable model,
	// timeout, malformed output or a mismatched batch length. A ranking
	// pass that hits it aborts with no decision changes persisted.
	ErrOracle = errors.New("scoring oracle failure")
)
