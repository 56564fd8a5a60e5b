// Package errs defines the engine's error kinds and their CLI exit codes.
package errs

import "github.com/pkg/errors"

// Sentinel error kinds, wrapped with context via github.com/pkg/errors so
// that %+v prints a stack trace at the point of first return.
var (
	// ErrParse is raised only at the input boundary: by the ingest package
	// for malformed lines, and by the trace-graph builder for records it
	// cannot assemble into a graph.
	ErrParse = errors.New("parse error")

	// ErrInvariantsUnsatisfiable means refinement exhausted every candidate
	// split with counter-examples still outstanding. Fatal on
	// totally-ordered input; the caller may choose to treat it as
	// recoverable (skip refinement, proceed to coarsening) on partially
	// ordered input.
	ErrInvariantsUnsatisfiable = errors.New("invariants unsatisfiable")

	// ErrInternalInconsistency means a post-condition check failed:
	// overlapping partitions, an empty partition, or any other violation
	// checkSanity exists to catch.
	ErrInternalInconsistency = errors.New("internal inconsistency")

	// ErrCancelled is returned when the engine's cooperative cancel flag
	// was observed between iterations of a loop.
	ErrCancelled = errors.New("cancelled")
)

// ExitCode maps an error returned from a top-level run to the CLI exit
// code: 0 for a nil error (success), 1 for an error wrapping ErrParse, and
// 2 for every other error.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrParse):
		return 1
	default:
		return 2
	}
}
