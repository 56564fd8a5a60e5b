package errs

import (
	"testing"

	"github.com/pkg/errors"
)

func TestExitCodeNil(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("expected exit code 0 for a nil error, got %d", got)
	}
}

func TestExitCodeParseError(t *testing.T) {
	err := errors.Wrap(ErrParse, "line 3: invalid json")
	if got := ExitCode(err); got != 1 {
		t.Fatalf("expected exit code 1 for a wrapped ErrParse, got %d", got)
	}
}

func TestExitCodeOtherErrors(t *testing.T) {
	for _, err := range []error{
		ErrInvariantsUnsatisfiable,
		ErrInternalInconsistency,
		ErrCancelled,
		errors.New("something else entirely"),
	} {
		if got := ExitCode(err); got != 2 {
			t.Errorf("expected exit code 2 for %v, got %d", err, got)
		}
	}
}
