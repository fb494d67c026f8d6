package export

import (
	"errors"
	"strings"
	"testing"
)

func TestResult_String(t *testing.T) {
	r := &Result{Total: 10, Added: 5, Updated: 2, Skipped: 2, Errored: 1}
	s := r.String()
	for _, want := range []string{"10 entries processed", "5 added", "2 updated", "2 skipped", "1 errors"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary %q missing %q", s, want)
		}
	}
}

func TestResult_FailKeepsOrder(t *testing.T) {
	r := &Result{}
	r.fail("a/1", FailureInvalidRecord, errors.New("x"))
	r.fail("b/2", FailureWrite, errors.New("y"))
	if r.Errored != 2 || len(r.Failures) != 2 {
		t.Fatalf("counters = %d/%d, want 2/2", r.Errored, len(r.Failures))
	}
	if r.Failures[0].ID != "a/1" || r.Failures[1].ID != "b/2" {
		t.Fatalf("failure order not preserved: %+v", r.Failures)
	}
}

func TestFailure_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	f := Failure{ID: "a/1", Kind: FailureLookup, Err: inner}
	if !errors.Is(f, inner) {
		t.Fatalf("Failure should unwrap to the inner error")
	}
}
