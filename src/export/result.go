package export

import "fmt"

// Result accumulates the outcome of one export run. Counters cover every
// record seen; Failures lists recoverable errors in processing order.
type Result struct {
	Total   int
	Added   int
	Updated int
	Skipped int
	Errored int

	Failures []Failure
}

// fail records a recoverable per-record failure.
func (r *Result) fail(id string, kind FailureKind, err error) {
	r.Errored++
	r.Failures = append(r.Failures, Failure{ID: id, Kind: kind, Err: err})
}

// String returns a one-line human-readable summary.
func (r *Result) String() string {
	return fmt.Sprintf("export complete: %d entries processed, %d added, %d updated, %d skipped, %d errors",
		r.Total, r.Added, r.Updated, r.Skipped, r.Errored)
}
