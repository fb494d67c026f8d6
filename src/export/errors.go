package export

import "errors"

// Fatal error kinds. Each aborts the run immediately; recoverable per-record
// failures go into Result.Failures instead and never abort the batch.
var (
	// ErrSourceUnavailable indicates the credential store could not be
	// enumerated. Raised before any mutation.
	ErrSourceUnavailable = errors.New("credential source unavailable")
	// ErrBackupFailed indicates the pre-mutation backup copy failed. The
	// run stops before the database is opened (fail closed).
	ErrBackupFailed = errors.New("backup failed")
	// ErrSaveFailed indicates the final save failed. The on-disk state is
	// indeterminate; recover from the backup if one was taken.
	ErrSaveFailed = errors.New("save failed")
)

// FailureKind classifies a recoverable per-record failure.
type FailureKind string

const (
	// FailureInvalidRecord marks a record the engine refused to process
	// (empty service, empty attribute key).
	FailureInvalidRecord FailureKind = "invalid-record"
	// FailureLookup marks a conflict-resolution lookup that errored.
	FailureLookup FailureKind = "lookup-failed"
	// FailureWrite marks a failed add or update.
	FailureWrite FailureKind = "write-failed"
)

// Failure is one non-fatal per-record failure.
type Failure struct {
	// ID is the record identifier (service/username).
	ID   string
	Kind FailureKind
	Err  error
}

func (f Failure) Error() string {
	return string(f.Kind) + " " + f.ID + ": " + f.Err.Error()
}

func (f Failure) Unwrap() error { return f.Err }
