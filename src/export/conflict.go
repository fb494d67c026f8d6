package export

import (
	"fmt"

	"keyring-export/src/kdbx"
	"keyring-export/src/keyring"
)

// Action is the outcome of conflict resolution for one record.
type Action int

const (
	// ActionAdd creates a new entry (possibly under a renamed title).
	ActionAdd Action = iota
	// ActionSkip leaves the database untouched for this record.
	ActionSkip
	// ActionOverwrite updates the matched entry in place.
	ActionOverwrite
)

// Decision says what to do with a record and under which title.
type Decision struct {
	Action Action
	// Title is the entry title to use; differs from the service only when
	// the rename strategy had to suffix it.
	Title string
	// Existing is the matched entry, set for ActionOverwrite.
	Existing kdbx.EntryRef
}

// resolveConflict matches the record against existing entries by exact
// (title, username) and applies the strategy. An empty username only matches
// entries with an empty username; no normalization happens anywhere.
func resolveConflict(db kdbx.Database, rec keyring.Record, strategy ConflictStrategy) (Decision, error) {
	title := rec.Service
	existing, found, err := db.FindEntry(title, rec.Username)
	if err != nil {
		return Decision{}, err
	}
	if !found {
		return Decision{Action: ActionAdd, Title: title}, nil
	}

	switch strategy {
	case ConflictOverwrite:
		return Decision{Action: ActionOverwrite, Title: title, Existing: existing}, nil
	case ConflictRename:
		free, err := freeTitle(db, title)
		if err != nil {
			return Decision{}, err
		}
		return Decision{Action: ActionAdd, Title: free}, nil
	default:
		return Decision{Action: ActionSkip, Title: title}, nil
	}
}

// freeTitle probes "<base> (N)" for the smallest N >= 1 not used by any
// entry. A suffixed title colliding with an unrelated entry counts as taken
// and moves the probe along.
func freeTitle(db kdbx.Database, base string) (string, error) {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		taken, err := db.TitleInUse(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}
