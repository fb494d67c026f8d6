package export

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ConflictStrategy decides what happens when a record matches an existing
// entry by (title, username).
type ConflictStrategy int

const (
	// ConflictSkip keeps the existing entry and drops the new record.
	ConflictSkip ConflictStrategy = iota
	// ConflictOverwrite replaces the existing entry's credentials in place.
	ConflictOverwrite
	// ConflictRename adds the new record under a suffixed title.
	ConflictRename
)

func (s ConflictStrategy) String() string {
	switch s {
	case ConflictSkip:
		return "skip"
	case ConflictOverwrite:
		return "overwrite"
	case ConflictRename:
		return "rename"
	}
	return fmt.Sprintf("ConflictStrategy(%d)", int(s))
}

// ParseConflictStrategy parses a strategy name, case-insensitively.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip":
		return ConflictSkip, nil
	case "overwrite":
		return ConflictOverwrite, nil
	case "rename":
		return ConflictRename, nil
	}
	return ConflictSkip, fmt.Errorf("unknown conflict strategy %q (skip|overwrite|rename)", s)
}

// GroupStrategy decides the group placement of exported entries.
type GroupStrategy int

const (
	// GroupService places each entry in a group named after its service.
	GroupService GroupStrategy = iota
	// GroupFlat places every entry in the root group.
	GroupFlat
	// GroupDomain groups entries by the domain extracted from the service.
	GroupDomain
)

func (s GroupStrategy) String() string {
	switch s {
	case GroupFlat:
		return "flat"
	case GroupService:
		return "service"
	case GroupDomain:
		return "domain"
	}
	return fmt.Sprintf("GroupStrategy(%d)", int(s))
}

// ParseGroupStrategy parses a strategy name, case-insensitively.
func ParseGroupStrategy(s string) (GroupStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat":
		return GroupFlat, nil
	case "service":
		return GroupService, nil
	case "domain":
		return GroupDomain, nil
	}
	return GroupService, fmt.Errorf("unknown group strategy %q (flat|service|domain)", s)
}

// Options configures one export run.
type Options struct {
	// OutputPath is the KDBX file to create or update.
	OutputPath string
	// Password is the master password for the database. Never logged.
	Password string
	// OnConflict selects the conflict strategy (default skip).
	OnConflict ConflictStrategy
	// GroupBy selects the grouping strategy (default service).
	GroupBy GroupStrategy
	// Backup copies an existing database aside before any mutation.
	Backup bool
	// Update opens an existing database instead of creating a new one.
	Update bool
	// Logger is the run-scoped logger. Zero value logs nothing useful;
	// callers pass a configured zerolog.Logger.
	Logger zerolog.Logger
}
