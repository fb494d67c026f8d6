package keyring

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates that no keyring backend could be reached.
var ErrUnavailable = errors.New("keyring unavailable")

// Record is a single credential as exposed by the system keyring.
// Attributes carries the backend's raw item attributes so downstream
// consumers that match on them keep working after the export.
type Record struct {
	Service    string
	Username   string
	Password   string
	Attributes map[string]string
}

// ID identifies the record in logs and error reports.
func (r Record) ID() string {
	return r.Service + "/" + r.Username
}

// String renders the record without exposing the password.
func (r Record) String() string {
	return fmt.Sprintf("Record{service=%q, username=%q, password=***}", r.Service, r.Username)
}

// Store is a narrow interface over a credential store backend.
// Keep it small and focused on what we actually need so it stays mockable.
type Store interface {
	// Name reports the backend name for diagnostics.
	Name() string
	// Credentials enumerates every readable credential. The returned slice
	// is a single snapshot; order follows the backend's enumeration order.
	Credentials() ([]Record, error)
}
