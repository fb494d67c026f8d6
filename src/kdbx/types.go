// Package kdbx is a narrow adapter over KeePass (KDBX) databases. The core
// engine only ever talks to the Database interface, so tests run against the
// in-memory fake and the file implementation stays swappable.
package kdbx

import "errors"

var (
	// ErrNotFound indicates the database file does not exist.
	ErrNotFound = errors.New("database not found")
	// ErrBadCredentials indicates the master password did not open the database.
	ErrBadCredentials = errors.New("incorrect password for database")
	// ErrCorrupt indicates the file exists but could not be decoded.
	ErrCorrupt = errors.New("database corrupt")
)

// Mode selects how OpenFunc treats the target file.
type Mode int

const (
	// ModeCreate creates a new database; an existing file is opened instead.
	ModeCreate Mode = iota
	// ModeUpdate opens an existing database and fails if it is missing.
	ModeUpdate
)

// Property is one custom key/value pair on an entry. Order is preserved as
// written; keys are unique per entry.
type Property struct {
	Key   string
	Value string
}

// Entry is the materialized form of one credential.
type Entry struct {
	Title      string
	Username   string
	Password   string
	Properties []Property
}

// EntryRef is an opaque handle to an entry inside a database implementation.
type EntryRef interface {
	isEntryRef()
}

// Database is the mutation surface the merge engine needs. Implementations
// are not safe for concurrent use; one engine run owns the handle.
type Database interface {
	// FindEntry returns the first entry matching title and username exactly.
	// An empty username only matches entries with an empty username.
	FindEntry(title, username string) (EntryRef, bool, error)
	// TitleInUse reports whether any entry anywhere carries the title.
	TitleInUse(title string) (bool, error)
	// AddEntry creates the entry under the group path (root when empty),
	// creating missing groups along the way.
	AddEntry(group []string, e Entry) (EntryRef, error)
	// UpdateEntry rewrites username, password and properties in place,
	// keeping the entry's title and group.
	UpdateEntry(ref EntryRef, username, password string, props []Property) error
	// EnsureGroup creates the group path if any part of it is missing.
	EnsureGroup(group []string) error
	// Save persists the database. Callers save once per run.
	Save() error
}

// OpenFunc opens or creates a database at path with the master password.
type OpenFunc func(path, password string, mode Mode) (Database, error)
