// Package export implements the reconciliation engine that merges keyring
// records into a KDBX database: conflict resolution, grouping, verbatim
// attribute preservation and the backup-before-mutation protocol.
package export

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"keyring-export/src/kdbx"
	"keyring-export/src/keyring"
)

// Exporter drives one export run. Runs are strictly sequential; the database
// handle is owned by the run for its duration.
type Exporter struct {
	store keyring.Store
	open  kdbx.OpenFunc
	opts  Options
	log   zerolog.Logger
}

// New builds an exporter over a credential store and a database opener.
func New(store keyring.Store, open kdbx.OpenFunc, opts Options) *Exporter {
	return &Exporter{store: store, open: open, opts: opts, log: opts.Logger}
}

// Run enumerates the store and merges every record into the database.
//
// Fatal conditions (unreachable store, backup failure, bad master password,
// corrupt or missing database, failed save) abort immediately and return no
// result. A single record's failure only increments the error counter; the
// batch always runs to completion and the database is saved exactly once.
// Nothing on disk is touched before the backup (if any) has succeeded.
func (e *Exporter) Run() (*Result, error) {
	result := &Result{}

	records, err := e.store.Credentials()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	result.Total = len(records)
	e.log.Info().Int("count", result.Total).Str("backend", e.store.Name()).Msg("read keyring credentials")

	if e.opts.Backup {
		if _, err := os.Stat(e.opts.OutputPath); err == nil {
			e.log.Info().Str("path", BackupPath(e.opts.OutputPath)).Msg("creating backup")
			if err := createBackup(e.opts.OutputPath); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBackupFailed, err)
			}
		}
	}

	mode := kdbx.ModeCreate
	if e.opts.Update {
		mode = kdbx.ModeUpdate
	}
	db, err := e.open(e.opts.OutputPath, e.opts.Password, mode)
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		e.mergeRecord(db, rec, result)
	}

	if err := db.Save(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	e.log.Info().
		Int("total", result.Total).
		Int("added", result.Added).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("errors", result.Errored).
		Msg("export finished")
	return result, nil
}

// mergeRecord processes one record: resolve, group, materialize. Failures
// are recorded on the result and never propagate.
func (e *Exporter) mergeRecord(db kdbx.Database, rec keyring.Record, result *Result) {
	if err := validateRecord(rec); err != nil {
		e.log.Warn().Str("record", rec.ID()).Err(err).Msg("invalid record")
		result.fail(rec.ID(), FailureInvalidRecord, err)
		return
	}

	decision, err := resolveConflict(db, rec, e.opts.OnConflict)
	if err != nil {
		e.log.Warn().Str("record", rec.ID()).Err(err).Msg("conflict lookup failed")
		result.fail(rec.ID(), FailureLookup, err)
		return
	}

	switch decision.Action {
	case ActionSkip:
		e.log.Debug().Str("record", rec.ID()).Msg("skipping existing entry")
		result.Skipped++

	case ActionOverwrite:
		err := db.UpdateEntry(decision.Existing, rec.Username, rec.Password, Properties(rec.Attributes))
		if err != nil {
			result.fail(rec.ID(), FailureWrite, err)
			return
		}
		e.log.Debug().Str("record", rec.ID()).Msg("overwrote entry")
		result.Updated++

	case ActionAdd:
		group := GroupPath(rec.Service, e.opts.GroupBy)
		if err := db.EnsureGroup(group); err != nil {
			result.fail(rec.ID(), FailureWrite, err)
			return
		}
		entry := kdbx.Entry{
			Title:      decision.Title,
			Username:   rec.Username,
			Password:   rec.Password,
			Properties: Properties(rec.Attributes),
		}
		if _, err := db.AddEntry(group, entry); err != nil {
			result.fail(rec.ID(), FailureWrite, err)
			return
		}
		e.log.Debug().Str("record", rec.ID()).Str("title", decision.Title).Msg("added entry")
		result.Added++
	}
}

func validateRecord(rec keyring.Record) error {
	if rec.Service == "" {
		return fmt.Errorf("record has empty service")
	}
	return validateAttributes(rec.Attributes)
}
