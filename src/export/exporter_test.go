package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyring-export/src/kdbx"
	"keyring-export/src/keyring"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		OutputPath: filepath.Join(t.TempDir(), "vault.kdbx"),
		Password:   "hunter22",
		Logger:     zerolog.Nop(),
	}
}

func record(service, username string) keyring.Record {
	return keyring.Record{Service: service, Username: username, Password: "pw-" + username}
}

func TestRun_AddsAllNewRecords(t *testing.T) {
	db := kdbx.NewFake()
	store := keyring.NewFake(
		record("github.com", "alice"),
		record("gitlab.com", "bob"),
	)
	result, err := New(store, kdbx.OpenFake(db), testOptions(t)).Run()
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 0, result.Errored)
	require.Len(t, db.Entries, 2)
	// Default grouping is by service.
	assert.Equal(t, []string{"github.com"}, db.Entries[0].Group)
	assert.Equal(t, 1, db.Saves)
}

func TestRun_SkipLeavesExistingUntouched(t *testing.T) {
	db := kdbx.NewFake()
	_, err := db.AddEntry(nil, kdbx.Entry{Title: "github.com", Username: "alice", Password: "original"})
	require.NoError(t, err)

	store := keyring.NewFake(record("github.com", "alice"))
	result, err := New(store, kdbx.OpenFake(db), testOptions(t)).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Added)
	require.Len(t, db.Entries, 1)
	assert.Equal(t, "original", db.Entries[0].Password, "skip must not modify the entry")
}

func TestRun_OverwriteReplacesCredentials(t *testing.T) {
	db := kdbx.NewFake()
	_, err := db.AddEntry(nil, kdbx.Entry{
		Title: "github.com", Username: "alice", Password: "original",
		Properties: []kdbx.Property{{Key: "stale", Value: "yes"}},
	})
	require.NoError(t, err)

	rec := record("github.com", "alice")
	rec.Attributes = map[string]string{"service": "github.com"}
	opts := testOptions(t)
	opts.OnConflict = ConflictOverwrite

	result, err := New(keyring.NewFake(rec), kdbx.OpenFake(db), opts).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Added)
	require.Len(t, db.Entries, 1)
	assert.Equal(t, "pw-alice", db.Entries[0].Password)
	assert.Equal(t, []kdbx.Property{{Key: "service", Value: "github.com"}}, db.Entries[0].Properties)
}

func TestRun_RenameSuffixes(t *testing.T) {
	db := kdbx.NewFake()
	for _, title := range []string{"github.com", "github.com (1)", "github.com (2)"} {
		_, err := db.AddEntry(nil, kdbx.Entry{Title: title, Username: "alice"})
		require.NoError(t, err)
	}
	opts := testOptions(t)
	opts.OnConflict = ConflictRename

	result, err := New(keyring.NewFake(record("github.com", "alice")), kdbx.OpenFake(db), opts).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	assert.Equal(t, "github.com (3)", db.Entries[len(db.Entries)-1].Title)
}

func TestRun_GroupingCreatesEachGroupOnce(t *testing.T) {
	db := kdbx.NewFake()
	store := keyring.NewFake(
		record("https://api.example.com/login", "alice"),
		record("example.com", "bob"),
	)
	opts := testOptions(t)
	opts.GroupBy = GroupDomain

	result, err := New(store, kdbx.OpenFake(db), opts).Run()
	require.NoError(t, err)

	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, db.GroupsCreated, "both records share example.com")
	for _, e := range db.Entries {
		assert.Equal(t, []string{"example.com"}, e.Group)
	}
}

func TestRun_AttributeRoundTrip(t *testing.T) {
	db := kdbx.NewFake()
	rec := record("github.com", "alice")
	rec.Attributes = map[string]string{
		"service":    "github.com",
		"username":   "alice",
		"xdg:schema": "org.freedesktop.Secret.Generic",
	}
	_, err := New(keyring.NewFake(rec), kdbx.OpenFake(db), testOptions(t)).Run()
	require.NoError(t, err)

	require.Len(t, db.Entries, 1)
	got := map[string]string{}
	for _, p := range db.Entries[0].Properties {
		got[p.Key] = p.Value
	}
	assert.Equal(t, rec.Attributes, got)
}

func TestRun_PartialFailureContinues(t *testing.T) {
	db := kdbx.NewFake()
	records := make([]keyring.Record, 0, 10)
	for i := 1; i <= 10; i++ {
		rec := record(fmt.Sprintf("service-%d", i), "alice")
		if i == 5 {
			rec.Attributes = map[string]string{"": "malformed"}
		}
		records = append(records, rec)
	}

	result, err := New(keyring.NewFake(records...), kdbx.OpenFake(db), testOptions(t)).Run()
	require.NoError(t, err)

	assert.Equal(t, 10, result.Total)
	assert.Equal(t, 9, result.Added)
	assert.Equal(t, 1, result.Errored)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "service-5/alice", result.Failures[0].ID)
	assert.Equal(t, FailureInvalidRecord, result.Failures[0].Kind)
	assert.Equal(t, 1, db.Saves, "partial failure must not prevent the save")
}

func TestRun_LookupFailureIsRecoverable(t *testing.T) {
	db := kdbx.NewFake()
	db.FindErr = errors.New("index unavailable")

	result, err := New(keyring.NewFake(record("github.com", "alice")), kdbx.OpenFake(db), testOptions(t)).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, result.Errored)
	assert.Equal(t, FailureLookup, result.Failures[0].Kind)
	assert.Equal(t, 1, db.Saves)
}

func TestRun_EmptySourceStillSavesOnce(t *testing.T) {
	db := kdbx.NewFake()
	result, err := New(keyring.NewFake(), kdbx.OpenFake(db), testOptions(t)).Run()
	require.NoError(t, err)

	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 1, db.Saves)
}

func TestRun_SourceUnavailableIsFatal(t *testing.T) {
	store := keyring.NewFake()
	store.Err = errors.New("no session bus")

	result, err := New(store, kdbx.OpenFake(kdbx.NewFake()), testOptions(t)).Run()
	require.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Nil(t, result)
}

func TestRun_OpenFailureIsFatal(t *testing.T) {
	open := func(string, string, kdbx.Mode) (kdbx.Database, error) {
		return nil, kdbx.ErrBadCredentials
	}
	result, err := New(keyring.NewFake(record("a", "b")), open, testOptions(t)).Run()
	require.ErrorIs(t, err, kdbx.ErrBadCredentials)
	assert.Nil(t, result)
}

func TestRun_SaveFailureIsFatal(t *testing.T) {
	db := kdbx.NewFake()
	db.SaveErr = errors.New("disk full")

	result, err := New(keyring.NewFake(record("a", "b")), kdbx.OpenFake(db), testOptions(t)).Run()
	require.ErrorIs(t, err, ErrSaveFailed)
	assert.Nil(t, result)
}

func TestRun_BackupBeforeMutation(t *testing.T) {
	opts := testOptions(t)
	opts.Backup = true
	opts.Update = true
	seed := []byte("pre-run database bytes")
	require.NoError(t, os.WriteFile(opts.OutputPath, seed, 0o600))

	db := kdbx.NewFake()
	// Even a failing run must leave the backup behind.
	db.SaveErr = errors.New("disk full")

	_, err := New(keyring.NewFake(record("a", "b")), kdbx.OpenFake(db), opts).Run()
	require.ErrorIs(t, err, ErrSaveFailed)

	got, readErr := os.ReadFile(BackupPath(opts.OutputPath))
	require.NoError(t, readErr)
	assert.Equal(t, seed, got, "backup must be byte-identical to the pre-run database")
}

func TestRun_BackupFailureAbortsBeforeOpen(t *testing.T) {
	opts := testOptions(t)
	opts.Backup = true
	opts.Update = true
	require.NoError(t, os.WriteFile(opts.OutputPath, []byte("x"), 0o600))
	// A directory at the backup path makes the copy fail.
	require.NoError(t, os.Mkdir(BackupPath(opts.OutputPath), 0o755))

	opened := false
	open := func(string, string, kdbx.Mode) (kdbx.Database, error) {
		opened = true
		return kdbx.NewFake(), nil
	}
	result, err := New(keyring.NewFake(record("a", "b")), open, opts).Run()
	require.ErrorIs(t, err, ErrBackupFailed)
	assert.Nil(t, result)
	assert.False(t, opened, "database must not be opened after a failed backup")
}

func TestRun_SkippedBackupWhenTargetMissing(t *testing.T) {
	opts := testOptions(t)
	opts.Backup = true

	db := kdbx.NewFake()
	_, err := New(keyring.NewFake(record("a", "b")), kdbx.OpenFake(db), opts).Run()
	require.NoError(t, err)
	_, statErr := os.Stat(BackupPath(opts.OutputPath))
	assert.True(t, os.IsNotExist(statErr), "no backup should exist when the target did not pre-exist")
}
