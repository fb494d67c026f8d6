package kdbx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tobischo/gokeepasslib/v3"
	w "github.com/tobischo/gokeepasslib/v3/wrappers"
)

// Keys KeePass treats as first-class entry fields. Custom properties may
// still use these names; readers resolve the first occurrence.
const (
	keyTitle    = "Title"
	keyUsername = "UserName"
	keyPassword = "Password"
	keyURL      = "URL"
	keyNotes    = "Notes"
)

// FileDatabase implements Database on top of a KDBX4 file via gokeepasslib.
// All mutation happens in memory; Save writes the file atomically.
type FileDatabase struct {
	path string
	db   *gokeepasslib.Database
}

// fileRef addresses an entry by group path and index. Entries are never
// removed, so indices stay valid for the lifetime of the handle.
type fileRef struct {
	group []string
	index int
}

func (fileRef) isEntryRef() {}

// OpenFile opens or creates the KDBX database at path. In ModeUpdate a
// missing file is an error; in ModeCreate an existing file is opened instead
// of being clobbered.
func OpenFile(path, password string, mode Mode) (Database, error) {
	_, statErr := os.Stat(path)
	exists := statErr == nil

	if mode == ModeUpdate && !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if exists {
		return openExisting(path, password)
	}
	return createNew(path, password)
}

func openExisting(path, password string) (*FileDatabase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer f.Close()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	if err := gokeepasslib.NewDecoder(f).Decode(db); err != nil {
		if looksLikeAuthFailure(err) {
			return nil, fmt.Errorf("%w: %v", ErrBadCredentials, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := db.UnlockProtectedEntries(); err != nil {
		return nil, fmt.Errorf("%w: unlock: %v", ErrCorrupt, err)
	}
	return &FileDatabase{path: path, db: db}, nil
}

func createNew(path, password string) (*FileDatabase, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db := gokeepasslib.NewDatabase(gokeepasslib.WithDatabaseKDBXVersion4())
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	db.Content.Meta.DatabaseName = "keyring-export"
	if len(db.Content.Root.Groups) == 0 {
		g := gokeepasslib.NewGroup()
		g.Name = "Root"
		db.Content.Root.Groups = append(db.Content.Root.Groups, g)
	} else {
		db.Content.Root.Groups[0].Name = "Root"
	}
	return &FileDatabase{path: path, db: db}, nil
}

// The decoder does not expose a typed wrong-password error; the HMAC or
// credentials wording is the only signal we get.
func looksLikeAuthFailure(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "password") ||
		strings.Contains(s, "credential") ||
		strings.Contains(s, "hmac")
}

func (d *FileDatabase) root() *gokeepasslib.Group {
	return &d.db.Content.Root.Groups[0]
}

func (d *FileDatabase) FindEntry(title, username string) (EntryRef, bool, error) {
	var found *fileRef
	d.walk(d.root(), nil, func(path []string, idx int, e *gokeepasslib.Entry) bool {
		if e.GetTitle() == title && e.GetContent(keyUsername) == username {
			found = &fileRef{group: append([]string(nil), path...), index: idx}
			return false
		}
		return true
	})
	if found == nil {
		return nil, false, nil
	}
	return *found, true, nil
}

func (d *FileDatabase) TitleInUse(title string) (bool, error) {
	inUse := false
	d.walk(d.root(), nil, func(_ []string, _ int, e *gokeepasslib.Entry) bool {
		if e.GetTitle() == title {
			inUse = true
			return false
		}
		return true
	})
	return inUse, nil
}

// walk visits every entry below g depth-first. Returning false from visit
// stops the walk.
func (d *FileDatabase) walk(g *gokeepasslib.Group, path []string, visit func([]string, int, *gokeepasslib.Entry) bool) bool {
	for i := range g.Entries {
		if !visit(path, i, &g.Entries[i]) {
			return false
		}
	}
	for i := range g.Groups {
		sub := &g.Groups[i]
		if !d.walk(sub, append(path, sub.Name), visit) {
			return false
		}
	}
	return true
}

// resolveGroup walks the path below the root group, optionally creating
// missing segments. Paths are matched by exact name.
func (d *FileDatabase) resolveGroup(path []string, create bool) (*gokeepasslib.Group, error) {
	g := d.root()
	for _, name := range path {
		var next *gokeepasslib.Group
		for i := range g.Groups {
			if g.Groups[i].Name == name {
				next = &g.Groups[i]
				break
			}
		}
		if next == nil {
			if !create {
				return nil, fmt.Errorf("group %q: %w", strings.Join(path, "/"), ErrNotFound)
			}
			sub := gokeepasslib.NewGroup()
			sub.Name = name
			g.Groups = append(g.Groups, sub)
			next = &g.Groups[len(g.Groups)-1]
		}
		g = next
	}
	return g, nil
}

func (d *FileDatabase) EnsureGroup(group []string) error {
	_, err := d.resolveGroup(group, true)
	return err
}

func (d *FileDatabase) AddEntry(group []string, e Entry) (EntryRef, error) {
	g, err := d.resolveGroup(group, true)
	if err != nil {
		return nil, err
	}
	entry := gokeepasslib.NewEntry()
	setValue(&entry, keyTitle, e.Title, false)
	setValue(&entry, keyUsername, e.Username, false)
	setValue(&entry, keyPassword, e.Password, true)
	for _, p := range e.Properties {
		// Appended verbatim, even when the key shadows a first-class field.
		entry.Values = append(entry.Values, gokeepasslib.ValueData{
			Key:   p.Key,
			Value: gokeepasslib.V{Content: p.Value},
		})
	}
	g.Entries = append(g.Entries, entry)
	return fileRef{group: append([]string(nil), group...), index: len(g.Entries) - 1}, nil
}

func (d *FileDatabase) UpdateEntry(ref EntryRef, username, password string, props []Property) error {
	r, ok := ref.(fileRef)
	if !ok {
		return ErrNotFound
	}
	g, err := d.resolveGroup(r.group, false)
	if err != nil {
		return err
	}
	if r.index < 0 || r.index >= len(g.Entries) {
		return ErrNotFound
	}
	entry := &g.Entries[r.index]

	// Rebuild values: keep title/url/notes, replace credentials, replace
	// every custom property with the incoming set.
	kept := make([]gokeepasslib.ValueData, 0, len(entry.Values))
	for _, v := range entry.Values {
		switch v.Key {
		case keyTitle, keyURL, keyNotes:
			kept = append(kept, v)
		}
	}
	entry.Values = kept
	setValue(entry, keyUsername, username, false)
	setValue(entry, keyPassword, password, true)
	for _, p := range props {
		entry.Values = append(entry.Values, gokeepasslib.ValueData{
			Key:   p.Key,
			Value: gokeepasslib.V{Content: p.Value},
		})
	}
	return nil
}

// Save encodes to a sibling temp file and renames it into place so a failed
// write never truncates the previous database.
func (d *FileDatabase) Save() error {
	if err := d.db.LockProtectedEntries(); err != nil {
		return err
	}
	tmp := d.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := gokeepasslib.NewEncoder(f).Encode(d.db); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, d.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return d.db.UnlockProtectedEntries()
}

// setValue replaces the first value with the given key or appends it.
func setValue(e *gokeepasslib.Entry, key, content string, protected bool) {
	v := gokeepasslib.V{Content: content}
	if protected {
		v.Protected = w.NewBoolWrapper(true)
	}
	for i := range e.Values {
		if e.Values[i].Key == key {
			e.Values[i].Value = v
			return
		}
	}
	e.Values = append(e.Values, gokeepasslib.ValueData{Key: key, Value: v})
}
