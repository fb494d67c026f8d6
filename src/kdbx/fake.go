package kdbx

import "strings"

// FakeDatabase is an in-memory implementation for unit tests. It records how
// often groups are created and saves happen so tests can assert the engine's
// exactly-once guarantees.
type FakeDatabase struct {
	Entries []*FakeEntry
	// groups holds ensured paths; GroupsCreated counts actual creations.
	groups        map[string]bool
	GroupsCreated int
	Saves         int

	// Injectable failures.
	FindErr error
	AddErr  error
	SaveErr error
}

// FakeEntry is one stored entry plus its group placement.
type FakeEntry struct {
	Entry
	Group []string
}

type fakeRef struct{ e *FakeEntry }

func (fakeRef) isEntryRef() {}

// NewFake returns an empty in-memory database.
func NewFake() *FakeDatabase {
	return &FakeDatabase{groups: map[string]bool{}}
}

// OpenFake is an OpenFunc that ignores path and password and returns db.
// Handy for wiring a prepared fake into the engine.
func OpenFake(db *FakeDatabase) OpenFunc {
	return func(string, string, Mode) (Database, error) { return db, nil }
}

func (f *FakeDatabase) FindEntry(title, username string) (EntryRef, bool, error) {
	if f.FindErr != nil {
		return nil, false, f.FindErr
	}
	for _, e := range f.Entries {
		if e.Title == title && e.Username == username {
			return fakeRef{e: e}, true, nil
		}
	}
	return nil, false, nil
}

func (f *FakeDatabase) TitleInUse(title string) (bool, error) {
	if f.FindErr != nil {
		return false, f.FindErr
	}
	for _, e := range f.Entries {
		if e.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeDatabase) AddEntry(group []string, e Entry) (EntryRef, error) {
	if f.AddErr != nil {
		return nil, f.AddErr
	}
	if err := f.EnsureGroup(group); err != nil {
		return nil, err
	}
	fe := &FakeEntry{Entry: e, Group: append([]string(nil), group...)}
	f.Entries = append(f.Entries, fe)
	return fakeRef{e: fe}, nil
}

func (f *FakeDatabase) UpdateEntry(ref EntryRef, username, password string, props []Property) error {
	r, ok := ref.(fakeRef)
	if !ok {
		return ErrNotFound
	}
	r.e.Username = username
	r.e.Password = password
	r.e.Properties = append([]Property(nil), props...)
	return nil
}

func (f *FakeDatabase) EnsureGroup(group []string) error {
	if len(group) == 0 {
		return nil
	}
	key := strings.Join(group, "\x00")
	if !f.groups[key] {
		f.groups[key] = true
		f.GroupsCreated++
	}
	return nil
}

func (f *FakeDatabase) Save() error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.Saves++
	return nil
}
