package keyring

// FakeStore is an in-memory implementation for unit tests.
type FakeStore struct {
	Records []Record
	// Err, when set, is returned by Credentials to simulate an
	// unreachable backend.
	Err error
}

// NewFake returns an empty fake store.
func NewFake(records ...Record) *FakeStore {
	return &FakeStore{Records: records}
}

func (f *FakeStore) Name() string { return "fake" }

func (f *FakeStore) Credentials() ([]Record, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]Record, len(f.Records))
	copy(out, f.Records)
	return out, nil
}
