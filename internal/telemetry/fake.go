package telemetry

// FakeStorage is a test double that records lines and syncs, with
// scriptable failures.
type FakeStorage struct {
	// Lines contains every line written, in order.
	Lines []string

	// Syncs counts Sync calls.
	Syncs int

	// Opened and Closed track lifecycle calls.
	Opened bool
	Closed bool

	// OpenError, if set, will be returned by Open()
	OpenError error

	// WriteError, if set, will be returned by WriteLine()
	WriteError error

	// SyncError, if set, will be returned by Sync()
	SyncError error
}

// NewFakeStorage creates an empty FakeStorage.
func NewFakeStorage() *FakeStorage {
	return &FakeStorage{}
}

// Open marks the storage as opened.
func (s *FakeStorage) Open() error {
	if s.OpenError != nil {
		return s.OpenError
	}
	s.Opened = true
	s.Closed = false
	return nil
}

// WriteLine records the line.
func (s *FakeStorage) WriteLine(line string) error {
	if s.WriteError != nil {
		return s.WriteError
	}
	s.Lines = append(s.Lines, line)
	return nil
}

// Sync counts the call.
func (s *FakeStorage) Sync() error {
	if s.SyncError != nil {
		return s.SyncError
	}
	s.Syncs++
	return nil
}

// Close marks the storage as closed.
func (s *FakeStorage) Close() error {
	s.Closed = true
	return nil
}
