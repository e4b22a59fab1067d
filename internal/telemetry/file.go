package telemetry

import (
	"fmt"
	"os"
)

// FileStorage persists the log to a local file, the on-disk analog of the
// original SD card medium.
type FileStorage struct {
	path string
	f    *os.File
}

// NewFileStorage creates a FileStorage for the given path. Nothing is
// opened until Open.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Open opens the file with create+append+read/write semantics.
func (s *FileStorage) Open() error {
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	s.f = f
	return nil
}

// WriteLine appends one line.
func (s *FileStorage) WriteLine(line string) error {
	if s.f == nil {
		return fmt.Errorf("storage not open")
	}
	if _, err := fmt.Fprintln(s.f, line); err != nil {
		return fmt.Errorf("append to %s: %w", s.path, err)
	}
	return nil
}

// Sync flushes buffered writes to the medium.
func (s *FileStorage) Sync() error {
	if s.f == nil {
		return fmt.Errorf("storage not open")
	}
	return s.f.Sync()
}

// Close closes the file.
func (s *FileStorage) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
