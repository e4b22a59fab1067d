// Package telemetry implements the append-only, crash-tolerant telemetry
// log. Durability is batched: writes accumulate and the storage medium is
// synced once every SyncInterval lines, trading some loss on power-cut for
// throughput and media wear. Logging is best-effort and never blocks the
// control loop on a storage fault.
package telemetry

import "fmt"

// DefaultSyncInterval is the number of writes between forced syncs.
const DefaultSyncInterval = 10

// SessionSeparator is written at the start of every session so runs are
// distinguishable in the one growing file.
const SessionSeparator = "--- NEW SESSION ---"

// Storage is the persistence medium behind the log.
type Storage interface {
	// Open prepares the medium with create+append+read/write semantics.
	Open() error

	// WriteLine appends one line.
	WriteLine(line string) error

	// Sync forces buffered writes onto the medium.
	Sync() error

	// Close releases the medium.
	Close() error
}

// Log is the append-only telemetry logger.
type Log struct {
	storage      Storage
	syncInterval int

	ready  bool
	opened bool
	writes int
	err    error
}

// New creates a Log over the given storage. syncInterval <= 0 selects
// DefaultSyncInterval.
func New(storage Storage, syncInterval int) *Log {
	if syncInterval <= 0 {
		syncInterval = DefaultSyncInterval
	}
	return &Log{storage: storage, syncInterval: syncInterval}
}

// Begin opens the storage and starts a session. Idempotent: if the log is
// already ready it returns nil immediately. On failure the log stays
// not-ready and no retry is attempted (fail fast rather than stall boot).
func (l *Log) Begin() error {
	if l.ready {
		return nil
	}

	if err := l.storage.Open(); err != nil {
		l.err = fmt.Errorf("open storage: %w", err)
		return l.err
	}
	l.opened = true

	if err := l.storage.WriteLine(SessionSeparator); err != nil {
		l.err = fmt.Errorf("write session separator: %w", err)
		return l.err
	}
	if err := l.storage.Sync(); err != nil {
		l.err = fmt.Errorf("sync session separator: %w", err)
		return l.err
	}

	l.writes = 0
	l.err = nil
	l.ready = true
	return nil
}

// LogValue appends one line. A no-op unless Begin succeeded. A storage
// fault marks the log not-ready for the rest of the session; it never
// propagates into the control loop.
func (l *Log) LogValue(line string) {
	if !l.ready {
		return
	}

	if err := l.storage.WriteLine(line); err != nil {
		l.ready = false
		l.err = fmt.Errorf("write: %w", err)
		return
	}

	l.writes++
	if l.writes >= l.syncInterval {
		if err := l.storage.Sync(); err != nil {
			l.ready = false
			l.err = fmt.Errorf("sync: %w", err)
			return
		}
		l.writes = 0
	}
}

// End syncs and closes the storage if it was opened. Idempotent.
func (l *Log) End() error {
	if !l.opened {
		l.ready = false
		return nil
	}
	l.opened = false
	l.ready = false

	if err := l.storage.Sync(); err != nil {
		l.storage.Close()
		return fmt.Errorf("final sync: %w", err)
	}
	if err := l.storage.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}

// IsReady reports whether lines are currently being persisted.
func (l *Log) IsReady() bool {
	return l.ready
}

// Err returns the fault that took the log out of service, if any.
func (l *Log) Err() error {
	return l.err
}
