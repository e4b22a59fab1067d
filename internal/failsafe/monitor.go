// Package failsafe implements the command-freshness watchdog. When no
// command has arrived for the configured timeout the monitor drives every
// registered actuator to its emergency-stop state and reports the
// transition exactly once; a fresh command clears it, again exactly once.
package failsafe

import "time"

// DefaultTimeout is the silence interval after which the failsafe fires.
const DefaultTimeout = 500 * time.Millisecond

// Stopper is an actuator that can be driven to its safe state.
type Stopper interface {
	EmergencyStop()
}

// EventType identifies a failsafe state transition.
type EventType string

const (
	EventTrigger EventType = "FAILSAFE_TRIGGER"
	EventClear   EventType = "FAILSAFE_CLEAR"
)

// Event is a single failsafe transition.
type Event struct {
	Timestamp time.Time
	Type      EventType

	// Silence is the command gap at the moment of the transition.
	Silence time.Duration
}

// Monitor tracks inbound command freshness.
type Monitor struct {
	timeout     time.Duration
	lastCommand time.Time
	triggered   bool
	stoppers    []Stopper
}

// New creates a Monitor. start seeds the freshness clock so boot itself
// counts as the beginning of a silence interval. timeout <= 0 selects
// DefaultTimeout.
func New(timeout time.Duration, start time.Time, stoppers ...Stopper) *Monitor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Monitor{
		timeout:     timeout,
		lastCommand: start,
		stoppers:    stoppers,
	}
}

// OnCommandReceived records a fresh command. If the failsafe was triggered
// it clears and returns the clear event; repeated commands while already
// clear return nil.
func (m *Monitor) OnCommandReceived(now time.Time) *Event {
	silence := now.Sub(m.lastCommand)
	m.lastCommand = now
	if !m.triggered {
		return nil
	}
	m.triggered = false
	return &Event{Timestamp: now, Type: EventClear, Silence: silence}
}

// Tick checks freshness against the timeout. On expiry it stops every
// registered actuator and returns the trigger event; repeated ticks during
// the same silence interval return nil.
func (m *Monitor) Tick(now time.Time) *Event {
	if m.triggered {
		return nil
	}
	silence := now.Sub(m.lastCommand)
	if silence < m.timeout {
		return nil
	}
	m.triggered = true
	for _, s := range m.stoppers {
		s.EmergencyStop()
	}
	return &Event{Timestamp: now, Type: EventTrigger, Silence: silence}
}

// IsTriggered reports whether the failsafe is currently engaged.
func (m *Monitor) IsTriggered() bool {
	return m.triggered
}

// Timeout returns the configured silence limit.
func (m *Monitor) Timeout() time.Duration {
	return m.timeout
}
