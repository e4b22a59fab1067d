// Package status provides a thread-safe status tracker for the rover-core
// daemon. It is updated from the control loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/openrover/rover-core/internal/servo"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs            int64
	FailsafeTimeoutMs int64
	SyncInterval      int
	Broker            string
	HTTPAddr          string
	LogFile           string
}

// EventCounts tracks notable loop events since startup.
type EventCounts struct {
	FailsafeTriggers int
	FailsafeClears   int
	CommandFrames    int
	DecodeErrors     int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	LeftMagnitude     int
	RightMagnitude    int
	ServoAngles       [servo.NumServos]float64
	ServoActive       bool
	FailsafeTriggered bool
	LogReady          bool
	Counts            EventCounts
	StartTime         time.Time
	Now               time.Time
	MQTTConnected     bool
	Config            Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the per-tick loop state.
// Called from runLoop on every tick.
func (t *Tracker) Update(left, right int, angles [servo.NumServos]float64, servoActive, failsafeTriggered, logReady bool) {
	t.mu.Lock()
	t.snap.LeftMagnitude = left
	t.snap.RightMagnitude = right
	t.snap.ServoAngles = angles
	t.snap.ServoActive = servoActive
	t.snap.FailsafeTriggered = failsafeTriggered
	t.snap.LogReady = logReady
	t.mu.Unlock()
}

// SetCounts sets the event counters.
func (t *Tracker) SetCounts(counts EventCounts) {
	t.mu.Lock()
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
