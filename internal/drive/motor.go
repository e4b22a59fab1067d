// Package drive implements the ramped motor actuator. A motor holds one
// signed magnitude and derives the two drive channel duties from it at the
// output boundary, so forward and reverse can never be driven at the same
// time. Time is advanced by the control loop calling Update once per tick.
package drive

import "github.com/openrover/rover-core/internal/hw"

// MaxMagnitude is the full-scale drive magnitude in either direction.
const MaxMagnitude = 255

// DefaultRampStep is the per-tick magnitude change limit.
const DefaultRampStep = 5

// Motor ramps a signed magnitude toward a target and splits it across a
// forward and a reverse PWM channel.
type Motor struct {
	pwm        hw.PWMWriter
	fwdChannel int
	revChannel int

	target  int
	current int
	step    int
}

// New creates a Motor driving the given channels. step <= 0 selects
// DefaultRampStep.
func New(pwm hw.PWMWriter, fwdChannel, revChannel, step int) *Motor {
	if step <= 0 {
		step = DefaultRampStep
	}
	return &Motor{
		pwm:        pwm,
		fwdChannel: fwdChannel,
		revChannel: revChannel,
		step:       step,
	}
}

// SetTarget stores the requested magnitude, clamped to
// [-MaxMagnitude, MaxMagnitude].
func (m *Motor) SetTarget(v int) {
	m.target = clamp(v, -MaxMagnitude, MaxMagnitude)
}

// Update moves the current magnitude toward the target by at most one ramp
// step, snapping exactly onto the target when within one step, then writes
// both channel duties. Exactly one channel is nonzero at any time.
func (m *Motor) Update() error {
	if m.current < m.target {
		m.current = min(m.current+m.step, m.target)
	} else if m.current > m.target {
		m.current = max(m.current-m.step, m.target)
	}
	return m.writeChannels()
}

// EmergencyStop hard-stops the motor: target, current and both channels go
// to zero in this call, bypassing the ramp. Safe to call at any time and
// idempotent.
func (m *Motor) EmergencyStop() {
	m.target = 0
	m.current = 0
	// Write errors are deliberately dropped here: the zeroed state is what
	// matters, and the next Update rewrites zero duties anyway.
	m.pwm.Write(m.fwdChannel, 0)
	m.pwm.Write(m.revChannel, 0)
}

// CurrentMagnitude returns the ramped magnitude last applied.
func (m *Motor) CurrentMagnitude() int {
	return m.current
}

// Target returns the clamped target magnitude.
func (m *Motor) Target() int {
	return m.target
}

// IsActive reports whether the motor is currently driven.
func (m *Motor) IsActive() bool {
	return m.current != 0
}

func (m *Motor) writeChannels() error {
	fwd, rev := 0, 0
	if m.current >= 0 {
		fwd = m.current
	} else {
		rev = -m.current
	}
	if err := m.pwm.Write(m.fwdChannel, fwd); err != nil {
		return err
	}
	return m.pwm.Write(m.revChannel, rev)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
