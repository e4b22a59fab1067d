// Package servo implements the six-channel velocity-ramped servo array.
// Each channel holds an angle and a velocity; discrete direction commands
// select a target velocity, the velocity ramps toward it with asymmetric
// acceleration/braking rates, and the angle integrates the velocity each
// tick.
package servo

import (
	"math"

	"github.com/openrover/rover-core/internal/hw"
)

// NumServos is the channel count of the array.
const NumServos = 6

// Command is a discrete per-channel direction command.
type Command byte

const (
	Neutral Command = iota
	Left
	Right
)

// Angle limits in degrees.
const (
	MinAngle = 0
	MaxAngle = 180
)

// Pulse counts corresponding to MinAngle and MaxAngle on the servo driver.
const (
	MinPulse = 150
	MaxPulse = 600
)

// Default motion tunables.
//
//	MaxSpeed   full-rate angular velocity, degrees per tick
//	AccelRate  per-tick velocity change while speed magnitude is growing
//	DecelRate  per-tick velocity change while braking toward zero
const (
	DefaultMaxSpeed  = 2.0
	DefaultAccelRate = 0.05
	DefaultDecelRate = 0.05
)

// activeThreshold is the velocity magnitude below which a channel counts
// as settled.
const activeThreshold = 0.01

// Array is the six-channel servo actuator.
type Array struct {
	out hw.PulseWriter

	angles      [NumServos]float64
	velocities  [NumServos]float64
	sensitivity [NumServos]float64

	maxSpeed  float64
	accelRate float64
	decelRate float64
}

// New creates an Array with all channels centered at 90 degrees, at rest,
// with unit sensitivity and the default motion tunables.
func New(out hw.PulseWriter) *Array {
	a := &Array{
		out:       out,
		maxSpeed:  DefaultMaxSpeed,
		accelRate: DefaultAccelRate,
		decelRate: DefaultDecelRate,
	}
	for i := range a.angles {
		a.angles[i] = 90
		a.sensitivity[i] = 1.0
	}
	return a
}

// SetRates overrides the motion tunables. Non-positive values keep the
// current setting.
func (a *Array) SetRates(maxSpeed, accelRate, decelRate float64) {
	if maxSpeed > 0 {
		a.maxSpeed = maxSpeed
	}
	if accelRate > 0 {
		a.accelRate = accelRate
	}
	if decelRate > 0 {
		a.decelRate = decelRate
	}
}

// SetSensitivity sets the per-channel speed scale. Out-of-range channels
// are ignored.
func (a *Array) SetSensitivity(channel int, s float64) {
	if channel < 0 || channel >= NumServos {
		return
	}
	a.sensitivity[channel] = s
}

// Update applies one tick: ramps each channel's velocity toward the
// commanded target, integrates the angle, clamps it to [MinAngle, MaxAngle]
// and writes the pulse. Clamping stops integration at the boundary but does
// not zero the velocity; it keeps ramping down normally.
func (a *Array) Update(commands [NumServos]Command) error {
	var firstErr error
	for i := 0; i < NumServos; i++ {
		target := 0.0
		switch commands[i] {
		case Left:
			target = -a.maxSpeed * a.sensitivity[i]
		case Right:
			target = a.maxSpeed * a.sensitivity[i]
		}

		v := a.velocities[i]
		if v < target {
			// Rising. Below zero this shrinks the magnitude: braking.
			rate := a.accelRate
			if v < 0 {
				rate = a.decelRate
			}
			v = math.Min(v+rate, target)
		} else if v > target {
			rate := a.accelRate
			if v > 0 {
				rate = a.decelRate
			}
			v = math.Max(v-rate, target)
		}
		a.velocities[i] = v

		a.angles[i] += v
		if a.angles[i] < MinAngle {
			a.angles[i] = MinAngle
		} else if a.angles[i] > MaxAngle {
			a.angles[i] = MaxAngle
		}

		if err := a.out.SetPulse(i, angleToPulse(a.angles[i])); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// EmergencyStop zeroes all velocities. Angles and the next tick's targets
// are left untouched: a soft stop that halts motion without snapping
// position.
func (a *Array) EmergencyStop() {
	for i := range a.velocities {
		a.velocities[i] = 0
	}
}

// IsActive reports whether any channel is still moving.
func (a *Array) IsActive() bool {
	for _, v := range a.velocities {
		if math.Abs(v) > activeThreshold {
			return true
		}
	}
	return false
}

// Angle returns a channel's current angle in degrees.
func (a *Array) Angle(channel int) float64 {
	return a.angles[channel]
}

// Velocity returns a channel's current velocity in degrees per tick.
func (a *Array) Velocity(channel int) float64 {
	return a.velocities[channel]
}

// Angles returns a copy of all channel angles.
func (a *Array) Angles() [NumServos]float64 {
	return a.angles
}

// angleToPulse maps an angle in [MinAngle, MaxAngle] onto the servo
// driver's pulse count range.
func angleToPulse(angle float64) int {
	return MinPulse + int(angle*(MaxPulse-MinPulse)/float64(MaxAngle-MinAngle))
}
