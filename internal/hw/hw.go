// Package hw provides hardware write primitives with hardware abstraction.
// The real implementations use the Linux GPIO character device, the kernel
// sysfs PWM interface, and /dev/watchdog. The fake implementations allow
// testing without hardware.
package hw

// PinWriter drives digital output lines (indicator lamps).
type PinWriter interface {
	// Write sets the logical level of a line. true = lit.
	Write(pin int, high bool) error

	// Close releases the lines.
	Close() error
}

// PWMWriter drives PWM duty on the motor drive channels.
type PWMWriter interface {
	// Write sets the duty on a channel, 0 (off) to 255 (full).
	Write(channel int, duty int) error

	// Close zeroes all channels and releases them.
	Close() error
}

// PulseWriter drives servo pulse widths as PCA9685-style counts (0-4095
// per 60Hz frame).
type PulseWriter interface {
	// SetPulse sets the on-count for a servo channel.
	SetPulse(channel int, pulse int) error

	// Close releases the channels.
	Close() error
}

// Watchdog is the hardware liveness timer. Pet must be called every loop
// iteration while the core is healthy; the device resets if it is not.
type Watchdog interface {
	Pet() error

	// Close disarms the watchdog where the hardware supports it.
	Close() error
}

// Indicator line assignments (BCM numbering, carried over from the
// original harness).
const (
	PinScannerLeft  = 10
	PinScannerRight = 11
	PinComms        = 24
	PinBeacon       = 9
	PinHeartbeat    = 13
)

// Motor drive channel assignments on the PWM chip.
const (
	ChanLeftForward  = 0
	ChanLeftReverse  = 1
	ChanRightForward = 2
	ChanRightReverse = 3
)
