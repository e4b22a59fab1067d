//go:build !linux

package hw

import "errors"

var errUnsupported = errors.New("hw: not supported on this platform (requires Linux)")

// RealPinWriter is not available on non-Linux platforms.
type RealPinWriter struct{}

// NewRealPinWriter returns an error on non-Linux platforms.
func NewRealPinWriter(pins ...int) (*RealPinWriter, error) {
	return nil, errUnsupported
}

// Write is not implemented on non-Linux platforms.
func (w *RealPinWriter) Write(pin int, high bool) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (w *RealPinWriter) Close() error { return nil }

// SysfsPWMWriter is not available on non-Linux platforms.
type SysfsPWMWriter struct{}

// NewSysfsPWMWriter returns an error on non-Linux platforms.
func NewSysfsPWMWriter(chipDir string, freqHz int, channels ...int) (*SysfsPWMWriter, error) {
	return nil, errUnsupported
}

// Write is not implemented on non-Linux platforms.
func (w *SysfsPWMWriter) Write(channel int, duty int) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (w *SysfsPWMWriter) Close() error { return nil }

// SysfsPulseWriter is not available on non-Linux platforms.
type SysfsPulseWriter struct{}

// ServoFrameCounts is the count resolution of one servo frame.
const ServoFrameCounts = 4096

// NewSysfsPulseWriter returns an error on non-Linux platforms.
func NewSysfsPulseWriter(chipDir string, freqHz int, channels ...int) (*SysfsPulseWriter, error) {
	return nil, errUnsupported
}

// SetPulse is not implemented on non-Linux platforms.
func (w *SysfsPulseWriter) SetPulse(channel int, pulse int) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (w *SysfsPulseWriter) Close() error { return nil }

// RealWatchdog is not available on non-Linux platforms.
type RealWatchdog struct{}

// NewRealWatchdog returns an error on non-Linux platforms.
func NewRealWatchdog(path string) (*RealWatchdog, error) {
	return nil, errUnsupported
}

// Pet is not implemented on non-Linux platforms.
func (w *RealWatchdog) Pet() error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (w *RealWatchdog) Close() error { return nil }
