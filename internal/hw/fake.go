package hw

// FakePinWriter is a test double that records digital line writes.
type FakePinWriter struct {
	// Levels holds the last written level per pin.
	Levels map[int]bool

	// History records every write in order.
	History []PinWrite

	// WriteError, if set, will be returned by Write()
	WriteError error

	// Closed tracks if Close was called
	Closed bool
}

// PinWrite is a single recorded digital write.
type PinWrite struct {
	Pin  int
	High bool
}

// NewFakePinWriter creates a FakePinWriter with no recorded writes.
func NewFakePinWriter() *FakePinWriter {
	return &FakePinWriter{Levels: make(map[int]bool)}
}

// Write records the level for the pin.
func (f *FakePinWriter) Write(pin int, high bool) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Levels[pin] = high
	f.History = append(f.History, PinWrite{Pin: pin, High: high})
	return nil
}

// Close marks the writer as closed.
func (f *FakePinWriter) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakePinWriter) Reset() {
	f.Levels = make(map[int]bool)
	f.History = nil
	f.Closed = false
	f.WriteError = nil
}

// FakePWMWriter is a test double that records PWM duty writes.
type FakePWMWriter struct {
	// Duties holds the last written duty per channel.
	Duties map[int]int

	// History records every write in order.
	History []PWMWrite

	// WriteError, if set, will be returned by Write()
	WriteError error

	// Closed tracks if Close was called
	Closed bool
}

// PWMWrite is a single recorded duty write.
type PWMWrite struct {
	Channel int
	Duty    int
}

// NewFakePWMWriter creates a FakePWMWriter with no recorded writes.
func NewFakePWMWriter() *FakePWMWriter {
	return &FakePWMWriter{Duties: make(map[int]int)}
}

// Write records the duty for the channel.
func (f *FakePWMWriter) Write(channel int, duty int) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Duties[channel] = duty
	f.History = append(f.History, PWMWrite{Channel: channel, Duty: duty})
	return nil
}

// Close marks the writer as closed.
func (f *FakePWMWriter) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakePWMWriter) Reset() {
	f.Duties = make(map[int]int)
	f.History = nil
	f.Closed = false
	f.WriteError = nil
}

// FakePulseWriter is a test double that records servo pulse writes.
type FakePulseWriter struct {
	// Pulses holds the last written pulse count per channel.
	Pulses map[int]int

	// History records every write in order.
	History []PulseWrite

	// WriteError, if set, will be returned by SetPulse()
	WriteError error

	// Closed tracks if Close was called
	Closed bool
}

// PulseWrite is a single recorded pulse write.
type PulseWrite struct {
	Channel int
	Pulse   int
}

// NewFakePulseWriter creates a FakePulseWriter with no recorded writes.
func NewFakePulseWriter() *FakePulseWriter {
	return &FakePulseWriter{Pulses: make(map[int]int)}
}

// SetPulse records the pulse count for the channel.
func (f *FakePulseWriter) SetPulse(channel int, pulse int) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Pulses[channel] = pulse
	f.History = append(f.History, PulseWrite{Channel: channel, Pulse: pulse})
	return nil
}

// Close marks the writer as closed.
func (f *FakePulseWriter) Close() error {
	f.Closed = true
	return nil
}

// FakeWatchdog counts pets for test assertions.
type FakeWatchdog struct {
	Pets int

	// PetError, if set, will be returned by Pet()
	PetError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeWatchdog creates a FakeWatchdog.
func NewFakeWatchdog() *FakeWatchdog {
	return &FakeWatchdog{}
}

// Pet records one liveness acknowledgement.
func (f *FakeWatchdog) Pet() error {
	if f.PetError != nil {
		return f.PetError
	}
	f.Pets++
	return nil
}

// Close marks the watchdog as closed.
func (f *FakeWatchdog) Close() error {
	f.Closed = true
	return nil
}
