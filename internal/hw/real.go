//go:build linux

package hw

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/warthog618/go-gpiocdev"
)

// RealPinWriter drives indicator lines through the Linux GPIO character
// device.
type RealPinWriter struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewRealPinWriter requests the given pins as outputs, initially low.
func NewRealPinWriter(pins ...int) (*RealPinWriter, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	w := &RealPinWriter{chip: chip, lines: make(map[int]*gpiocdev.Line)}
	for _, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("request pin %d: %w", pin, err)
		}
		w.lines[pin] = line
	}
	return w, nil
}

// Write sets the level of a previously requested line.
func (w *RealPinWriter) Write(pin int, high bool) error {
	line, ok := w.lines[pin]
	if !ok {
		return fmt.Errorf("pin %d not requested", pin)
	}
	v := 0
	if high {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set pin %d: %w", pin, err)
	}
	return nil
}

// Close lowers and releases all lines, then closes the chip.
func (w *RealPinWriter) Close() error {
	var errs []error
	for pin, line := range w.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("lower pin %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// SysfsPWMWriter drives motor channels through the kernel sysfs PWM
// interface. Duty 0-255 maps linearly onto the configured period.
type SysfsPWMWriter struct {
	chipDir  string
	periodNs int
	channels []int
}

// NewSysfsPWMWriter exports and enables the given channels on a pwmchip
// at the given frequency, all starting at zero duty.
func NewSysfsPWMWriter(chipDir string, freqHz int, channels ...int) (*SysfsPWMWriter, error) {
	if freqHz <= 0 {
		return nil, fmt.Errorf("invalid pwm frequency %d", freqHz)
	}
	w := &SysfsPWMWriter{
		chipDir:  chipDir,
		periodNs: int(1e9) / freqHz,
		channels: channels,
	}
	for _, ch := range channels {
		if err := w.exportChannel(ch); err != nil {
			w.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *SysfsPWMWriter) exportChannel(ch int) error {
	dir := w.channelDir(ch)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := writeSysfs(filepath.Join(w.chipDir, "export"), strconv.Itoa(ch)); err != nil {
			return fmt.Errorf("export pwm channel %d: %w", ch, err)
		}
	}
	if err := writeSysfs(filepath.Join(dir, "period"), strconv.Itoa(w.periodNs)); err != nil {
		return fmt.Errorf("set period on channel %d: %w", ch, err)
	}
	if err := writeSysfs(filepath.Join(dir, "duty_cycle"), "0"); err != nil {
		return fmt.Errorf("zero duty on channel %d: %w", ch, err)
	}
	if err := writeSysfs(filepath.Join(dir, "enable"), "1"); err != nil {
		return fmt.Errorf("enable channel %d: %w", ch, err)
	}
	return nil
}

// Write sets the duty on a channel, clamping to 0-255.
func (w *SysfsPWMWriter) Write(channel int, duty int) error {
	if duty < 0 {
		duty = 0
	}
	if duty > 255 {
		duty = 255
	}
	ns := w.periodNs / 255 * duty
	path := filepath.Join(w.channelDir(channel), "duty_cycle")
	if err := writeSysfs(path, strconv.Itoa(ns)); err != nil {
		return fmt.Errorf("set duty on channel %d: %w", channel, err)
	}
	return nil
}

// Close zeroes, disables and unexports all channels.
func (w *SysfsPWMWriter) Close() error {
	var errs []error
	for _, ch := range w.channels {
		dir := w.channelDir(ch)
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := writeSysfs(filepath.Join(dir, "duty_cycle"), "0"); err != nil {
			errs = append(errs, err)
		}
		if err := writeSysfs(filepath.Join(dir, "enable"), "0"); err != nil {
			errs = append(errs, err)
		}
		if err := writeSysfs(filepath.Join(w.chipDir, "unexport"), strconv.Itoa(ch)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func (w *SysfsPWMWriter) channelDir(ch int) string {
	return filepath.Join(w.chipDir, fmt.Sprintf("pwm%d", ch))
}

// SysfsPulseWriter drives servo channels through a second sysfs PWM chip,
// taking PCA9685-style on-counts (0-4095 of a 60Hz frame).
type SysfsPulseWriter struct {
	pwm *SysfsPWMWriter
}

// ServoFrameCounts is the count resolution of one servo frame.
const ServoFrameCounts = 4096

// NewSysfsPulseWriter exports and enables the given servo channels at the
// given frame rate.
func NewSysfsPulseWriter(chipDir string, freqHz int, channels ...int) (*SysfsPulseWriter, error) {
	pwm, err := NewSysfsPWMWriter(chipDir, freqHz, channels...)
	if err != nil {
		return nil, err
	}
	return &SysfsPulseWriter{pwm: pwm}, nil
}

// SetPulse sets the on-count for a servo channel.
func (w *SysfsPulseWriter) SetPulse(channel int, pulse int) error {
	if pulse < 0 {
		pulse = 0
	}
	if pulse >= ServoFrameCounts {
		pulse = ServoFrameCounts - 1
	}
	ns := w.pwm.periodNs / ServoFrameCounts * pulse
	path := filepath.Join(w.pwm.channelDir(channel), "duty_cycle")
	if err := writeSysfs(path, strconv.Itoa(ns)); err != nil {
		return fmt.Errorf("set pulse on channel %d: %w", channel, err)
	}
	return nil
}

// Close zeroes and releases the channels.
func (w *SysfsPulseWriter) Close() error {
	return w.pwm.Close()
}

func writeSysfs(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(value); err != nil {
		return err
	}
	return nil
}

// RealWatchdog pets the kernel watchdog device.
type RealWatchdog struct {
	f *os.File
}

// NewRealWatchdog opens the watchdog device (typically /dev/watchdog).
// Opening it arms the timer; the loop must pet it from then on.
func NewRealWatchdog(path string) (*RealWatchdog, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open watchdog: %w", err)
	}
	return &RealWatchdog{f: f}, nil
}

// Pet acknowledges liveness.
func (w *RealWatchdog) Pet() error {
	if _, err := w.f.WriteString("1"); err != nil {
		return fmt.Errorf("pet watchdog: %w", err)
	}
	return nil
}

// Close writes the magic disarm character before closing, so a clean
// shutdown does not trigger a reset.
func (w *RealWatchdog) Close() error {
	if _, err := w.f.WriteString("V"); err != nil {
		w.f.Close()
		return fmt.Errorf("disarm watchdog: %w", err)
	}
	return w.f.Close()
}
