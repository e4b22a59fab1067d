// Package indicate implements the status indicator patterns. All four
// patterns are non-blocking software timers advanced by one Update call per
// control-loop tick: a lamp toggles only when the elapsed time since its
// last toggle reaches the pattern period.
package indicate

import (
	"time"

	"github.com/openrover/rover-core/internal/hw"
)

// Pattern periods.
const (
	HeartbeatPeriod = 500 * time.Millisecond
	CommsPeriod     = 50 * time.Millisecond
	ScanPeriod      = 100 * time.Millisecond
	BeaconPeriod    = 100 * time.Millisecond
)

// blinker is the classic software-timer toggle: one lamp, one period.
type blinker struct {
	on         bool
	lastToggle time.Time
}

func (b *blinker) run(pins hw.PinWriter, pin int, period time.Duration, now time.Time) {
	if now.Sub(b.lastToggle) < period {
		return
	}
	b.lastToggle = now
	b.on = !b.on
	pins.Write(pin, b.on)
}

func (b *blinker) forceOff(pins hw.PinWriter, pin int) {
	b.on = false
	pins.Write(pin, false)
}

// Indicators drives the heartbeat, comms, drive-scanner and beacon lamps.
type Indicators struct {
	pins hw.PinWriter

	heartbeat blinker
	comms     blinker

	// Scanner state. The two lamps share one blinker in single-motor
	// mode and a 4-phase bounce machine when both motors are active.
	single       blinker
	lastScan     time.Time
	scanIdx      int
	scanDir      int
	scanPhase    int
	scannerLamps [2]int

	lastBeacon time.Time
	beaconOn   bool
}

// New creates Indicators writing through the given pin writer.
func New(pins hw.PinWriter) *Indicators {
	return &Indicators{
		pins:         pins,
		scanDir:      1,
		scannerLamps: [2]int{hw.PinScannerLeft, hw.PinScannerRight},
	}
}

// Update advances all four patterns for this tick.
func (x *Indicators) Update(now time.Time, leftActive, rightActive, servoActive, commsActive bool) {
	// Heartbeat always runs: proof of life independent of everything else.
	x.heartbeat.run(x.pins, hw.PinHeartbeat, HeartbeatPeriod, now)

	if commsActive {
		x.comms.run(x.pins, hw.PinComms, CommsPeriod, now)
	} else {
		// Forced off so a dead link never leaves a stale blink.
		x.comms.forceOff(x.pins, hw.PinComms)
	}

	x.runScanner(now, leftActive, rightActive)
	x.runBeacon(now, servoActive)
}

// runBeacon holds the lamp solid on while disconnected (the
// attention-getting state) and blinks it while connected.
func (x *Indicators) runBeacon(now time.Time, connected bool) {
	if !connected {
		x.pins.Write(hw.PinBeacon, true)
		x.beaconOn = true
		return
	}
	if now.Sub(x.lastBeacon) < BeaconPeriod {
		return
	}
	x.lastBeacon = now
	x.beaconOn = !x.beaconOn
	x.pins.Write(hw.PinBeacon, x.beaconOn)
}

// runScanner selects between idle, single-lamp blink and the two-lamp
// bounce machine based on which motors are active.
func (x *Indicators) runScanner(now time.Time, leftActive, rightActive bool) {
	switch {
	case !leftActive && !rightActive:
		x.pins.Write(x.scannerLamps[0], false)
		x.pins.Write(x.scannerLamps[1], false)

	case leftActive && rightActive:
		x.runBounce(now)

	case leftActive:
		x.pins.Write(x.scannerLamps[1], false)
		x.single.run(x.pins, x.scannerLamps[0], ScanPeriod, now)

	default: // right only
		x.pins.Write(x.scannerLamps[0], false)
		x.single.run(x.pins, x.scannerLamps[1], ScanPeriod, now)
	}
}

// runBounce advances the 4-phase bounce machine by one phase per scan
// period: light (0), dark (1), light (2), then dark plus an index advance
// with direction reversal at either end (3).
func (x *Indicators) runBounce(now time.Time) {
	if now.Sub(x.lastScan) < ScanPeriod {
		return
	}
	x.lastScan = now

	switch x.scanPhase {
	case 0, 2:
		x.pins.Write(x.scannerLamps[x.scanIdx], true)
	case 1:
		x.pins.Write(x.scannerLamps[x.scanIdx], false)
	case 3:
		x.pins.Write(x.scannerLamps[x.scanIdx], false)
		next := x.scanIdx + x.scanDir
		if next >= len(x.scannerLamps) {
			x.scanDir = -1
			x.scanIdx = 0
		} else if next < 0 {
			x.scanDir = 1
			x.scanIdx = 1
		} else {
			x.scanIdx = next
		}
		x.pins.Write(x.scannerLamps[x.scanIdx], true)
		x.scanPhase = 0
		return
	}
	x.scanPhase++
}

// AllOff extinguishes every lamp. Called on shutdown so the vehicle goes
// dark instead of freezing mid-pattern.
func (x *Indicators) AllOff() {
	x.heartbeat.forceOff(x.pins, hw.PinHeartbeat)
	x.comms.forceOff(x.pins, hw.PinComms)
	x.single.forceOff(x.pins, x.scannerLamps[0])
	x.pins.Write(x.scannerLamps[1], false)
	x.pins.Write(hw.PinBeacon, false)
	x.beaconOn = false
}

// ScannerIndex returns the bounce machine's current lamp index.
func (x *Indicators) ScannerIndex() int {
	return x.scanIdx
}
