// Integration tests wiring the real components together over fake
// hardware, stepping time by hand the way the control loop does.
package internal

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/openrover/rover-core/internal/drive"
	"github.com/openrover/rover-core/internal/failsafe"
	"github.com/openrover/rover-core/internal/hw"
	"github.com/openrover/rover-core/internal/indicate"
	"github.com/openrover/rover-core/internal/servo"
	"github.com/openrover/rover-core/internal/telemetry"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// rig is the actuation core on fake hardware. cmds holds the last
// commanded servo directions across ticks, exactly like the loop does.
type rig struct {
	pwm        *hw.FakePWMWriter
	pulses     *hw.FakePulseWriter
	pins       *hw.FakePinWriter
	left       *drive.Motor
	right      *drive.Motor
	servos     *servo.Array
	indicators *indicate.Indicators
	monitor    *failsafe.Monitor
	cmds       [servo.NumServos]servo.Command
}

func newRig(timeout time.Duration) *rig {
	r := &rig{
		pwm:    hw.NewFakePWMWriter(),
		pulses: hw.NewFakePulseWriter(),
		pins:   hw.NewFakePinWriter(),
	}
	r.left = drive.New(r.pwm, hw.ChanLeftForward, hw.ChanLeftReverse, drive.DefaultRampStep)
	r.right = drive.New(r.pwm, hw.ChanRightForward, hw.ChanRightReverse, drive.DefaultRampStep)
	r.servos = servo.New(r.pulses)
	r.indicators = indicate.New(r.pins)
	r.monitor = failsafe.New(timeout, t0, r.left, r.right, r.servos)
	return r
}

// command applies one inbound frame: motor targets, servo directions and
// the freshness refresh.
func (r *rig) command(now time.Time, left, right int, cmds [servo.NumServos]servo.Command) *failsafe.Event {
	r.left.SetTarget(left)
	r.right.SetTarget(right)
	r.cmds = cmds
	return r.monitor.OnCommandReceived(now)
}

// tick advances every component once in loop order.
func (r *rig) tick(now time.Time) *failsafe.Event {
	ev := r.monitor.Tick(now)
	if ev != nil {
		r.cmds = [servo.NumServos]servo.Command{}
	}
	r.left.Update()
	r.right.Update()
	r.servos.Update(r.cmds)
	r.indicators.Update(now, r.left.IsActive(), r.right.IsActive(), r.servos.IsActive(), true)
	return ev
}

func TestFullThrottleRampsOverFortyTicks(t *testing.T) {
	r := newRig(time.Minute)
	r.left.SetTarget(200)
	r.right.SetTarget(200)

	now := t0
	prev := 0
	for i := 0; i < 40; i++ {
		now = now.Add(20 * time.Millisecond)
		r.tick(now)
		cur := r.left.CurrentMagnitude()
		if cur-prev > drive.DefaultRampStep {
			t.Fatalf("tick %d: jumped %d -> %d, step limit is %d", i, prev, cur, drive.DefaultRampStep)
		}
		prev = cur
	}

	if r.left.CurrentMagnitude() != 200 || r.right.CurrentMagnitude() != 200 {
		t.Errorf("magnitudes = %d,%d after 40 ticks, want 200,200",
			r.left.CurrentMagnitude(), r.right.CurrentMagnitude())
	}
	if r.pwm.Duties[hw.ChanLeftForward] != 200 || r.pwm.Duties[hw.ChanLeftReverse] != 0 {
		t.Errorf("left channels = fwd %d rev %d, want 200/0",
			r.pwm.Duties[hw.ChanLeftForward], r.pwm.Duties[hw.ChanLeftReverse])
	}
}

func TestLinkLossStopsEverythingAtTimeout(t *testing.T) {
	r := newRig(failsafe.DefaultTimeout)

	// Last command at t0, then nothing but ticks.
	r.command(t0, 200, -150, [servo.NumServos]servo.Command{servo.Left})

	now := t0
	var trigger *failsafe.Event
	ticks := 0
	for trigger == nil && ticks < 100 {
		now = now.Add(20 * time.Millisecond)
		ticks++
		trigger = r.tick(now)
	}

	if trigger == nil {
		t.Fatal("failsafe never triggered")
	}
	if got := now.Sub(t0); got != 500*time.Millisecond {
		t.Errorf("triggered after %v of silence, want 500ms", got)
	}

	// Drive dead immediately, held angle frozen, not ramped back.
	if r.left.Target() != 0 || r.right.Target() != 0 {
		t.Errorf("targets = %d,%d, want 0,0", r.left.Target(), r.right.Target())
	}
	if r.left.CurrentMagnitude() != 0 {
		t.Errorf("left magnitude = %d, want hard stop to 0", r.left.CurrentMagnitude())
	}
	angleAtTrigger := r.servos.Angle(0)
	for i := 0; i < 25; i++ {
		now = now.Add(20 * time.Millisecond)
		r.tick(now)
	}
	if r.servos.Angle(0) != angleAtTrigger {
		t.Errorf("angle moved %v -> %v after trigger", angleAtTrigger, r.servos.Angle(0))
	}
	if r.monitor.Tick(now) != nil {
		t.Error("trigger must be reported exactly once per silence interval")
	}
}

func TestFreshCommandClearsAndResumes(t *testing.T) {
	r := newRig(failsafe.DefaultTimeout)
	r.command(t0, 0, 0, [servo.NumServos]servo.Command{})

	now := t0.Add(500 * time.Millisecond)
	if ev := r.tick(now); ev == nil || ev.Type != failsafe.EventTrigger {
		t.Fatalf("event = %+v, want trigger", ev)
	}

	// Command 10ms later clears and drives again.
	now = now.Add(10 * time.Millisecond)
	clear := r.command(now, 100, 0, [servo.NumServos]servo.Command{})
	if clear == nil || clear.Type != failsafe.EventClear {
		t.Fatalf("event = %+v, want clear", clear)
	}
	if r.monitor.IsTriggered() {
		t.Error("monitor still triggered after fresh command")
	}
	if r.command(now.Add(10*time.Millisecond), 100, 0, [servo.NumServos]servo.Command{}) != nil {
		t.Error("clear must be reported exactly once")
	}

	for i := 0; i < 20; i++ {
		now = now.Add(20 * time.Millisecond)
		r.tick(now)
	}
	if r.left.CurrentMagnitude() != 100 {
		t.Errorf("left magnitude = %d, want 100 after resuming", r.left.CurrentMagnitude())
	}
}

func TestDeadStorageNeverStopsTheVehicle(t *testing.T) {
	storage := telemetry.NewFakeStorage()
	storage.OpenError = errors.New("no medium")
	tlog := telemetry.New(storage, telemetry.DefaultSyncInterval)

	if err := tlog.Begin(); err == nil {
		t.Fatal("expected begin failure")
	}
	if tlog.IsReady() {
		t.Fatal("log must not be ready after failed begin")
	}

	// 100 writes are silent no-ops while the rig keeps driving.
	r := newRig(time.Minute)
	r.left.SetTarget(50)
	now := t0
	for i := 0; i < 100; i++ {
		now = now.Add(20 * time.Millisecond)
		r.tick(now)
		tlog.LogValue("line")
	}
	if len(storage.Lines) != 0 {
		t.Errorf("storage got %d lines, want none", len(storage.Lines))
	}
	if r.left.CurrentMagnitude() != 50 {
		t.Errorf("left magnitude = %d, want 50", r.left.CurrentMagnitude())
	}
}

func TestScannerBouncesWhileBothMotorsDrive(t *testing.T) {
	r := newRig(time.Minute)
	r.left.SetTarget(100)
	r.right.SetTarget(100)

	now := t0
	var advances []int
	prevIdx := r.indicators.ScannerIndex()
	for i := 0; i < 40; i++ {
		now = now.Add(indicate.ScanPeriod)
		r.tick(now)
		if idx := r.indicators.ScannerIndex(); idx != prevIdx {
			advances = append(advances, idx)
			prevIdx = idx
		}
	}

	if len(advances) < 8 {
		t.Fatalf("only %d scanner advances in 40 scan periods", len(advances))
	}
	for i, idx := range advances {
		if want := (i + 1) % 2; idx != want {
			t.Fatalf("advance %d: index = %d, want %d (sequence %v)", i, idx, want, advances)
		}
	}
}

func TestSyncCadenceOverSession(t *testing.T) {
	storage := telemetry.NewFakeStorage()
	tlog := telemetry.New(storage, telemetry.DefaultSyncInterval)
	if err := tlog.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	baseline := storage.Syncs // separator sync

	for i := 1; i <= 10; i++ {
		tlog.LogValue("line")
	}
	if got := storage.Syncs - baseline; got != 1 {
		t.Errorf("syncs after 10 writes = %d, want 1", got)
	}
	for i := 11; i <= 19; i++ {
		tlog.LogValue("line")
	}
	if got := storage.Syncs - baseline; got != 1 {
		t.Errorf("syncs after 19 writes = %d, want still 1", got)
	}
	tlog.LogValue("line")
	if got := storage.Syncs - baseline; got != 2 {
		t.Errorf("syncs after 20 writes = %d, want 2", got)
	}

	if err := tlog.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if !storage.Closed {
		t.Error("storage should be closed after end")
	}
	if !strings.Contains(storage.Lines[0], telemetry.SessionSeparator) {
		t.Errorf("first line = %q, want session separator", storage.Lines[0])
	}
}
