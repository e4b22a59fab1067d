package status

import (
	"sync"
	"testing"
	"time"

	"github.com/openrover/rover-core/internal/servo"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNewTrackerHoldsConfig(t *testing.T) {
	cfg := Config{
		TickMs:            20,
		FailsafeTimeoutMs: 500,
		SyncInterval:      10,
		Broker:            "tcp://localhost:1883",
		HTTPAddr:          ":8080",
		LogFile:           "rover_log.csv",
	}
	tr := NewTracker(t0, cfg)
	snap := tr.Snapshot()
	if snap.Config != cfg {
		t.Errorf("config = %+v, want %+v", snap.Config, cfg)
	}
	if !snap.StartTime.Equal(t0) {
		t.Errorf("start time = %v, want %v", snap.StartTime, t0)
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(t0, Config{})

	angles := [servo.NumServos]float64{90, 91, 92, 93, 94, 95}
	tr.Update(120, -80, angles, true, false, true)
	tr.SetCounts(EventCounts{FailsafeTriggers: 2, FailsafeClears: 2, CommandFrames: 40})
	tr.SetMQTTConnected(true)

	snap := tr.Snapshot()
	if snap.LeftMagnitude != 120 || snap.RightMagnitude != -80 {
		t.Errorf("magnitudes = (%d, %d), want (120, -80)", snap.LeftMagnitude, snap.RightMagnitude)
	}
	if snap.ServoAngles != angles {
		t.Errorf("angles = %v", snap.ServoAngles)
	}
	if !snap.ServoActive || snap.FailsafeTriggered || !snap.LogReady {
		t.Errorf("flags = active:%v triggered:%v logReady:%v", snap.ServoActive, snap.FailsafeTriggered, snap.LogReady)
	}
	if snap.Counts.FailsafeTriggers != 2 || snap.Counts.CommandFrames != 40 {
		t.Errorf("counts = %+v", snap.Counts)
	}
	if !snap.MQTTConnected {
		t.Error("expected MQTT connected")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := NewTracker(t0, Config{})
	tr.Update(10, 10, [servo.NumServos]float64{}, false, false, false)

	snap := tr.Snapshot()
	tr.Update(99, 99, [servo.NumServos]float64{}, true, true, true)

	if snap.LeftMagnitude != 10 {
		t.Error("snapshot must not observe later updates")
	}
}

func TestUptime(t *testing.T) {
	tr := NewTracker(t0, Config{})
	snap := tr.Snapshot()
	snap.Now = t0.Add(90 * time.Second)
	if snap.Uptime() != 90*time.Second {
		t.Errorf("uptime = %v, want 90s", snap.Uptime())
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(t0, Config{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update(n, -n, [servo.NumServos]float64{}, j%2 == 0, false, true)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = tr.Snapshot()
			}
		}()
	}
	wg.Wait()
}
