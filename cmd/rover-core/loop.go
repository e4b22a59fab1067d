package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openrover/rover-core/internal/drive"
	"github.com/openrover/rover-core/internal/event"
	"github.com/openrover/rover-core/internal/failsafe"
	"github.com/openrover/rover-core/internal/hw"
	"github.com/openrover/rover-core/internal/indicate"
	"github.com/openrover/rover-core/internal/servo"
	"github.com/openrover/rover-core/internal/status"
	"github.com/openrover/rover-core/internal/telemetry"
)

// frame is one decoded command frame: target magnitudes for the drive
// motors and a direction command per servo channel.
type frame struct {
	left, right int
	servos      [servo.NumServos]servo.Command
}

// decodeFrame parses the wire format "M <left> <right> S <dirs>", where
// dirs is one of L, R or N per servo channel, e.g. "M 120 -80 S NNLRNN".
func decodeFrame(payload []byte) (frame, error) {
	var f frame

	fields := strings.Fields(string(payload))
	if len(fields) != 5 {
		return f, fmt.Errorf("want 5 fields, got %d", len(fields))
	}
	if fields[0] != "M" || fields[3] != "S" {
		return f, fmt.Errorf("bad markers %q %q", fields[0], fields[3])
	}

	left, err := strconv.Atoi(fields[1])
	if err != nil {
		return f, fmt.Errorf("left magnitude: %w", err)
	}
	right, err := strconv.Atoi(fields[2])
	if err != nil {
		return f, fmt.Errorf("right magnitude: %w", err)
	}
	if left < -drive.MaxMagnitude || left > drive.MaxMagnitude ||
		right < -drive.MaxMagnitude || right > drive.MaxMagnitude {
		return f, fmt.Errorf("magnitude out of range: %d %d", left, right)
	}

	dirs := fields[4]
	if len(dirs) != servo.NumServos {
		return f, fmt.Errorf("want %d servo directions, got %d", servo.NumServos, len(dirs))
	}
	for i := 0; i < servo.NumServos; i++ {
		switch dirs[i] {
		case 'N':
			f.servos[i] = servo.Neutral
		case 'L':
			f.servos[i] = servo.Left
		case 'R':
			f.servos[i] = servo.Right
		default:
			return f, fmt.Errorf("servo direction %d: %q", i, dirs[i])
		}
	}

	f.left = left
	f.right = right
	return f, nil
}

// loopDeps carries everything the control loop touches, so tests can
// assemble it from fakes.
type loopDeps struct {
	left, right  *drive.Motor
	servos       *servo.Array
	indicators   *indicate.Indicators
	monitor      *failsafe.Monitor
	tlog         *telemetry.Log
	publisher    event.Publisher
	conn         event.ConnectionStatus
	watchdog     hw.Watchdog
	tracker      *status.Tracker
	commands     <-chan frame
	decodeErrors *counter
	logEvery     int
}

// runLoop advances the whole system one step per tick until a signal
// arrives. now, tick and sig are injected so tests can drive it
// deterministically.
func runLoop(d loopDeps, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	var (
		servoCmds [servo.NumServos]servo.Command
		counts    status.EventCounts
		tickCount int
		logReady  = d.tlog.IsReady()
	)

	for {
		select {
		case <-tick:
			t := now()
			tickCount++

			// Apply every pending frame; the last one wins. Each frame
			// refreshes the failsafe regardless of content.
		drain:
			for {
				select {
				case f := <-d.commands:
					counts.CommandFrames++
					d.left.SetTarget(f.left)
					d.right.SetTarget(f.right)
					servoCmds = f.servos
					if ev := d.monitor.OnCommandReceived(t); ev != nil {
						counts.FailsafeClears++
						log.Printf("failsafe cleared after %v of silence", ev.Silence)
						publishEvent(d.publisher, event.Event{
							Timestamp: t,
							Code:      event.SafeFailsafeClear,
							Detail:    ev.Silence.String(),
						})
					}
				default:
					break drain
				}
			}

			if ev := d.monitor.Tick(t); ev != nil {
				counts.FailsafeTriggers++
				// Stale directions must not move servos once the link
				// is gone.
				servoCmds = [servo.NumServos]servo.Command{}
				log.Printf("failsafe triggered after %v of silence", ev.Silence)
				publishEvent(d.publisher, event.Event{
					Timestamp: t,
					Code:      event.SafeFailsafeTrigger,
					Detail:    ev.Silence.String(),
				})
			}

			if err := d.left.Update(); err != nil {
				log.Printf("left motor: %v", err)
			}
			if err := d.right.Update(); err != nil {
				log.Printf("right motor: %v", err)
			}
			if err := d.servos.Update(servoCmds); err != nil {
				log.Printf("servos: %v", err)
			}

			commsActive := d.conn != nil && d.conn.IsConnected()
			d.indicators.Update(t, d.left.IsActive(), d.right.IsActive(),
				d.servos.IsActive(), commsActive)

			if d.watchdog != nil {
				if err := d.watchdog.Pet(); err != nil {
					log.Printf("watchdog pet: %v", err)
				}
			}

			if d.logEvery > 0 && tickCount%d.logEvery == 0 {
				d.tlog.LogValue(telemetryLine(t, d))
			}
			if logReady && !d.tlog.IsReady() {
				logReady = false
				detail := ""
				if err := d.tlog.Err(); err != nil {
					detail = err.Error()
				}
				log.Printf("telemetry log failed: %s", detail)
				publishEvent(d.publisher, event.Event{
					Timestamp: t,
					Code:      event.ErrStorageWriteFail,
					Detail:    detail,
				})
			}

			counts.DecodeErrors = d.decodeErrors.value()
			d.tracker.Update(d.left.CurrentMagnitude(), d.right.CurrentMagnitude(),
				d.servos.Angles(), d.servos.IsActive(),
				d.monitor.IsTriggered(), d.tlog.IsReady())
			d.tracker.SetCounts(counts)
			d.tracker.SetMQTTConnected(commsActive)

		case s := <-sig:
			t := now()
			log.Printf("received %v, shutting down", s)
			publishEvent(d.publisher, event.Event{
				Timestamp: t,
				Code:      event.SysShutdown,
				Detail:    fmt.Sprint(s),
				Retained:  true,
			})
			d.left.EmergencyStop()
			d.right.EmergencyStop()
			d.servos.EmergencyStop()
			d.indicators.AllOff()
			if err := d.tlog.End(); err != nil {
				log.Printf("closing telemetry log: %v", err)
			}
			return nil
		}
	}
}

// telemetryLine renders one CSV record:
// unix_ms,left,right,failsafe,servo_active
func telemetryLine(t time.Time, d loopDeps) string {
	return fmt.Sprintf("%d,%d,%d,%t,%t",
		t.UnixMilli(),
		d.left.CurrentMagnitude(), d.right.CurrentMagnitude(),
		d.monitor.IsTriggered(), d.servos.IsActive())
}
