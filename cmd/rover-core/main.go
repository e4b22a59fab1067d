// Command rover-core runs the actuation and safety core of the rover: two
// ramped drive motors, the six-channel servo array, the status indicators,
// the communication failsafe and the telemetry log, all advanced from one
// non-blocking control loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openrover/rover-core/internal/drive"
	"github.com/openrover/rover-core/internal/event"
	"github.com/openrover/rover-core/internal/failsafe"
	"github.com/openrover/rover-core/internal/hw"
	"github.com/openrover/rover-core/internal/indicate"
	"github.com/openrover/rover-core/internal/servo"
	"github.com/openrover/rover-core/internal/status"
	"github.com/openrover/rover-core/internal/telemetry"
	"github.com/openrover/rover-core/internal/web"
)

// Drive PWM carrier frequency. 15kHz keeps the H-bridge out of the audible
// range.
const motorPWMFreqHz = 15000

// Servo frame rate expected by the pulse driver.
const servoFreqHz = 60

func main() {
	tick := flag.Duration("tick", 20*time.Millisecond, "Control loop tick interval")
	timeout := flag.Duration("failsafe-timeout", failsafe.DefaultTimeout, "Command silence before failsafe engages")
	broker := flag.String("broker", "tcp://192.168.4.1:1883", "MQTT broker address")
	logFile := flag.String("log-file", "rover_log.csv", "Telemetry log file path")
	syncInterval := flag.Int("sync-interval", telemetry.DefaultSyncInterval, "Telemetry writes between storage syncs")
	logEvery := flag.Int("log-every", 5, "Ticks between telemetry lines")
	rampStep := flag.Int("ramp-step", drive.DefaultRampStep, "Motor magnitude change per tick")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	pwmChip := flag.String("pwm-chip", "/sys/class/pwm/pwmchip0", "Motor PWM chip sysfs directory")
	servoChip := flag.String("servo-chip", "/sys/class/pwm/pwmchip1", "Servo PWM chip sysfs directory")
	watchdogPath := flag.String("watchdog", "/dev/watchdog", "Watchdog device (empty to disable)")
	dumpStatus := flag.Bool("dump-status", false, "Print one status snapshot (config and log health) and exit")

	flag.Parse()

	if *dumpStatus {
		if err := runDumpStatus(*tick, *timeout, *broker, *logFile, *syncInterval); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	if err := run(*tick, *timeout, *broker, *logFile, *syncInterval, *logEvery, *rampStep,
		*httpAddr, *pwmChip, *servoChip, *watchdogPath); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// runDumpStatus is a field utility: print the effective configuration and
// probe the storage medium without starting the loop or touching PWM.
func runDumpStatus(tick, timeout time.Duration, broker, logFile string, syncInterval int) error {
	fmt.Printf("tick:             %v\n", tick)
	fmt.Printf("failsafe timeout: %v\n", timeout)
	fmt.Printf("broker:           %s\n", broker)
	fmt.Printf("log file:         %s\n", logFile)
	fmt.Printf("sync interval:    %d writes\n", syncInterval)

	tlog := telemetry.New(telemetry.NewFileStorage(logFile), syncInterval)
	if err := tlog.Begin(); err != nil {
		fmt.Printf("log:              NOT READY (%v)\n", err)
		return nil
	}
	fmt.Printf("log:              ready\n")
	return tlog.End()
}

func run(tick, timeout time.Duration, broker, logFile string, syncInterval, logEvery, rampStep int,
	httpAddr, pwmChip, servoChip, watchdogPath string) error {
	// Initialize hardware
	pins, err := hw.NewRealPinWriter(
		hw.PinScannerLeft, hw.PinScannerRight, hw.PinComms, hw.PinBeacon, hw.PinHeartbeat)
	if err != nil {
		return fmt.Errorf("init indicator pins: %w", err)
	}
	defer pins.Close()

	pwm, err := hw.NewSysfsPWMWriter(pwmChip, motorPWMFreqHz,
		hw.ChanLeftForward, hw.ChanLeftReverse, hw.ChanRightForward, hw.ChanRightReverse)
	if err != nil {
		return fmt.Errorf("init motor pwm: %w", err)
	}
	defer pwm.Close()

	pulses, err := hw.NewSysfsPulseWriter(servoChip, servoFreqHz, 0, 1, 2, 3, 4, 5)
	if err != nil {
		return fmt.Errorf("init servo pwm: %w", err)
	}
	defer pulses.Close()

	var watchdog hw.Watchdog
	if watchdogPath != "" {
		wd, err := hw.NewRealWatchdog(watchdogPath)
		if err != nil {
			// The external watchdog is a last-resort guard, not a
			// prerequisite for driving.
			log.Printf("watchdog unavailable, continuing without: %v", err)
		} else {
			watchdog = wd
			defer wd.Close()
		}
	}

	// Initialize MQTT
	publisher, err := event.NewRealPublisher(broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	startTime := time.Now()
	publishEvent(publisher, event.Event{
		Timestamp: startTime, Code: event.SysBootStart, Retained: true,
	})

	// Build actuators
	publishEvent(publisher, event.Event{Timestamp: time.Now(), Code: event.ActInitStart})

	left := drive.New(pwm, hw.ChanLeftForward, hw.ChanLeftReverse, rampStep)
	right := drive.New(pwm, hw.ChanRightForward, hw.ChanRightReverse, rampStep)
	left.EmergencyStop() // start in safe state
	right.EmergencyStop()
	publishEvent(publisher, event.Event{Timestamp: time.Now(), Code: event.ActMotorsReady})

	servos := servo.New(pulses)
	publishEvent(publisher, event.Event{Timestamp: time.Now(), Code: event.ActServosReady})

	indicators := indicate.New(pins)
	monitor := failsafe.New(timeout, startTime, left, right, servos)

	// Telemetry is best-effort: a dead medium degrades to a not-ready log,
	// it never stops the loop.
	tlog := telemetry.New(telemetry.NewFileStorage(logFile), syncInterval)
	if err := tlog.Begin(); err != nil {
		log.Printf("telemetry unavailable: %v", err)
		publishEvent(publisher, event.Event{
			Timestamp: time.Now(), Code: event.ErrStorageInitFail, Detail: err.Error(),
		})
	} else {
		publishEvent(publisher, event.Event{Timestamp: time.Now(), Code: event.ActLogReady})
	}

	// Status tracker + HTTP surface
	tracker := status.NewTracker(startTime, status.Config{
		TickMs:            tick.Milliseconds(),
		FailsafeTimeoutMs: timeout.Milliseconds(),
		SyncInterval:      syncInterval,
		Broker:            broker,
		HTTPAddr:          httpAddr,
		LogFile:           logFile,
	})

	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	// Command ingest: decode at the boundary, deliver frames to the loop.
	commands := make(chan frame, 16)
	decodeErrors := newCounter()
	err = publisher.SubscribeCommands(func(payload []byte) {
		f, err := decodeFrame(payload)
		if err != nil {
			log.Printf("bad command frame %q: %v", payload, err)
			decodeErrors.inc()
			return
		}
		select {
		case commands <- f:
		default:
			// Loop is behind; drop rather than block the MQTT callback.
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe commands: %w", err)
	}

	publishEvent(publisher, event.Event{
		Timestamp: time.Now(), Code: event.SysBootComplete, Retained: true,
	})
	log.Printf("started: tick=%v failsafe=%v broker=%s log=%s sync=%d",
		tick, timeout, broker, logFile, syncInterval)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	deps := loopDeps{
		left:         left,
		right:        right,
		servos:       servos,
		indicators:   indicators,
		monitor:      monitor,
		tlog:         tlog,
		publisher:    publisher,
		conn:         publisher,
		watchdog:     watchdog,
		tracker:      tracker,
		commands:     commands,
		decodeErrors: decodeErrors,
		logEvery:     logEvery,
	}
	return runLoop(deps, time.Now, ticker.C, sigCh)
}

// counter is a tiny thread-safe count shared between the MQTT callback
// goroutine and the loop.
type counter struct {
	ch chan int
}

func newCounter() *counter {
	c := &counter{ch: make(chan int, 1)}
	c.ch <- 0
	return c
}

func (c *counter) inc() {
	v := <-c.ch
	c.ch <- v + 1
}

func (c *counter) value() int {
	v := <-c.ch
	c.ch <- v
	return v
}

func publishEvent(p event.Publisher, ev event.Event) {
	if err := p.Publish(ev); err != nil {
		log.Printf("publish %d failed: %v", ev.Code, err)
	}
}
