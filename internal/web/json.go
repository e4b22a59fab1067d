package web

import (
	"encoding/json"
	"time"

	"github.com/openrover/rover-core/internal/status"
)

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Drive         DriveJSON  `json:"drive"`
	ServoAngles   []float64  `json:"servo_angles"`
	ServoActive   bool       `json:"servo_active"`
	Failsafe      bool       `json:"failsafe_triggered"`
	LogReady      bool       `json:"log_ready"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// DriveJSON reports the two motor magnitudes.
type DriveJSON struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	FailsafeTriggers int `json:"failsafe_triggers"`
	FailsafeClears   int `json:"failsafe_clears"`
	CommandFrames    int `json:"command_frames"`
	DecodeErrors     int `json:"decode_errors"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs            int64  `json:"tick_ms"`
	FailsafeTimeoutMs int64  `json:"failsafe_timeout_ms"`
	SyncInterval      int    `json:"sync_interval"`
	Broker            string `json:"broker"`
	HTTPAddr          string `json:"http_addr"`
	LogFile           string `json:"log_file"`
}

func formatJSON(snap status.Snapshot) []byte {
	angles := make([]float64, len(snap.ServoAngles))
	copy(angles, snap.ServoAngles[:])

	sj := StatusJSON{
		Status: StatusInner{
			Drive:         DriveJSON{Left: snap.LeftMagnitude, Right: snap.RightMagnitude},
			ServoAngles:   angles,
			ServoActive:   snap.ServoActive,
			Failsafe:      snap.FailsafeTriggered,
			LogReady:      snap.LogReady,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
			Counts: CountsJSON{
				FailsafeTriggers: snap.Counts.FailsafeTriggers,
				FailsafeClears:   snap.Counts.FailsafeClears,
				CommandFrames:    snap.Counts.CommandFrames,
				DecodeErrors:     snap.Counts.DecodeErrors,
			},
			Config: ConfigJSON{
				TickMs:            snap.Config.TickMs,
				FailsafeTimeoutMs: snap.Config.FailsafeTimeoutMs,
				SyncInterval:      snap.Config.SyncInterval,
				Broker:            snap.Config.Broker,
				HTTPAddr:          snap.Config.HTTPAddr,
				LogFile:           snap.Config.LogFile,
			},
		},
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
