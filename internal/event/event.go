// Package event provides the shared system event code space and MQTT
// publishing with abstraction for testing.
package event

import (
	"encoding/json"
	"time"
)

// Topic is the MQTT topic for coded system events.
const Topic = "rover/core/events"

// TopicCommands is the MQTT topic carrying inbound command frames.
const TopicCommands = "rover/core/commands"

// Event is one coded system event.
type Event struct {
	Timestamp time.Time
	Code      Code
	Detail    string

	// Retained marks events the broker should retain (e.g. boot state).
	Retained bool
}

// Publisher publishes coded events.
type Publisher interface {
	// Publish sends an event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(ev Event) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandHandler receives raw inbound command frames.
type CommandHandler func(payload []byte)

// CommandSource delivers inbound command frames.
type CommandSource interface {
	// SubscribeCommands registers the handler for inbound frames.
	SubscribeCommands(handler CommandHandler) error
}

// Payload is the MQTT message payload structure.
type Payload struct {
	Event EventPayload `json:"event"`
}

// EventPayload contains the event details.
type EventPayload struct {
	Timestamp string `json:"timestamp"`
	Code      uint16 `json:"code"`
	Band      string `json:"band"`
	Detail    string `json:"detail,omitempty"`
}

// FormatPayload creates the JSON payload for an event.
func FormatPayload(ev Event) ([]byte, error) {
	payload := Payload{
		Event: EventPayload{
			Timestamp: ev.Timestamp.UTC().Format(time.RFC3339),
			Code:      uint16(ev.Code),
			Band:      ev.Code.Band(),
			Detail:    ev.Detail,
		},
	}
	return json.Marshal(payload)
}
