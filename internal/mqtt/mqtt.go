// Package mqtt publishes meter readings with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"flowmeter/internal/analog"
)

// Per-quantity topics. These are the stable identifiers the host client
// subscribes to, one per published value.
const (
	TopicFlow        = "flowmeter/flow"
	TopicTotal       = "flowmeter/total"
	TopicTemperature = "flowmeter/temperature"
	TopicPressure    = "flowmeter/pressure"
)

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "flowmeter/system"

// NotAvailable is published on a quantity topic when no measurement could
// be derived. It is deliberately non-numeric: clients extract floats from
// the payload and must not mistake a missing reading for a valid zero.
const NotAvailable = "--"

// Readings is one cycle's worth of published values.
type Readings struct {
	Timestamp   time.Time
	FlowLpm     float64
	TotalL      float64
	Temperature analog.Reading
	Pressure    analog.Reading
}

// Publisher publishes readings to MQTT.
type Publisher interface {
	// PublishReadings sends one cycle's values, one message per quantity.
	// Returns error if publishing fails (should not crash the process).
	PublishReadings(r Readings) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// FormatFlow renders a flow rate in L/min for the wire.
func FormatFlow(lpm float64) string {
	return fmt.Sprintf("%.2f", lpm)
}

// FormatTotal renders the cumulative volume in liters for the wire.
func FormatTotal(l float64) string {
	return fmt.Sprintf("%.3f", l)
}

// FormatReading renders an analog reading, or NotAvailable when the
// measurement could not be derived.
func FormatReading(r analog.Reading) string {
	if !r.Valid {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", r.Value)
}

// message is one wire message; readings expand to one message per quantity.
type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// messagesFor expands a Readings into its per-quantity messages. The total
// is retained so late subscribers see the last known volume.
func messagesFor(r Readings) []message {
	return []message{
		{topic: TopicFlow, payload: []byte(FormatFlow(r.FlowLpm))},
		{topic: TopicTotal, payload: []byte(FormatTotal(r.TotalL)), retained: true},
		{topic: TopicTemperature, payload: []byte(FormatReading(r.Temperature))},
		{topic: TopicPressure, payload: []byte(FormatReading(r.Pressure))},
	}
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
