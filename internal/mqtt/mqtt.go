// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/weather-station/internal/obs"
)

// Topic is the MQTT topic for station readings.
const Topic = "weather/station/readings"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "weather/station/system"

// Publisher publishes station output to MQTT.
type Publisher interface {
	// PublishReading sends an observation to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishReading(r obs.Reading) error

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

// Payload represents the MQTT message payload structure for a reading.
type Payload struct {
	Reading ReadingPayload `json:"reading"`
}

// ReadingPayload contains the observation details. Field naming follows
// the station telemetry convention: unit-suffixed snake_case.
type ReadingPayload struct {
	Timestamp    string   `json:"timestamp"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
	HumidityPct  *float64 `json:"humidity_pct,omitempty"`
	RainTodayMm  float64  `json:"rain_today_mm"`
	TipsToday    uint64   `json:"tips_today"`
}

// FormatReadingPayload creates the JSON payload for an observation.
func FormatReadingPayload(r obs.Reading) ([]byte, error) {
	payload := Payload{
		Reading: ReadingPayload{
			Timestamp:    r.Time.UTC().Format(time.RFC3339),
			TemperatureC: r.TemperatureC,
			HumidityPct:  r.HumidityPct,
			RainTodayMm:  r.RainTodayMm,
			TipsToday:    r.TipsToday,
		},
	}
	return json.Marshal(payload)
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
