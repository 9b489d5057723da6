package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	RainTodayMm   float64    `json:"rain_today_mm"`
	TipsToday     uint64     `json:"tips_today"`
	TipsTotal     uint64     `json:"tips_total"`
	TemperatureC  *float64   `json:"temperature_c,omitempty"`
	HumidityPct   *float64   `json:"humidity_pct,omitempty"`
	Tracking      bool       `json:"tracking"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs        int64   `json:"poll_ms"`
	DebounceMs    int64   `json:"debounce_ms"`
	LogIntervalMs int64   `json:"log_interval_ms"`
	HeartbeatMs   int64   `json:"heartbeat_ms"`
	MmPerTip      float64 `json:"mm_per_tip"`
	Pin           int     `json:"pin"`
	Broker        string  `json:"broker"`
	HTTPPort      string  `json:"http_port"`
	LogDir        string  `json:"log_dir,omitempty"`
	DBPath        string  `json:"db_path,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		RainTodayMm:   snap.RainTodayMm,
		TipsToday:     snap.TipsToday,
		TipsTotal:     snap.TipsTotal,
		Tracking:      snap.Tracking,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:        snap.Config.PollMs,
			DebounceMs:    snap.Config.DebounceMs,
			LogIntervalMs: snap.Config.LogIntervalMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			MmPerTip:      snap.Config.MmPerTip,
			Pin:           snap.Config.Pin,
			Broker:        snap.Config.Broker,
			HTTPPort:      snap.Config.HTTPPort,
			LogDir:        snap.Config.LogDir,
			DBPath:        snap.Config.DBPath,
		},
	}

	if snap.SampleOK {
		temp := snap.Sample.TemperatureC
		hum := snap.Sample.HumidityPct
		inner.TemperatureC = &temp
		inner.HumidityPct = &hum
	}

	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
