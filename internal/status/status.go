// Package status provides a thread-safe status tracker for the station
// daemon. It is read by HTTP handlers and serialized into MQTT system
// events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/weather-station/internal/sensor"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs        int64
	DebounceMs    int64
	LogIntervalMs int64
	HeartbeatMs   int64
	MmPerTip      float64
	Pin           int
	Broker        string
	HTTPPort      string
	LogDir        string
	DBPath        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	RainTodayMm   float64
	TipsToday     uint64
	TipsTotal     uint64
	Sample        sensor.Sample
	SampleOK      bool
	Tracking      bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets rainfall state and the latest sensor sample.
// Called from runLoop on every tick.
func (t *Tracker) Update(rainMm float64, tipsToday, tipsTotal uint64, tracking bool, sample sensor.Sample, sampleOK bool) {
	t.mu.Lock()
	t.snap.RainTodayMm = rainMm
	t.snap.TipsToday = tipsToday
	t.snap.TipsTotal = tipsTotal
	t.snap.Tracking = tracking
	t.snap.Sample = sample
	t.snap.SampleOK = sampleOK
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
