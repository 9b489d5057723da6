package internal

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sweeney/weather-station/internal/gpio"
	"github.com/sweeney/weather-station/internal/logbook"
	"github.com/sweeney/weather-station/internal/mqtt"
	"github.com/sweeney/weather-station/internal/obs"
	"github.com/sweeney/weather-station/internal/rain"
	"github.com/sweeney/weather-station/internal/sensor"
	"github.com/sweeney/weather-station/internal/status"
	"github.com/sweeney/weather-station/internal/store"
)

// TestIntegrationFullFlow tests the complete flow from GPIO edges to MQTT
// using fakes.
func TestIntegrationFullFlow(t *testing.T) {
	counter := rain.NewCounter(50 * time.Millisecond)
	watcher := gpio.NewFakeWatcher(counter.OnEdge)
	defer watcher.Close()

	acc := rain.NewAccumulator(counter, 0.25)
	publisher := mqtt.NewFakePublisher()

	// A tip with contact bounce, then two clean tips.
	watcher.FireBurst(0, 3, 10*time.Millisecond) // 1 accepted + 2 bounces
	watcher.Fire(500 * time.Millisecond)
	watcher.Fire(2 * time.Second)

	if got := counter.Count(); got != 3 {
		t.Fatalf("expected 3 accepted tips, got %d", got)
	}

	now := time.Date(2026, 4, 12, 6, 30, 0, 0, time.UTC)
	acc.Update(now)

	r := obs.Reading{
		Time:        now,
		RainTodayMm: acc.Total(),
		TipsToday:   acc.Tips(),
	}
	if err := publisher.PublishReading(r); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	if len(publisher.Readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(publisher.Readings))
	}
	if publisher.Readings[0].TipsToday != 3 {
		t.Errorf("tips: got %d, want 3", publisher.Readings[0].TipsToday)
	}
	if publisher.Readings[0].RainTodayMm != 0.75 {
		t.Errorf("rainfall: got %v, want 0.75", publisher.Readings[0].RainTodayMm)
	}

	expected := `{"reading":{"timestamp":"2026-04-12T06:30:00Z","rain_today_mm":0.75,"tips_today":3}}`
	if string(publisher.Payloads[0]) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(publisher.Payloads[0]), expected)
	}
}

// TestIntegrationBounceBurstRejected verifies a bounce train registers as
// one tip end to end.
func TestIntegrationBounceBurstRejected(t *testing.T) {
	counter := rain.NewCounter(50 * time.Millisecond)
	watcher := gpio.NewFakeWatcher(counter.OnEdge)
	defer watcher.Close()

	// 8 edges 10ms apart: each is within the window of its predecessor.
	watcher.FireBurst(time.Second, 8, 10*time.Millisecond)

	if got := counter.Count(); got != 1 {
		t.Errorf("expected 1 tip from bounce train, got %d", got)
	}
}

// TestIntegrationDayRollover verifies the daily total resets at midnight and
// tips after the rollover accrue to the new day.
func TestIntegrationDayRollover(t *testing.T) {
	counter := rain.NewCounter(50 * time.Millisecond)
	watcher := gpio.NewFakeWatcher(counter.OnEdge)
	defer watcher.Close()

	acc := rain.NewAccumulator(counter, 0.25)

	day1 := time.Date(2026, 4, 12, 23, 0, 0, 0, time.UTC)
	watcher.Fire(0)
	watcher.Fire(time.Second)
	acc.Update(day1)
	if acc.Total() != 0.5 {
		t.Fatalf("day 1 total: got %v, want 0.5", acc.Total())
	}

	day2 := time.Date(2026, 4, 13, 0, 1, 0, 0, time.UTC)
	acc.Update(day2)
	if acc.Total() != 0 {
		t.Errorf("total after rollover: got %v, want 0", acc.Total())
	}
	if acc.Tips() != 0 {
		t.Errorf("tips after rollover: got %d, want 0", acc.Tips())
	}

	watcher.Fire(2 * time.Second)
	acc.Update(day2.Add(time.Minute))
	if acc.Total() != 0.25 {
		t.Errorf("new day total: got %v, want 0.25", acc.Total())
	}
}

// TestIntegrationReadingToLogbookAndStore verifies one reading lands in the
// CSV logbook and the SQLite archive with identical values.
func TestIntegrationReadingToLogbookAndStore(t *testing.T) {
	counter := rain.NewCounter(50 * time.Millisecond)
	acc := rain.NewAccumulator(counter, 0.25)
	sensors := sensor.NewFakeReader([]sensor.Sample{{TemperatureC: 18.5, HumidityPct: 72.0}})

	book, err := logbook.New(t.TempDir())
	if err != nil {
		t.Fatalf("logbook.New: %v", err)
	}
	archive, err := store.Open(filepath.Join(t.TempDir(), "weather.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer archive.Close()

	counter.OnEdge(0)
	now := time.Date(2026, 4, 12, 6, 30, 0, 0, time.UTC)
	acc.Update(now)

	sample, err := sensors.Read()
	if err != nil {
		t.Fatalf("sensor read: %v", err)
	}
	temp := sample.TemperatureC
	hum := sample.HumidityPct
	r := obs.Reading{
		Time:         now,
		TemperatureC: &temp,
		HumidityPct:  &hum,
		RainTodayMm:  acc.Total(),
		TipsToday:    acc.Tips(),
	}

	if err := book.Append(r); err != nil {
		t.Fatalf("logbook append: %v", err)
	}
	if err := archive.InsertReading(r); err != nil {
		t.Fatalf("archive insert: %v", err)
	}

	got, err := archive.LatestReadings(1)
	if err != nil {
		t.Fatalf("LatestReadings: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 archived reading, got %d", len(got))
	}
	if got[0].RainTodayMm != 0.25 || got[0].TipsToday != 1 {
		t.Errorf("archived reading: got %v mm / %d tips, want 0.25 / 1", got[0].RainTodayMm, got[0].TipsToday)
	}
	if got[0].TemperatureC == nil || *got[0].TemperatureC != 18.5 {
		t.Errorf("archived temperature: got %v, want 18.5", got[0].TemperatureC)
	}
}

// TestIntegrationShutdownPayloadFormat verifies the exact JSON structure for
// plain system events.
func TestIntegrationShutdownPayloadFormat(t *testing.T) {
	publisher := mqtt.NewFakePublisher()

	event := mqtt.SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 30, 45, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}
	publisher.PublishSystem(event)

	expected := `{"system":{"timestamp":"2026-02-03T10:30:45Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(publisher.SystemPayloads[0]) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(publisher.SystemPayloads[0]), expected)
	}
}

// TestIntegrationStartupStatusSnapshot verifies the STARTUP event carries the
// full status snapshot through the raw payload path.
func TestIntegrationStartupStatusSnapshot(t *testing.T) {
	start := time.Date(2026, 4, 12, 6, 0, 0, 0, time.UTC)
	tracker := status.NewTracker(start, status.Config{
		PollMs:     2000,
		DebounceMs: 50,
		MmPerTip:   0.2794,
		Pin:        6,
		Broker:     "tcp://192.168.1.200:1883",
	})

	publisher := mqtt.NewFakePublisher()
	snap := tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(event); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	var parsed status.StatusJSON
	if err := json.Unmarshal(publisher.SystemPayloads[0], &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "STARTUP" {
		t.Errorf("event: got %q, want STARTUP", parsed.Status.Event)
	}
	if parsed.Status.Config.DebounceMs != 50 {
		t.Errorf("debounce_ms: got %d, want 50", parsed.Status.Config.DebounceMs)
	}
	if parsed.Status.Config.MmPerTip != 0.2794 {
		t.Errorf("mm_per_tip: got %v, want 0.2794", parsed.Status.Config.MmPerTip)
	}
	if parsed.Status.Config.Pin != 6 {
		t.Errorf("pin: got %d, want 6", parsed.Status.Config.Pin)
	}
	if parsed.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("broker: got %q", parsed.Status.MQTT.Broker)
	}
}

// TestIntegrationPublishFailureDoesNotLoseCounts verifies a broker outage
// leaves the counter and accumulator intact.
func TestIntegrationPublishFailureDoesNotLoseCounts(t *testing.T) {
	counter := rain.NewCounter(50 * time.Millisecond)
	acc := rain.NewAccumulator(counter, 0.25)
	publisher := mqtt.NewFakePublisher()
	publisher.PublishError = errors.New("broker disconnected")

	counter.OnEdge(0)
	counter.OnEdge(time.Second)
	now := time.Date(2026, 4, 12, 6, 30, 0, 0, time.UTC)
	acc.Update(now)

	r := obs.Reading{Time: now, RainTodayMm: acc.Total(), TipsToday: acc.Tips()}
	if err := publisher.PublishReading(r); err == nil {
		t.Fatal("expected publish error")
	}

	// Counts survive; the next successful publish carries them.
	publisher.PublishError = nil
	acc.Update(now.Add(time.Minute))
	r = obs.Reading{Time: now.Add(time.Minute), RainTodayMm: acc.Total(), TipsToday: acc.Tips()}
	if err := publisher.PublishReading(r); err != nil {
		t.Fatalf("publish error: %v", err)
	}
	if publisher.Readings[0].TipsToday != 2 || publisher.Readings[0].RainTodayMm != 0.5 {
		t.Errorf("recovered reading: got %d tips / %v mm, want 2 / 0.5", publisher.Readings[0].TipsToday, publisher.Readings[0].RainTodayMm)
	}
}
