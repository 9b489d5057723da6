// Command weather-station counts tipping-bucket rain gauge pulses, samples a
// BME280, and publishes readings to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/weather-station/internal/gpio"
	"github.com/sweeney/weather-station/internal/logbook"
	"github.com/sweeney/weather-station/internal/logging"
	"github.com/sweeney/weather-station/internal/mqtt"
	"github.com/sweeney/weather-station/internal/obs"
	"github.com/sweeney/weather-station/internal/rain"
	"github.com/sweeney/weather-station/internal/sensor"
	"github.com/sweeney/weather-station/internal/status"
	"github.com/sweeney/weather-station/internal/store"
	"github.com/sweeney/weather-station/internal/web"
)

func main() {
	poll := flag.Duration("poll", 2*time.Second, "Accumulator update interval")
	debounce := flag.Duration("debounce", rain.DefaultDebounce, "Rain gauge debounce window")
	mmPerTip := flag.Float64("mm-per-tip", 0.2794, "Rainfall per bucket tip in millimetres")
	pin := flag.Int("pin", gpio.DefaultPin, "BCM pin number for the rain gauge reed switch")
	i2cAddr := flag.Uint("i2c-addr", uint(sensor.DefaultI2CAddr), "BME280 I2C address")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	logInterval := flag.Duration("log-interval", time.Minute, "Reading emission interval")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	logDir := flag.String("log-dir", "", "Directory for daily CSV logbooks (empty to disable)")
	dbPath := flag.String("db", "", "SQLite reading archive path (empty to disable)")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	printReading := flag.Bool("print-reading", false, "Sample the BME280 once, print, and exit")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")

	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(level))

	if err := run(*poll, *debounce, *mmPerTip, *pin, uint16(*i2cAddr), *broker, *logInterval, *heartbeat, *logDir, *dbPath, *httpAddr, *printReading); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(poll, debounce time.Duration, mmPerTip float64, pin int, i2cAddr uint16, broker string, logInterval, heartbeat time.Duration, logDir, dbPath, httpAddr string, printReading bool) error {
	// Print mode needs only the sensor.
	if printReading {
		reader, err := sensor.NewBME280(i2cAddr)
		if err != nil {
			return fmt.Errorf("init bme280: %w", err)
		}
		defer reader.Close()
		sample, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read bme280: %w", err)
		}
		fmt.Printf("temperature: %.2f C, humidity: %.1f %%\n", sample.TemperatureC, sample.HumidityPct)
		return nil
	}

	// Counter first: the GPIO watcher delivers edges straight into it.
	counter := rain.NewCounter(debounce)
	watcher, err := gpio.NewRealWatcher(pin, counter.OnEdge)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer watcher.Close()

	// The station keeps running without the BME280; readings then carry
	// rainfall only.
	var sensors sensor.Reader
	if reader, err := sensor.NewBME280(i2cAddr); err != nil {
		slog.Warn("bme280 unavailable, readings will omit temperature and humidity", "error", err)
	} else {
		sensors = reader
		defer reader.Close()
	}

	var book *logbook.Book
	if logDir != "" {
		book, err = logbook.New(logDir)
		if err != nil {
			return fmt.Errorf("init logbook: %w", err)
		}
	}

	var archive *store.Store
	if dbPath != "" {
		archive, err = store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer archive.Close()
	}

	publisher := mqtt.NewRealPublisher(broker)
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:        poll.Milliseconds(),
		DebounceMs:    debounce.Milliseconds(),
		LogIntervalMs: logInterval.Milliseconds(),
		HeartbeatMs:   heartbeat.Milliseconds(),
		MmPerTip:      mmPerTip,
		Pin:           pin,
		Broker:        broker,
		HTTPPort:      httpAddr,
		LogDir:        logDir,
		DBPath:        dbPath,
	})

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		slog.Warn("startup event publish failed", "error", err)
	} else {
		slog.Info("published startup event")
	}

	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		slog.Info("http status server listening", "addr", httpAddr)
	}

	slog.Info("started",
		"poll", poll, "debounce", debounce, "mm_per_tip", mmPerTip,
		"pin", pin, "broker", broker, "log_interval", logInterval, "heartbeat", heartbeat)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	acc := rain.NewAccumulator(counter, mmPerTip)
	return runLoop(acc, counter, sensors, publisher, publisher, book, archive, tracker, logInterval, heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(acc *rain.Accumulator, counter *rain.Counter, sensors sensor.Reader, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, book *logbook.Book, archive *store.Store, tracker *status.Tracker, logInterval, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	lastEmit := startTime
	lastHeartbeat := startTime

	var (
		lastSample sensor.Sample
		sampleOK   bool
	)

	for {
		select {
		case s := <-sig:
			slog.Info("shutting down", "signal", s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName(s),
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName(s))
			}
			if err := publisher.PublishSystem(event); err != nil {
				slog.Warn("shutdown event publish failed", "error", err)
			} else {
				slog.Info("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			acc.Update(t)

			if sensors != nil {
				sample, err := sensors.Read()
				if err != nil {
					slog.Warn("sensor read error", "error", err)
					sampleOK = false
				} else {
					lastSample = sample
					sampleOK = true
				}
			}

			if tracker != nil {
				tracker.Update(acc.Total(), acc.Tips(), counter.Count(), acc.Started(), lastSample, sampleOK)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if logInterval > 0 && t.Sub(lastEmit) >= logInterval {
				lastEmit = t
				r := obs.Reading{
					Time:        t,
					RainTodayMm: acc.Total(),
					TipsToday:   acc.Tips(),
				}
				if sampleOK {
					temp := lastSample.TemperatureC
					hum := lastSample.HumidityPct
					r.TemperatureC = &temp
					r.HumidityPct = &hum
				}

				slog.Info("reading", "rain_today_mm", r.RainTodayMm, "tips_today", r.TipsToday, "sensor_ok", sampleOK)
				if err := publisher.PublishReading(r); err != nil {
					slog.Warn("reading publish failed", "error", err)
				}
				if book != nil {
					if err := book.Append(r); err != nil {
						slog.Warn("logbook append failed", "error", err)
					}
				}
				if archive != nil {
					if err := archive.InsertReading(r); err != nil {
						slog.Warn("archive insert failed", "error", err)
					}
				}
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				slog.Info("heartbeat", "uptime", t.Sub(startTime), "tips_total", counter.Count())

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					slog.Warn("heartbeat publish failed", "error", err)
				}
			}
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
