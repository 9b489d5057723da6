// Package obs defines the station's observation record shared by the
// console, card log, archive, and MQTT reporters.
package obs

import "time"

// Reading is one timestamped station observation. Temperature and humidity
// are nil when the environment sensor had no sample to offer; rainfall is
// always present since the accumulator cannot fail.
type Reading struct {
	Time         time.Time
	TemperatureC *float64
	HumidityPct  *float64
	RainTodayMm  float64
	TipsToday    uint64
}
