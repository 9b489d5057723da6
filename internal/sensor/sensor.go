// Package sensor provides temperature/humidity sampling with hardware
// abstraction. The real implementation drives a BME280 over I2C via
// periph.io. The fake implementation allows testing without hardware.
package sensor

import "errors"

// ErrNoSample is returned when the device has no fresh measurement
// available. Callers treat it as a skipped sample, not a failure.
var ErrNoSample = errors.New("sensor: no sample available")

// Sample is one environmental measurement.
type Sample struct {
	TemperatureC float64 // degrees Celsius
	HumidityPct  float64 // percent relative humidity, 0-100
}

// Reader reads environment samples.
type Reader interface {
	// Read returns the current sample. Returns ErrNoSample when the
	// device has nothing fresh to report.
	Read() (Sample, error)

	// Close releases the device and the underlying bus.
	Close() error
}

// DefaultI2CAddr is the BME280's standard I2C address.
const DefaultI2CAddr uint16 = 0x76
