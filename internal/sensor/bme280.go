package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// BME280 reads a Bosch BME280 over I2C.
type BME280 struct {
	bus i2c.BusCloser
	dev *bmxx80.Dev
}

// NewBME280 initializes the periph host, opens the default I2C bus
// (usually /dev/i2c-1) and probes the sensor at the given address.
func NewBME280(addr uint16) (*BME280, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("probe bme280 at 0x%x: %w", addr, err)
	}

	return &BME280{bus: bus, dev: dev}, nil
}

// Read returns the current temperature and humidity.
func (b *BME280) Read() (Sample, error) {
	var env physic.Env
	if err := b.dev.Sense(&env); err != nil {
		return Sample{}, fmt.Errorf("bme280 sense: %w", err)
	}

	// env.Humidity is fixed point at a precision of 0.00001%rH.
	return Sample{
		TemperatureC: env.Temperature.Celsius(),
		HumidityPct:  float64(env.Humidity) / float64(physic.PercentRH),
	}, nil
}

// Close halts the sensor and releases the bus.
func (b *BME280) Close() error {
	var errs []error
	if b.dev != nil {
		if err := b.dev.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt bme280: %w", err))
		}
	}
	if b.bus != nil {
		if err := b.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
