// Package bme280 exposes a Bosch BME280 through the sensor interfaces of
// this module.
//
// The register level work is done by periph.io/x/devices/v3/bmxx80; this
// package opens it on I²C or SPI and splits its combined readings into
// temperature, humidity and pressure.
package bme280

import (
	"errors"
	"fmt"

	"github.com/espward/ward/sensor"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/bmxx80"
)

// Addr is the default I²C address; 0x77 is the other option.
const Addr = 0x76

// Dev is a handle to a BME280.
type Dev struct {
	env physic.SenseEnv
}

var (
	_ sensor.TemperatureSensor = (*Dev)(nil)
	_ sensor.HumiditySensor    = (*Dev)(nil)
	_ sensor.PressureSensor    = (*Dev)(nil)
)

// NewI2C opens the BME280 at addr on b.
//
// opts can be nil to use bmxx80.DefaultOpts.
func NewI2C(b i2c.Bus, addr uint16, opts *bmxx80.Opts) (*Dev, error) {
	if opts == nil {
		opts = &bmxx80.DefaultOpts
	}
	d, err := bmxx80.NewI2C(b, addr, opts)
	if err != nil {
		return nil, fmt.Errorf("bme280: %w", err)
	}
	return New(d)
}

// NewSPI opens the BME280 on p.
//
// opts can be nil to use bmxx80.DefaultOpts.
func NewSPI(p spi.Port, opts *bmxx80.Opts) (*Dev, error) {
	if opts == nil {
		opts = &bmxx80.DefaultOpts
	}
	d, err := bmxx80.NewSPI(p, opts)
	if err != nil {
		return nil, fmt.Errorf("bme280: %w", err)
	}
	return New(d)
}

// New wraps an already opened environment sensor.
func New(env physic.SenseEnv) (*Dev, error) {
	if env == nil {
		return nil, errors.New("bme280: nil sensor")
	}
	return &Dev{env: env}, nil
}

// Sense reads temperature, pressure and humidity at once.
func (d *Dev) Sense(e *physic.Env) error {
	return d.env.Sense(e)
}

// Read returns one combined sample.
func (d *Dev) Read() (physic.Env, error) {
	var e physic.Env
	err := d.Sense(&e)
	return e, err
}

// Temperature returns the temperature.
func (d *Dev) Temperature() (physic.Temperature, error) {
	e, err := d.Read()
	return e.Temperature, err
}

// Humidity returns the relative humidity.
func (d *Dev) Humidity() (physic.RelativeHumidity, error) {
	e, err := d.Read()
	return e.Humidity, err
}

// Pressure returns the atmospheric pressure.
func (d *Dev) Pressure() (physic.Pressure, error) {
	e, err := d.Read()
	return e.Pressure, err
}

// Halt halts the underlying sensor.
func (d *Dev) Halt() error {
	return d.env.Halt()
}

func (d *Dev) String() string {
	return fmt.Sprintf("bme280.Dev{%s}", d.env)
}
