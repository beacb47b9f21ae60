// Package aht20 reads temperature and relative humidity from an Aosong
// AHT20 sensor over I²C.
//
// Each measurement is triggered by the host. The sensor needs about 80ms to
// convert; the driver then polls the status byte until the busy flag clears
// and checks the CRC of the returned frame.
package aht20

import (
	"errors"
	"fmt"
	"time"

	"github.com/espward/ward/internal/crc8"
	"github.com/espward/ward/sensor"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Addr is the fixed I²C address of the sensor.
const Addr = 0x38

const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08
)

var (
	// ErrTimeout is returned when a measurement does not complete in time.
	ErrTimeout = errors.New("aht20: timeout")
	// ErrChecksum is returned when a frame fails its CRC check.
	ErrChecksum = errors.New("aht20: checksum mismatch")
)

// Opts is the configuration for the AHT20.
type Opts struct {
	// PollInterval is the wait between two status polls (default 15ms).
	PollInterval time.Duration
	// Timeout bounds the polling after the conversion time (default 250ms).
	Timeout time.Duration
}

// Dev is a handle to an AHT20.
type Dev struct {
	d    i2c.Dev
	poll time.Duration
	max  time.Duration

	sleep  func(time.Duration)
	halted bool
}

var (
	_ sensor.TemperatureSensor = (*Dev)(nil)
	_ sensor.HumiditySensor    = (*Dev)(nil)
)

// NewI2C returns a handle to the AHT20 on b, calibrating it if needed.
//
// opts can be nil to use defaults.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	return newDev(b, opts, time.Sleep)
}

func newDev(b i2c.Bus, opts *Opts, sleep func(time.Duration)) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	if opts.PollInterval < 0 || opts.Timeout < 0 {
		return nil, errors.New("aht20: negative poll interval or timeout")
	}
	d := &Dev{
		d:     i2c.Dev{Bus: b, Addr: Addr},
		poll:  opts.PollInterval,
		max:   opts.Timeout,
		sleep: sleep,
	}
	if d.poll == 0 {
		d.poll = 15 * time.Millisecond
	}
	if d.max == 0 {
		d.max = 250 * time.Millisecond
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// init loads the calibration unless the sensor reports it already did.
func (d *Dev) init() error {
	var st [1]byte
	if err := d.d.Tx([]byte{cmdStatus}, st[:]); err != nil {
		return fmt.Errorf("aht20: read status: %w", err)
	}
	if st[0]&statusCalibrated != 0 {
		return nil
	}
	if err := d.d.Tx([]byte{cmdInitialize, 0x08, 0x00}, nil); err != nil {
		return fmt.Errorf("aht20: calibrate: %w", err)
	}
	d.sleep(10 * time.Millisecond)
	return nil
}

// Reset issues a soft reset and waits for the sensor to come back.
func (d *Dev) Reset() error {
	if d.halted {
		return errors.New("aht20: halted")
	}
	if err := d.d.Tx([]byte{cmdSoftReset}, nil); err != nil {
		return fmt.Errorf("aht20: reset: %w", err)
	}
	d.sleep(20 * time.Millisecond)
	return d.init()
}

// Sense runs one measurement and stores temperature and humidity in e.
// Pressure is left untouched.
func (d *Dev) Sense(e *physic.Env) error {
	if d.halted {
		return errors.New("aht20: halted")
	}
	if err := d.d.Tx([]byte{cmdTrigger, 0x33, 0x00}, nil); err != nil {
		return fmt.Errorf("aht20: trigger: %w", err)
	}
	d.sleep(80 * time.Millisecond)

	var buf [7]byte
	for waited := time.Duration(0); ; waited += d.poll {
		if err := d.d.Tx(nil, buf[:]); err != nil {
			return fmt.Errorf("aht20: read: %w", err)
		}
		if buf[0]&statusBusy == 0 {
			break
		}
		if waited >= d.max {
			return ErrTimeout
		}
		d.sleep(d.poll)
	}
	if crc8.Checksum(buf[:6]) != buf[6] {
		return ErrChecksum
	}

	hraw := uint32(buf[1])<<12 | uint32(buf[2])<<4 | uint32(buf[3])>>4
	traw := uint32(buf[3]&0x0F)<<16 | uint32(buf[4])<<8 | uint32(buf[5])
	e.Humidity = physic.RelativeHumidity(int64(hraw) * int64(100*physic.PercentRH) >> 20)
	e.Temperature = physic.Temperature(int64(traw)*200*int64(physic.Celsius)>>20) + physic.ZeroCelsius - 50*physic.Celsius
	return nil
}

// Temperature runs a measurement and returns the temperature.
func (d *Dev) Temperature() (physic.Temperature, error) {
	var e physic.Env
	if err := d.Sense(&e); err != nil {
		return 0, err
	}
	return e.Temperature, nil
}

// Humidity runs a measurement and returns the relative humidity.
func (d *Dev) Humidity() (physic.RelativeHumidity, error) {
	var e physic.Env
	if err := d.Sense(&e); err != nil {
		return 0, err
	}
	return e.Humidity, nil
}

// Halt stops further measurements. The sensor has no sleep mode of its own;
// it idles between triggers.
func (d *Dev) Halt() error {
	d.halted = true
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("aht20.Dev{%s}", &d.d)
}
