// Package tsl2591 reads ambient light from an ams TSL2591 sensor over I²C.
//
// The sensor integrates two photodiodes: channel 0 sees visible and
// infrared light, channel 1 infrared only. Lux is derived from both.
package tsl2591

import (
	"errors"
	"fmt"
	"time"

	"github.com/espward/ward/sensor"
	"periph.io/x/conn/v3/i2c"
)

// Addr is the fixed I²C address of the sensor.
const Addr = 0x29

// Registers, addressed through the command byte.
const (
	cmdNormal = 0xA0

	regEnable  = 0x00
	regControl = 0x01
	regID      = 0x12
	regC0Data  = 0x14

	enablePowerOn = 0x01
	enableALS     = 0x02

	chipID = 0x50

	// luxDF is the device factor of the lux formula.
	luxDF = 408.0
)

// Gain is the amplification of the photodiode signal.
type Gain byte

const (
	GainLow    Gain = 0x00 // 1x
	GainMedium Gain = 0x10 // 25x
	GainHigh   Gain = 0x20 // 428x
	GainMax    Gain = 0x30 // 9876x
)

func (g Gain) factor() float64 {
	switch g {
	case GainMedium:
		return 25
	case GainHigh:
		return 428
	case GainMax:
		return 9876
	default:
		return 1
	}
}

// Integration is the time the photodiodes integrate light, 100ms to 600ms
// in steps of 100ms.
type Integration byte

const (
	Integration100ms Integration = iota
	Integration200ms
	Integration300ms
	Integration400ms
	Integration500ms
	Integration600ms
)

// Duration returns the integration time.
func (i Integration) Duration() time.Duration {
	return time.Duration(i+1) * 100 * time.Millisecond
}

// ErrOverflow is returned when a channel saturated. Lower the gain or the
// integration time.
var ErrOverflow = errors.New("tsl2591: channel overflow")

// Opts is the configuration for the TSL2591.
type Opts struct {
	Gain        Gain        // default GainMedium
	Integration Integration // default Integration100ms
}

// Dev is a handle to a TSL2591.
type Dev struct {
	d           i2c.Dev
	gain        Gain
	integration Integration

	sleep  func(time.Duration)
	halted bool
}

var _ sensor.LumiSensor = (*Dev)(nil)

// NewI2C checks the chip ID, configures gain and integration time and
// enables the sensor.
//
// opts can be nil to use defaults.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	return newDev(b, opts, time.Sleep)
}

func newDev(b i2c.Bus, opts *Opts, sleep func(time.Duration)) (*Dev, error) {
	if opts == nil {
		opts = &Opts{Gain: GainMedium}
	}
	if opts.Gain&^0x30 != 0 {
		return nil, fmt.Errorf("tsl2591: invalid gain %#x", byte(opts.Gain))
	}
	if opts.Integration > Integration600ms {
		return nil, fmt.Errorf("tsl2591: invalid integration time %d", opts.Integration)
	}
	d := &Dev{
		d:           i2c.Dev{Bus: b, Addr: Addr},
		gain:        opts.Gain,
		integration: opts.Integration,
		sleep:       sleep,
	}

	var id [1]byte
	if err := d.d.Tx([]byte{cmdNormal | regID}, id[:]); err != nil {
		return nil, fmt.Errorf("tsl2591: read id: %w", err)
	}
	if id[0] != chipID {
		return nil, fmt.Errorf("tsl2591: unexpected chip id %#x", id[0])
	}
	if err := d.d.Tx([]byte{cmdNormal | regControl, byte(d.gain) | byte(d.integration)}, nil); err != nil {
		return nil, fmt.Errorf("tsl2591: configure: %w", err)
	}
	if err := d.d.Tx([]byte{cmdNormal | regEnable, enablePowerOn | enableALS}, nil); err != nil {
		return nil, fmt.Errorf("tsl2591: enable: %w", err)
	}
	return d, nil
}

// Channels waits one integration period and returns the raw counts of
// both channels.
func (d *Dev) Channels() (full, ir uint16, err error) {
	if d.halted {
		return 0, 0, errors.New("tsl2591: halted")
	}
	d.sleep(d.integration.Duration())
	var buf [4]byte
	if err := d.d.Tx([]byte{cmdNormal | regC0Data}, buf[:]); err != nil {
		return 0, 0, fmt.Errorf("tsl2591: read channels: %w", err)
	}
	full = uint16(buf[1])<<8 | uint16(buf[0])
	ir = uint16(buf[3])<<8 | uint16(buf[2])
	return full, ir, nil
}

// Lux returns the illuminance.
func (d *Dev) Lux() (float64, error) {
	full, ir, err := d.Channels()
	if err != nil {
		return 0, err
	}
	return d.lux(full, ir)
}

func (d *Dev) lux(full, ir uint16) (float64, error) {
	if full == 0xFFFF || ir == 0xFFFF {
		return 0, ErrOverflow
	}
	if full == 0 {
		return 0, nil
	}
	cpl := float64(d.integration.Duration()/time.Millisecond) * d.gain.factor() / luxDF
	c0, c1 := float64(full), float64(ir)
	return (c0 - c1) * (1 - c1/c0) / cpl, nil
}

// Halt powers the sensor down.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	if err := d.d.Tx([]byte{cmdNormal | regEnable, 0x00}, nil); err != nil {
		return fmt.Errorf("tsl2591: disable: %w", err)
	}
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("tsl2591.Dev{%s}", &d.d)
}
