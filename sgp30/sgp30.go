// Package sgp30 reads CO2 equivalent and total VOC concentrations from a
// Sensirion SGP30 gas sensor over I²C.
//
// The sensor runs its own baseline compensation once initialized and needs
// one measurement per second to keep it accurate. During the first 15
// seconds after New it reports the fixed values 400ppm and 0ppb.
package sgp30

import (
	"errors"
	"fmt"
	"time"

	"github.com/espward/ward/internal/crc8"
	"github.com/espward/ward/sensor"
	"periph.io/x/conn/v3/i2c"
)

// Addr is the fixed I²C address of the sensor.
const Addr = 0x58

// Commands.
var (
	cmdInitAirQuality    = []byte{0x20, 0x03}
	cmdMeasureAirQuality = []byte{0x20, 0x08}
	cmdGetBaseline       = []byte{0x20, 0x15}
	cmdSetBaseline       = []byte{0x20, 0x1E}
	cmdGetSerial         = []byte{0x36, 0x82}
)

// ErrChecksum is returned when a word read from the sensor fails its CRC
// check.
var ErrChecksum = errors.New("sgp30: checksum mismatch")

var errHalted = errors.New("sgp30: halted")

// Measurement is one air quality sample.
type Measurement struct {
	CO2  uint16 // CO2 equivalent in ppm
	TVOC uint16 // total VOC in ppb
}

func (m Measurement) String() string {
	return fmt.Sprintf("%dppm CO2eq, %dppb TVOC", m.CO2, m.TVOC)
}

// Baseline is the state of the on-chip compensation. Saving it and
// restoring it after a power cycle shortens the warm up.
type Baseline struct {
	CO2  uint16
	TVOC uint16
}

// Dev is a handle to an SGP30.
type Dev struct {
	d i2c.Dev

	sleep  func(time.Duration)
	halted bool
}

var (
	_ sensor.CO2Sensor = (*Dev)(nil)
	_ sensor.VOCSensor = (*Dev)(nil)
)

// NewI2C returns a handle to the SGP30 on b and starts its air quality
// algorithm.
func NewI2C(b i2c.Bus) (*Dev, error) {
	return newDev(b, time.Sleep)
}

func newDev(b i2c.Bus, sleep func(time.Duration)) (*Dev, error) {
	d := &Dev{d: i2c.Dev{Bus: b, Addr: Addr}, sleep: sleep}
	if err := d.d.Tx(cmdInitAirQuality, nil); err != nil {
		return nil, fmt.Errorf("sgp30: init: %w", err)
	}
	d.sleep(10 * time.Millisecond)
	return d, nil
}

// readWords sends cmd, waits wait and reads n checksummed words. Bus
// errors are reported as failures of op.
func (d *Dev) readWords(op string, cmd []byte, wait time.Duration, n int) ([]uint16, error) {
	if err := d.d.Tx(cmd, nil); err != nil {
		return nil, fmt.Errorf("sgp30: %s: %w", op, err)
	}
	d.sleep(wait)
	buf := make([]byte, 3*n)
	if err := d.d.Tx(nil, buf); err != nil {
		return nil, fmt.Errorf("sgp30: %s: %w", op, err)
	}
	words := make([]uint16, n)
	for i := range words {
		w := buf[3*i : 3*i+3]
		if crc8.Checksum(w[:2]) != w[2] {
			return nil, ErrChecksum
		}
		words[i] = uint16(w[0])<<8 | uint16(w[1])
	}
	return words, nil
}

// Measure returns one air quality sample.
func (d *Dev) Measure() (Measurement, error) {
	if d.halted {
		return Measurement{}, errHalted
	}
	w, err := d.readWords("measure", cmdMeasureAirQuality, 12*time.Millisecond, 2)
	if err != nil {
		return Measurement{}, err
	}
	return Measurement{CO2: w[0], TVOC: w[1]}, nil
}

// CO2 returns the CO2 equivalent concentration in ppm.
func (d *Dev) CO2() (uint16, error) {
	m, err := d.Measure()
	return m.CO2, err
}

// VOC returns the total VOC concentration in ppb.
func (d *Dev) VOC() (uint16, error) {
	m, err := d.Measure()
	return m.TVOC, err
}

// Baseline returns the current compensation baseline.
func (d *Dev) Baseline() (Baseline, error) {
	if d.halted {
		return Baseline{}, errHalted
	}
	w, err := d.readWords("get baseline", cmdGetBaseline, 10*time.Millisecond, 2)
	if err != nil {
		return Baseline{}, err
	}
	return Baseline{CO2: w[0], TVOC: w[1]}, nil
}

// SetBaseline restores a baseline saved with Baseline.
func (d *Dev) SetBaseline(b Baseline) error {
	if d.halted {
		return errHalted
	}
	// The sensor takes the TVOC word first.
	w := append([]byte(nil), cmdSetBaseline...)
	for _, v := range []uint16{b.TVOC, b.CO2} {
		word := []byte{byte(v >> 8), byte(v)}
		w = append(w, word[0], word[1], crc8.Checksum(word))
	}
	if err := d.d.Tx(w, nil); err != nil {
		return fmt.Errorf("sgp30: set baseline: %w", err)
	}
	d.sleep(10 * time.Millisecond)
	return nil
}

// Serial returns the 48-bit serial number of the sensor.
func (d *Dev) Serial() (uint64, error) {
	if d.halted {
		return 0, errHalted
	}
	w, err := d.readWords("get serial", cmdGetSerial, time.Millisecond, 3)
	if err != nil {
		return 0, err
	}
	return uint64(w[0])<<32 | uint64(w[1])<<16 | uint64(w[2]), nil
}

// Halt stops further measurements. The sensor keeps heating until it is
// powered off.
func (d *Dev) Halt() error {
	d.halted = true
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("sgp30.Dev{%s}", &d.d)
}
