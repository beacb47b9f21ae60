// Package max7219 drives a daisy chain of MAX7219/MAX7221 LED controllers
// wired to 8x8 matrix panels.
//
// Every SPI transaction carries one register/value pair per unit in the
// chain. The pair sent first ends up in the unit furthest from the host, so
// a transaction addressed to a single unit pads every other slot with a
// no-op.
//
// Unit 0 is the one wired closest to the host.
package max7219

import (
	"errors"
	"fmt"

	"github.com/espward/ward"
	"github.com/espward/ward/bitmap"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Registers.
const (
	regNoop        byte = 0x00
	regDigit0      byte = 0x01
	regDecodeMode  byte = 0x09
	regIntensity   byte = 0x0A
	regScanLimit   byte = 0x0B
	regShutdown    byte = 0x0C
	regDisplayTest byte = 0x0F
)

// DecodeMode selects how digit registers are interpreted.
type DecodeMode byte

const (
	// DecodeNone writes digit registers as raw LED bit patterns, the mode
	// used by matrix panels.
	DecodeNone DecodeMode = 0x00
	// DecodeB interprets digit registers as Code B font digits.
	DecodeB DecodeMode = 0xFF
)

// MaxIntensity is the brightest intensity setting.
const MaxIntensity = 0x0F

// Dev is a chain of MAX7219 units.
type Dev struct {
	c      conn.Conn
	units  int
	halted bool
}

// NewSPI connects to a chain of units over SPI.
//
// The port is configured for 10MHz, Mode0, 8-bit words. The chain is left
// shut down with the display test off, all 8 rows scanned and no decoding.
func NewSPI(p spi.Port, units int) (*Dev, error) {
	if units <= 0 {
		return nil, errors.New("max7219: invalid value for number of cascaded units")
	}
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, ward.Wrap("connect", -1, err)
	}
	return newDev(c, units)
}

func newDev(c conn.Conn, units int) (*Dev, error) {
	d := &Dev{c: c, units: units}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// init programs the registers that never change for a matrix chain.
func (d *Dev) init() error {
	cmds := [][2]byte{
		{regDisplayTest, 0x00},
		{regShutdown, 0x00},
		{regScanLimit, bitmap.Height - 1},
		{regDecodeMode, byte(DecodeNone)},
	}
	for _, cmd := range cmds {
		if err := d.broadcast(cmd[0], cmd[1]); err != nil {
			return d.wrap("init", -1, err)
		}
	}
	return nil
}

// broadcast writes the same register on every unit.
func (d *Dev) broadcast(reg, data byte) error {
	w := make([]byte, d.units*2)
	for i := 0; i < d.units; i++ {
		w[i*2] = reg
		w[i*2+1] = data
	}
	return d.c.Tx(w, nil)
}

// sendTo writes a register on one unit and a no-op on the others.
func (d *Dev) sendTo(unit int, reg, data byte) error {
	w := make([]byte, 0, d.units*2)
	for u := d.units - 1; u >= 0; u-- {
		if u == unit {
			w = append(w, reg, data)
		} else {
			w = append(w, regNoop, 0)
		}
	}
	return d.c.Tx(w, nil)
}

func (d *Dev) checkUnit(unit int) error {
	if d.halted {
		return errors.New("max7219: halted")
	}
	if unit < 0 || unit >= d.units {
		return fmt.Errorf("max7219: unit %d out of range [0, %d)", unit, d.units)
	}
	return nil
}

// Units returns the number of units in the chain.
func (d *Dev) Units() int {
	return d.units
}

// PowerOn takes every unit out of shutdown.
func (d *Dev) PowerOn() error {
	if d.halted {
		return errors.New("max7219: halted")
	}
	return d.wrap("power on", -1, d.broadcast(regShutdown, 0x01))
}

// PowerOff puts every unit in shutdown. Register contents are kept.
func (d *Dev) PowerOff() error {
	return d.wrap("power off", -1, d.broadcast(regShutdown, 0x00))
}

// SetIntensity sets the brightness of every unit, 0 to MaxIntensity.
func (d *Dev) SetIntensity(level byte) error {
	if d.halted {
		return errors.New("max7219: halted")
	}
	return d.wrap("set intensity", -1, d.broadcast(regIntensity, level&MaxIntensity))
}

// SetDecode sets the decode mode of every unit.
func (d *Dev) SetDecode(mode DecodeMode) error {
	if d.halted {
		return errors.New("max7219: halted")
	}
	return d.wrap("set decode", -1, d.broadcast(regDecodeMode, byte(mode)))
}

// TestDisplay lights every LED of every unit at full intensity while on is
// true. Mind the current draw of long chains.
func (d *Dev) TestDisplay(on bool) error {
	if d.halted {
		return errors.New("max7219: halted")
	}
	var v byte
	if on {
		v = 1
	}
	return d.wrap("display test", -1, d.broadcast(regDisplayTest, v))
}

// WriteRow writes the 8 LEDs of one row of one unit.
func (d *Dev) WriteRow(unit, row int, bits byte) error {
	if err := d.checkUnit(unit); err != nil {
		return err
	}
	if row < 0 || row >= bitmap.Height {
		return fmt.Errorf("max7219: row %d out of range", row)
	}
	return d.wrap("write row", unit, d.sendTo(unit, regDigit0+byte(row), bits))
}

// WritePanel writes all rows of one unit.
func (d *Dev) WritePanel(unit int, p bitmap.Panel) error {
	if err := d.checkUnit(unit); err != nil {
		return err
	}
	for row, bits := range p {
		if err := d.sendTo(unit, regDigit0+byte(row), bits); err != nil {
			return d.wrap("write panel", unit, err)
		}
	}
	return nil
}

// ClearPanel blanks one unit.
func (d *Dev) ClearPanel(unit int) error {
	return d.WritePanel(unit, bitmap.Panel{})
}

// Halt shuts the chain down. Further writes fail.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	return d.PowerOff()
}

func (d *Dev) String() string {
	return fmt.Sprintf("max7219.Dev{%s, units=%d}", d.c, d.units)
}

// wrap reports a bus failure as a *ward.HardwareError. unit is -1 for
// broadcasts.
func (d *Dev) wrap(op string, unit int, err error) error {
	return ward.Wrap(op, unit, err)
}
