package sgp30

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

var initOp = i2ctest.IO{Addr: Addr, W: []byte{0x20, 0x03}}

func newTestDev(t *testing.T, ops ...i2ctest.IO) (*Dev, *i2ctest.Playback, *[]time.Duration) {
	t.Helper()
	bus := &i2ctest.Playback{Ops: append([]i2ctest.IO{initOp}, ops...), DontPanic: true}
	var slept []time.Duration
	d, err := newDev(bus, func(d time.Duration) { slept = append(slept, d) })
	if err != nil {
		t.Fatal(err)
	}
	return d, bus, &slept
}

func TestNew(t *testing.T) {
	d, bus, slept := newTestDev(t)
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(*slept) != "[10ms]" {
		t.Errorf("slept %v, want [10ms]", *slept)
	}
	if got, want := d.String(), "sgp30.Dev{playback(88)}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewBusError(t *testing.T) {
	if _, err := NewI2C(&i2ctest.Playback{DontPanic: true}); err == nil {
		t.Fatal("NewI2C should fail without a sensor")
	}
}

func TestMeasure(t *testing.T) {
	d, bus, slept := newTestDev(t,
		i2ctest.IO{Addr: Addr, W: []byte{0x20, 0x08}},
		i2ctest.IO{Addr: Addr, R: []byte{0x01, 0x90, 0x4C, 0x00, 0x19, 0x4A}},
	)
	m, err := d.Measure()
	if err != nil {
		t.Fatal(err)
	}
	if m.CO2 != 400 || m.TVOC != 25 {
		t.Errorf("Measure() = %+v, want 400ppm and 25ppb", m)
	}
	if got, want := m.String(), "400ppm CO2eq, 25ppb TVOC"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(*slept) != "[10ms 12ms]" {
		t.Errorf("slept %v", *slept)
	}
}

func TestCO2AndVOC(t *testing.T) {
	measure := i2ctest.IO{Addr: Addr, W: []byte{0x20, 0x08}}
	sample := i2ctest.IO{Addr: Addr, R: []byte{0x01, 0x90, 0x4C, 0x00, 0x19, 0x4A}}
	d, _, _ := newTestDev(t, measure, sample, measure, sample)
	co2, err := d.CO2()
	if err != nil || co2 != 400 {
		t.Errorf("CO2() = %d, %v", co2, err)
	}
	voc, err := d.VOC()
	if err != nil || voc != 25 {
		t.Errorf("VOC() = %d, %v", voc, err)
	}
}

func TestMeasureChecksum(t *testing.T) {
	d, _, _ := newTestDev(t,
		i2ctest.IO{Addr: Addr, W: []byte{0x20, 0x08}},
		i2ctest.IO{Addr: Addr, R: []byte{0x01, 0x90, 0x4C, 0x00, 0x19, 0x00}},
	)
	if _, err := d.Measure(); !errors.Is(err, ErrChecksum) {
		t.Fatalf("Measure() error = %v, want ErrChecksum", err)
	}
}

func TestBaseline(t *testing.T) {
	d, bus, _ := newTestDev(t,
		i2ctest.IO{Addr: Addr, W: []byte{0x20, 0x15}},
		i2ctest.IO{Addr: Addr, R: []byte{0x8A, 0x3B, 0x63, 0x8C, 0x47, 0xBC}},
		i2ctest.IO{Addr: Addr, W: []byte{0x20, 0x1E, 0x8C, 0x47, 0xBC, 0x8A, 0x3B, 0x63}},
	)
	b, err := d.Baseline()
	if err != nil {
		t.Fatal(err)
	}
	if b.CO2 != 0x8A3B || b.TVOC != 0x8C47 {
		t.Errorf("Baseline() = %+v", b)
	}
	if err := d.SetBaseline(b); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSerial(t *testing.T) {
	d, _, _ := newTestDev(t,
		i2ctest.IO{Addr: Addr, W: []byte{0x36, 0x82}},
		i2ctest.IO{Addr: Addr, R: []byte{0x00, 0x00, 0x81, 0x01, 0x23, 0xA0, 0x45, 0x67, 0x53}},
	)
	s, err := d.Serial()
	if err != nil {
		t.Fatal(err)
	}
	if s != 0x01234567 {
		t.Errorf("Serial() = %#x", s)
	}
}

func TestHalt(t *testing.T) {
	d, _, _ := newTestDev(t)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Measure(); err == nil {
		t.Error("Measure should fail when halted")
	}
	if err := d.SetBaseline(Baseline{}); err == nil {
		t.Error("SetBaseline should fail when halted")
	}
}
