// Package pir reads a passive infrared motion sensor wired to one GPIO.
//
// The sensor module already conditions its output, so the level is reported
// as is, without debouncing.
package pir

import (
	"errors"
	"fmt"

	"github.com/espward/ward"
	"periph.io/x/conn/v3/gpio"
)

// Sensor is a PIR motion sensor.
type Sensor struct {
	p gpio.PinIn
}

// New configures p as an input with the given pull and returns a Sensor.
func New(p gpio.PinIn, pull gpio.Pull) (*Sensor, error) {
	if p == nil {
		return nil, errors.New("pir: nil pin")
	}
	if err := p.In(pull, gpio.NoEdge); err != nil {
		return nil, ward.Wrap("configure input "+p.Name(), -1, err)
	}
	return &Sensor{p: p}, nil
}

// MotionDetected reports whether the sensor output is high.
func (s *Sensor) MotionDetected() bool {
	return s.p.Read() == gpio.High
}

// Halt releases the pin.
func (s *Sensor) Halt() error {
	return s.p.Halt()
}

func (s *Sensor) String() string {
	return fmt.Sprintf("pir.Sensor{%s}", s.p)
}
