// Package joystick reads a two axis analog joystick with a push-to-select
// button.
//
// Both axes are sampled through periph's analog interface; the select button
// is debounced with package button.
package joystick

import (
	"errors"
	"fmt"
	"strings"

	"github.com/espward/ward"
	"github.com/espward/ward/button"
	"periph.io/x/conn/v3/analog"
)

// RoughThreshold is the raw mid-scale value of a 12-bit ADC.
const RoughThreshold = 2048

// Axis is one analog channel. analog.PinADC satisfies it.
type Axis interface {
	Read() (analog.Sample, error)
}

// Direction is a set of stick deflections.
type Direction uint8

const (
	Left Direction = 1 << iota
	Right
	Up
	Down

	Center Direction = 0
)

func (d Direction) String() string {
	if d == Center {
		return "Center"
	}
	var parts []string
	for _, n := range []struct {
		d    Direction
		name string
	}{{Left, "Left"}, {Right, "Right"}, {Up, "Up"}, {Down, "Down"}} {
		if d&n.d != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Opts is the configuration for a Joystick.
type Opts struct {
	// Threshold splits each axis (default RoughThreshold).
	Threshold int32
	// Button configures the select button debouncing.
	Button *button.Opts
}

// Joystick is a two axis stick with a select button.
type Joystick struct {
	// Select is the debounced select button.
	Select *button.Button

	x, y      Axis
	threshold int32
}

// New returns a Joystick reading x and y and debouncing sel.
func New(sel button.Input, x, y Axis, opts *Opts) (*Joystick, error) {
	if x == nil || y == nil {
		return nil, errors.New("joystick: both axes are required")
	}
	if opts == nil {
		opts = &Opts{}
	}
	b, err := button.New(sel, opts.Button)
	if err != nil {
		return nil, fmt.Errorf("joystick: %w", err)
	}
	j := &Joystick{Select: b, x: x, y: y, threshold: opts.Threshold}
	if j.threshold == 0 {
		j.threshold = RoughThreshold
	}
	return j, nil
}

// Axes samples both axes and returns their raw values.
func (j *Joystick) Axes() (x, y int32, err error) {
	if x, err = j.X(); err != nil {
		return 0, 0, err
	}
	if y, err = j.Y(); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// X samples the horizontal axis.
func (j *Joystick) X() (int32, error) {
	s, err := j.x.Read()
	if err != nil {
		return 0, ward.Wrap("read x axis", -1, err)
	}
	return s.Raw, nil
}

// Y samples the vertical axis.
func (j *Joystick) Y() (int32, error) {
	s, err := j.y.Read()
	if err != nil {
		return 0, ward.Wrap("read y axis", -1, err)
	}
	return s.Raw, nil
}

// Direction samples both axes and decodes them against the threshold.
//
// The stick is mounted with the X axis reading low when pushed right and the
// Y axis reading low when pushed down.
func (j *Joystick) Direction() (Direction, error) {
	x, y, err := j.Axes()
	if err != nil {
		return Center, err
	}
	var d Direction
	switch {
	case x < j.threshold:
		d |= Right
	case x > j.threshold:
		d |= Left
	}
	switch {
	case y < j.threshold:
		d |= Down
	case y > j.threshold:
		d |= Up
	}
	return d, nil
}

// SelectPressed polls the select button and reports a new press.
//
// See button.Button.IsPressed for how this interacts with Poll.
func (j *Joystick) SelectPressed() bool {
	return j.Select.IsPressed()
}
