// Package ultrasonic measures distances with an HC-SR04 style ultrasonic
// ranger.
//
// A 10µs pulse on the trigger pin starts a measurement. The sensor then
// holds its echo pin high for as long as the sound took to travel to the
// obstacle and back. The speed of sound depends on the air temperature,
// 331.3 m/s at 0°C plus 0.606 m/s per degree.
package ultrasonic

import (
	"errors"
	"fmt"
	"time"

	"github.com/espward/ward"
	"github.com/espward/ward/sensor"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// DefaultTemperature is assumed when no temperature is configured.
const DefaultTemperature = physic.ZeroCelsius + 20*physic.Celsius

// ErrTimeout is returned when no echo arrives, or it does not end, within
// the timeout. Nothing in range usually shows up as a timeout.
var ErrTimeout = errors.New("ultrasonic: echo timeout")

// Opts is the configuration for a Dev.
type Opts struct {
	// Temperature of the air (default DefaultTemperature).
	Temperature physic.Temperature
	// Thermometer, when set, is read before every measurement instead of
	// using Temperature.
	Thermometer sensor.TemperatureSensor
	// Timeout bounds the wait for the echo and its length (default 40ms,
	// a little more than the longest echo of an HC-SR04).
	Timeout time.Duration
}

// Dev is an ultrasonic ranger.
type Dev struct {
	trig    gpio.PinOut
	echo    gpio.PinIn
	temp    physic.Temperature
	thermo  sensor.TemperatureSensor
	timeout time.Duration

	sleep func(time.Duration)
	now   func() time.Time
}

var _ sensor.DistanceSensor = (*Dev)(nil)

// New returns a ranger on the given pins and pulls the trigger low.
//
// opts can be nil to use defaults.
func New(trig gpio.PinOut, echo gpio.PinIn, opts *Opts) (*Dev, error) {
	if trig == nil || echo == nil {
		return nil, errors.New("ultrasonic: nil pin")
	}
	if opts == nil {
		opts = &Opts{}
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("ultrasonic: negative timeout %s", opts.Timeout)
	}
	d := &Dev{
		trig:    trig,
		echo:    echo,
		temp:    opts.Temperature,
		thermo:  opts.Thermometer,
		timeout: opts.Timeout,
		sleep:   time.Sleep,
		now:     time.Now,
	}
	if d.temp == 0 {
		d.temp = DefaultTemperature
	}
	if d.timeout == 0 {
		d.timeout = 40 * time.Millisecond
	}
	if err := trig.Out(gpio.Low); err != nil {
		return nil, ward.Wrap("configure trigger "+trig.Name(), -1, err)
	}
	if err := echo.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, ward.Wrap("configure echo "+echo.Name(), -1, err)
	}
	return d, nil
}

// Distance measures the distance to the nearest obstacle.
func (d *Dev) Distance() (physic.Distance, error) {
	t := d.temp
	if d.thermo != nil {
		var err error
		if t, err = d.thermo.Temperature(); err != nil {
			return 0, fmt.Errorf("ultrasonic: read temperature: %w", err)
		}
	}
	return d.DistanceAt(t)
}

// DistanceAt measures the distance with the speed of sound at air
// temperature t.
func (d *Dev) DistanceAt(t physic.Temperature) (physic.Distance, error) {
	echo, err := d.pulse()
	if err != nil {
		return 0, err
	}
	return Distance(echo, t), nil
}

// pulse triggers a measurement and returns the length of the echo.
func (d *Dev) pulse() (time.Duration, error) {
	if err := d.trig.Out(gpio.High); err != nil {
		return 0, ward.Wrap("trigger "+d.trig.Name(), -1, err)
	}
	d.sleep(10 * time.Microsecond)
	if err := d.trig.Out(gpio.Low); err != nil {
		return 0, ward.Wrap("trigger "+d.trig.Name(), -1, err)
	}

	deadline := d.now().Add(d.timeout)
	for d.echo.Read() == gpio.Low {
		if d.now().After(deadline) {
			return 0, ErrTimeout
		}
	}
	start := d.now()
	deadline = start.Add(d.timeout)
	for d.echo.Read() == gpio.High {
		if d.now().After(deadline) {
			return 0, ErrTimeout
		}
	}
	return d.now().Sub(start), nil
}

// SpeedOfSound returns the speed of sound in air at temperature t.
func SpeedOfSound(t physic.Temperature) physic.Speed {
	return physic.Speed((331.3 + 0.606*t.Celsius()) * float64(physic.MetrePerSecond))
}

// Distance converts the length of an echo at air temperature t into the
// distance to the obstacle, half of the way the sound travelled.
func Distance(echo time.Duration, t physic.Temperature) physic.Distance {
	v := float64(SpeedOfSound(t)) / float64(physic.MetrePerSecond)
	return physic.Distance(v * echo.Seconds() / 2 * float64(physic.Metre))
}

// Halt pulls the trigger low.
func (d *Dev) Halt() error {
	return ward.Wrap("halt "+d.trig.Name(), -1, d.trig.Out(gpio.Low))
}

func (d *Dev) String() string {
	return fmt.Sprintf("ultrasonic.Dev{%s, %s}", d.trig, d.echo)
}
