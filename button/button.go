// Package button debounces mechanical push buttons and similar digital inputs.
//
// A Button is polled from the caller's control loop. When the raw level
// disagrees with the last confirmed state, Poll blocks for the settle delay
// and reads the pin again; only a level that survives the delay changes the
// state and produces an edge event.
//
//	btn, _ := button.New(gpioreg.ByName("GPIO23"), nil)
//	for {
//		switch btn.Poll() {
//		case button.Pressed:
//			fmt.Println("pressed")
//		case button.Released:
//			fmt.Println("released")
//		}
//	}
package button

import (
	"errors"
	"fmt"
	"time"

	"github.com/espward/ward"
	"periph.io/x/conn/v3/gpio"
)

// DefaultSettle is the settle delay used when Opts.Settle is zero.
const DefaultSettle = 30 * time.Millisecond

// Input is a digital input that can be sampled at any time.
//
// gpio.PinIn satisfies it.
type Input interface {
	Read() gpio.Level
}

// Event is the outcome of a single Poll.
type Event int

const (
	Nothing Event = iota
	Pressed
	Released
)

func (e Event) String() string {
	switch e {
	case Nothing:
		return "Nothing"
	case Pressed:
		return "Pressed"
	case Released:
		return "Released"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Opts is the configuration for a Button.
type Opts struct {
	// Settle is how long a new level must persist (default 30ms).
	Settle time.Duration
	// ActiveHigh selects a button that drives the line high when pressed.
	// The default is the pull-up wiring: idle high, pressed low.
	ActiveHigh bool
	// Pull is applied when the input is a gpio.PinIn. The zero value (Float)
	// selects PullUp for active low buttons and PullDown for active high
	// ones; a floating button input never settles.
	Pull gpio.Pull
}

// Button is a debounced digital input.
type Button struct {
	in         Input
	settle     time.Duration
	activeHigh bool

	// pressed is the last confirmed state, initially released.
	pressed bool

	sleep func(time.Duration)
}

// New returns a Button reading from in.
//
// If in is a gpio.PinIn it is configured as an input first. The button
// starts released without reading the pin, so one held down at start up
// reports Pressed on the first Poll.
func New(in Input, opts *Opts) (*Button, error) {
	if in == nil {
		return nil, errors.New("button: nil input")
	}
	if opts == nil {
		opts = &Opts{}
	}
	if opts.Settle < 0 {
		return nil, fmt.Errorf("button: negative settle delay %s", opts.Settle)
	}

	b := &Button{
		in:         in,
		settle:     opts.Settle,
		activeHigh: opts.ActiveHigh,
		sleep:      time.Sleep,
	}
	if b.settle == 0 {
		b.settle = DefaultSettle
	}

	if p, ok := in.(gpio.PinIn); ok {
		pull := opts.Pull
		if pull == gpio.Float {
			pull = gpio.PullUp
			if opts.ActiveHigh {
				pull = gpio.PullDown
			}
		}
		if err := p.In(pull, gpio.NoEdge); err != nil {
			return nil, ward.Wrap("configure input "+p.Name(), -1, err)
		}
	}

	return b, nil
}

// read samples the pin and converts the level into the pressed state.
func (b *Button) read() bool {
	return b.in.Read() == gpio.Level(b.activeHigh)
}

// Poll samples the input once and reports a debounced edge.
//
// When the sample disagrees with the confirmed state Poll blocks for the
// settle delay before sampling again. A level that reverted during the delay
// is treated as noise and yields Nothing.
func (b *Button) Poll() Event {
	if b.read() == b.pressed {
		return Nothing
	}
	b.sleep(b.settle)
	if b.read() == b.pressed {
		return Nothing
	}
	b.pressed = !b.pressed
	if b.pressed {
		return Pressed
	}
	return Released
}

// IsPressed polls the button and reports whether a Pressed edge was seen.
//
// It consumes the poll: a Released edge observed here is lost to any later
// Poll call. Code that needs both edges should call Poll directly.
func (b *Button) IsPressed() bool {
	return b.Poll() == Pressed
}

// State returns the last confirmed state without touching the pin.
func (b *Button) State() bool {
	return b.pressed
}

// Settle returns the configured settle delay.
func (b *Button) Settle() time.Duration {
	return b.settle
}

func (b *Button) String() string {
	if s, ok := b.in.(fmt.Stringer); ok {
		return fmt.Sprintf("button.Button{%s}", s)
	}
	return "button.Button"
}
