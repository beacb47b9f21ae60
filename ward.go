package ward

import (
	"errors"
	"fmt"
)

// ErrHardware is matched by every *HardwareError through errors.Is.
var ErrHardware = errors.New("ward: hardware failure")

// HardwareError reports a failed bus or pin operation.
//
// Panel is the index of the addressed panel or -1 when the operation was not
// panel specific.
type HardwareError struct {
	Op    string
	Panel int
	Err   error
}

func (e *HardwareError) Error() string {
	if e.Panel >= 0 {
		return fmt.Sprintf("ward: %s (panel %d): %v", e.Op, e.Panel, e.Err)
	}
	return fmt.Sprintf("ward: %s: %v", e.Op, e.Err)
}

func (e *HardwareError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrHardware.
func (e *HardwareError) Is(target error) bool {
	return target == ErrHardware
}

// Wrap returns nil if err is nil, otherwise a *HardwareError.
//
// An err that already carries a *HardwareError is returned unchanged, so a
// failure reported by a lower layer keeps the operation and panel it named.
func Wrap(op string, panel int, err error) error {
	if err == nil {
		return nil
	}
	var hw *HardwareError
	if errors.As(err, &hw) {
		return err
	}
	return &HardwareError{Op: op, Panel: panel, Err: err}
}

// Display is the minimal contract shared by every display in this module.
type Display interface {
	// SetPixel lights the pixel at (x, y).
	SetPixel(x, y int) error
	// WriteString renders text using the display's default placement.
	WriteString(text string) error
	// Reset blanks the display.
	Reset() error
}
