package ward

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapNil(t *testing.T) {
	if err := Wrap("write row", 0, nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestHardwareError(t *testing.T) {
	busErr := errors.New("spi: timeout")

	tests := []struct {
		name    string
		panel   int
		wantMsg string
	}{
		{"panel", 2, "ward: write row (panel 2): spi: timeout"},
		{"no panel", -1, "ward: write row: spi: timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrap("write row", tt.panel, busErr)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
			if !errors.Is(err, ErrHardware) {
				t.Error("errors.Is(err, ErrHardware) = false")
			}
			if !errors.Is(err, busErr) {
				t.Error("errors.Is(err, busErr) = false")
			}
			var hw *HardwareError
			if !errors.As(err, &hw) {
				t.Fatal("errors.As(err, *HardwareError) = false")
			}
			if hw.Panel != tt.panel {
				t.Errorf("Panel = %d, want %d", hw.Panel, tt.panel)
			}
		})
	}
}

func TestWrapKeepsHardwareError(t *testing.T) {
	busErr := errors.New("spi: timeout")
	inner := Wrap("write row", 1, busErr)

	err := Wrap("write row", 1, inner)
	if err != inner {
		t.Errorf("Wrap rewrapped %v", inner)
	}
	if got, want := err.Error(), "ward: write row (panel 1): spi: timeout"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	// A HardwareError further down the chain is kept as is too.
	outer := fmt.Errorf("flush: %w", inner)
	if got := Wrap("draw", -1, outer); got != outer {
		t.Errorf("Wrap(%v) = %v, want it unchanged", outer, got)
	}
}
