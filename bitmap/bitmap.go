package bitmap

import (
	"image"
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Panel geometry in pixels.
const (
	Width  = 8
	Height = 8
)

// Panel is one 8x8 tile, one byte per row, MSB leftmost.
type Panel [Height]byte

// mask returns the bit of column x within a row byte.
func mask(x int) byte {
	return 0x80 >> uint(x)
}

// inPanel reports whether (x, y) is a valid local coordinate.
func inPanel(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// At reports whether the LED at local (x, y) is lit. Out of range
// coordinates report false.
func (p Panel) At(x, y int) bool {
	if !inPanel(x, y) {
		return false
	}
	return p[y]&mask(x) != 0
}

// Set lights or blanks the LED at local (x, y). Out of range coordinates are
// ignored.
func (p *Panel) Set(x, y int, on bool) {
	if !inPanel(x, y) {
		return
	}
	if on {
		p[y] |= mask(x)
	} else {
		p[y] &^= mask(x)
	}
}

// Toggle flips the LED at local (x, y) and returns its new state.
func (p *Panel) Toggle(x, y int) bool {
	if !inPanel(x, y) {
		return false
	}
	p[y] ^= mask(x)
	return p[y]&mask(x) != 0
}

// Clear blanks every LED.
func (p *Panel) Clear() {
	*p = Panel{}
}

// Empty reports whether no LED is lit.
func (p Panel) Empty() bool {
	return p == Panel{}
}

// Locate maps a flat chain coordinate to a panel index and local coordinate.
//
// The caller is responsible for checking the result against the chain size.
func Locate(x, y int) (panel, localX, localY int) {
	return x / Width, x % Width, y
}

// Tiled is a 1-bit image made of panels placed left to right.
type Tiled struct {
	Panels []Panel
	Rect   image.Rectangle
}

// NewTiled returns a blank image spanning n panels.
func NewTiled(n int) *Tiled {
	if n < 0 {
		panic("bitmap: negative panel count")
	}
	return &Tiled{
		Panels: make([]Panel, n),
		Rect:   image.Rect(0, 0, n*Width, Height),
	}
}

// ColorModel returns the color model of the image.
func (t *Tiled) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the image bounds.
func (t *Tiled) Bounds() image.Rectangle {
	return t.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (t *Tiled) At(x, y int) color.Color {
	return t.BitAt(x, y)
}

// BitAt returns the pixel at (x, y), Off outside the bounds.
func (t *Tiled) BitAt(x, y int) image1bit.Bit {
	panel, lx, ly, ok := t.locate(x, y)
	if !ok {
		return image1bit.Off
	}
	return image1bit.Bit(t.Panels[panel].At(lx, ly))
}

// Set sets the color of the pixel at (x, y).
func (t *Tiled) Set(x, y int, c color.Color) {
	t.SetBit(x, y, image1bit.BitModel.Convert(c).(image1bit.Bit))
}

// SetBit sets the pixel at (x, y). Writes outside the bounds do nothing.
func (t *Tiled) SetBit(x, y int, b image1bit.Bit) {
	panel, lx, ly, ok := t.locate(x, y)
	if !ok {
		return
	}
	t.Panels[panel].Set(lx, ly, bool(b))
}

// Clear blanks every panel.
func (t *Tiled) Clear() {
	for i := range t.Panels {
		t.Panels[i].Clear()
	}
}

// locate translates image coordinates to a panel and local coordinate.
func (t *Tiled) locate(x, y int) (panel, lx, ly int, ok bool) {
	if !(image.Point{X: x, Y: y}.In(t.Rect)) {
		return 0, 0, 0, false
	}
	panel, lx, ly = Locate(x-t.Rect.Min.X, y-t.Rect.Min.Y)
	return panel, lx, ly, true
}
