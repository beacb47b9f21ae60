// Package matrix presents a chain of 8x8 LED matrix panels as one flat
// pixel grid.
//
// The grid is 8*N pixels wide and 8 pixels high; flat column x lives on
// panel x/8. The controllers are write-only, so the display keeps a shadow
// copy of every panel and only sends the rows that change.
//
// Addressing a pixel outside the grid is a programming error and panics.
// Bus failures are returned as *ward.HardwareError.
package matrix

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/espward/ward"
	"github.com/espward/ward/bitmap"
	"github.com/espward/ward/max7219"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/tinyfont"
)

// DefaultIntensity is the brightness set by New when Opts.Intensity is zero.
const DefaultIntensity = 5

// Chain is a daisy chain of 8x8 panel controllers.
//
// *max7219.Dev implements it.
type Chain interface {
	PowerOn() error
	PowerOff() error
	ClearPanel(index int) error
	WriteRow(index, row int, bits byte) error
	SetIntensity(level byte) error
}

// Opts is the configuration for a Display.
type Opts struct {
	// Intensity is the initial brightness, 1 to 15 (default 5).
	Intensity byte
	// Font is used by WriteString and Scroll (default tinyfont.TomThumb).
	Font tinyfont.Fonter
	// Baseline is the row text is drawn on (default 6).
	Baseline int16
}

// Display is a chain of panels with a shadow of their content.
//
// The Display owns its Chain: nothing else may write to the same panels.
type Display struct {
	chain    Chain
	shadow   *bitmap.Tiled
	font     tinyfont.Fonter
	baseline int16
	halted   bool
}

var _ display.Drawer = (*Display)(nil)
var _ ward.Display = (*Display)(nil)

// New takes ownership of c and returns a Display spanning panels panels.
//
// The chain is powered on, set to the configured intensity and blanked.
// New panics if panels is less than one.
func New(c Chain, panels int, opts *Opts) (*Display, error) {
	if panels < 1 {
		panic(fmt.Sprintf("matrix: invalid panel count %d", panels))
	}
	if opts == nil {
		opts = &Opts{}
	}
	d := &Display{
		chain:    c,
		shadow:   bitmap.NewTiled(panels),
		font:     opts.Font,
		baseline: opts.Baseline,
	}
	if d.font == nil {
		d.font = &tinyfont.TomThumb
	}
	if d.baseline == 0 {
		d.baseline = 6
	}
	intensity := opts.Intensity
	if intensity == 0 {
		intensity = DefaultIntensity
	}

	if err := c.PowerOn(); err != nil {
		return nil, ward.Wrap("power on", -1, err)
	}
	if err := c.SetIntensity(intensity); err != nil {
		return nil, ward.Wrap("set intensity", -1, err)
	}
	if err := d.clearAll(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewSPI builds a MAX7219 chain on p and returns a Display that owns it.
func NewSPI(p spi.Port, panels int, opts *Opts) (*Display, error) {
	if panels < 1 {
		panic(fmt.Sprintf("matrix: invalid panel count %d", panels))
	}
	dev, err := max7219.NewSPI(p, panels)
	if err != nil {
		return nil, ward.Wrap("connect", -1, err)
	}
	return New(dev, panels, opts)
}

// Panels returns the number of panels in the chain.
func (d *Display) Panels() int {
	return len(d.shadow.Panels)
}

// Panel returns a copy of the shadow of panel i.
func (d *Display) Panel(i int) bitmap.Panel {
	return d.shadow.Panels[i]
}

// locate maps (x, y) to a panel and local coordinate, panicking when the
// pixel is outside the grid.
func (d *Display) locate(x, y int) (panel, lx, ly int) {
	if x < 0 || y < 0 || y >= bitmap.Height || x >= bitmap.Width*d.Panels() {
		panic(fmt.Sprintf("matrix: pixel (%d, %d) outside %dx%d display", x, y, bitmap.Width*d.Panels(), bitmap.Height))
	}
	return bitmap.Locate(x, y)
}

// update applies fn to a copy of one panel row and writes the row out if it
// changed. The shadow is only updated once the write succeeded.
func (d *Display) update(x, y int, fn func(p *bitmap.Panel, lx, ly int)) error {
	panel, lx, ly := d.locate(x, y)
	if d.halted {
		return errors.New("matrix: halted")
	}
	next := d.shadow.Panels[panel]
	fn(&next, lx, ly)
	if next[ly] == d.shadow.Panels[panel][ly] {
		return nil
	}
	if err := d.chain.WriteRow(panel, ly, next[ly]); err != nil {
		return ward.Wrap("write row", panel, err)
	}
	d.shadow.Panels[panel][ly] = next[ly]
	return nil
}

// SetPixel lights the LED at (x, y).
func (d *Display) SetPixel(x, y int) error {
	return d.update(x, y, func(p *bitmap.Panel, lx, ly int) { p.Set(lx, ly, true) })
}

// ClearPixel blanks the LED at (x, y).
func (d *Display) ClearPixel(x, y int) error {
	return d.update(x, y, func(p *bitmap.Panel, lx, ly int) { p.Set(lx, ly, false) })
}

// TogglePixel flips the LED at (x, y).
func (d *Display) TogglePixel(x, y int) error {
	return d.update(x, y, func(p *bitmap.Panel, lx, ly int) { p.Toggle(lx, ly) })
}

// Pixel reports whether the LED at (x, y) is lit.
func (d *Display) Pixel(x, y int) bool {
	panel, lx, ly := d.locate(x, y)
	return d.shadow.Panels[panel].At(lx, ly)
}

// Reset blanks every panel, in index order.
func (d *Display) Reset() error {
	if d.halted {
		return errors.New("matrix: halted")
	}
	return d.clearAll()
}

func (d *Display) clearAll() error {
	for i := range d.shadow.Panels {
		if err := d.chain.ClearPanel(i); err != nil {
			return ward.Wrap("clear panel", i, err)
		}
		d.shadow.Panels[i].Clear()
	}
	return nil
}

// SetIntensity sets the brightness of the whole chain, 0 to 15.
func (d *Display) SetIntensity(level byte) error {
	if d.halted {
		return errors.New("matrix: halted")
	}
	return ward.Wrap("set intensity", -1, d.chain.SetIntensity(level))
}

// ColorModel returns image1bit.BitModel.
func (d *Display) ColorModel() color.Model {
	return d.shadow.ColorModel()
}

// Bounds returns the flat grid bounds.
func (d *Display) Bounds() image.Rectangle {
	return d.shadow.Bounds()
}

// Draw draws src onto the grid. Only rows that differ from the shadow are
// sent to the panels.
func (d *Display) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("matrix: halted")
	}
	dst = dst.Intersect(d.shadow.Rect)
	if dst.Empty() {
		return nil
	}
	next := d.snapshot()
	draw.Draw(next, dst, src, sp, draw.Src)
	return d.flush(next)
}

// snapshot returns a copy of the shadow.
func (d *Display) snapshot() *bitmap.Tiled {
	next := bitmap.NewTiled(d.Panels())
	copy(next.Panels, d.shadow.Panels)
	return next
}

// flush writes every row of next that differs from the shadow.
func (d *Display) flush(next *bitmap.Tiled) error {
	for i := range d.shadow.Panels {
		for row := 0; row < bitmap.Height; row++ {
			bits := next.Panels[i][row]
			if bits == d.shadow.Panels[i][row] {
				continue
			}
			if err := d.chain.WriteRow(i, row, bits); err != nil {
				return ward.Wrap("write row", i, err)
			}
			d.shadow.Panels[i][row] = bits
		}
	}
	return nil
}

// Halt powers the chain off. The display does not accept further writes.
func (d *Display) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	return ward.Wrap("power off", -1, d.chain.PowerOff())
}

func (d *Display) String() string {
	return fmt.Sprintf("matrix.Display{%dx%d, %d panels}", d.shadow.Rect.Dx(), d.shadow.Rect.Dy(), d.Panels())
}
