package matrix

import (
	"context"
	"errors"
	"image/color"
	"time"

	"github.com/espward/ward/bitmap"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// canvas lets tinyfont render into a bitmap. Pixels outside the bitmap are
// dropped, so text may start or run off either edge.
type canvas struct {
	img *bitmap.Tiled
}

var _ drivers.Displayer = canvas{}

func (c canvas) Size() (x, y int16) {
	r := c.img.Bounds()
	return int16(r.Dx()), int16(r.Dy())
}

func (c canvas) SetPixel(x, y int16, col color.RGBA) {
	on := col.A != 0 && (col.R != 0 || col.G != 0 || col.B != 0)
	c.img.SetBit(int(x), int(y), image1bit.Bit(on))
}

func (c canvas) Display() error {
	return nil
}

var ink = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// render draws text starting at column x onto img.
func (d *Display) render(img *bitmap.Tiled, x int16, text string) {
	tinyfont.WriteLine(canvas{img}, d.font, x, d.baseline, text, ink)
}

// textWidth returns the width of text in pixels.
func (d *Display) textWidth(text string) int {
	_, w := tinyfont.LineWidth(d.font, text)
	return int(w)
}

// WriteString replaces the display content with text, left aligned. Text
// wider than the display is cut off; use Scroll for long strings.
func (d *Display) WriteString(text string) error {
	if d.halted {
		return errors.New("matrix: halted")
	}
	next := bitmap.NewTiled(d.Panels())
	d.render(next, 0, text)
	return d.flush(next)
}

// ScrollOpts controls Scroll.
type ScrollOpts struct {
	// Interval is the delay between one column shift and the next
	// (default 25ms).
	Interval time.Duration
	// Rounds is how many times the text crosses the display (default 2).
	// A negative value scrolls until the context is done.
	Rounds int
}

// Scroll moves text from the right edge to the left until it has left the
// display, Rounds times. It blocks until done or until ctx is cancelled; on
// cancellation the last frame stays on the panels.
func (d *Display) Scroll(ctx context.Context, text string, opts *ScrollOpts) error {
	if d.halted {
		return errors.New("matrix: halted")
	}
	if opts == nil {
		opts = &ScrollOpts{}
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 25 * time.Millisecond
	}
	rounds := opts.Rounds
	if rounds == 0 {
		rounds = 2
	}

	width := d.shadow.Rect.Dx()
	textW := d.textWidth(text)
	// The strip holds a blank display width on either side of the text.
	strip := bitmap.NewTiled((2*width + textW + bitmap.Width - 1) / bitmap.Width)
	d.render(strip, int16(width), text)

	t := time.NewTimer(interval)
	defer t.Stop()
	for round := 0; rounds < 0 || round < rounds; round++ {
		for off := 0; off <= width+textW; off++ {
			if err := d.flush(window(strip, off, d.Panels())); err != nil {
				return err
			}
			t.Reset(interval)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	return nil
}

// window copies the panels-wide slice of strip starting at column off.
func window(strip *bitmap.Tiled, off, panels int) *bitmap.Tiled {
	frame := bitmap.NewTiled(panels)
	w := frame.Rect.Dx()
	for y := 0; y < bitmap.Height; y++ {
		for x := 0; x < w; x++ {
			frame.SetBit(x, y, strip.BitAt(off+x, y))
		}
	}
	return frame
}
