// Package ili9341 controls an ILI9341 TFT display via SPI.
//
// The ILI9341 drives 240x320 panels in 16-bit RGB565 color. This driver
// uses the panel in landscape orientation, 320x240 by default, and only
// sends the smallest window covering the pixels that changed since the
// previous Draw.
package ili9341

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/espward/ward/image565"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Commands.
const (
	cmdSoftwareReset byte = 0x01
	cmdSleepIn       byte = 0x10
	cmdSleepOut      byte = 0x11
	cmdNormalMode    byte = 0x13
	cmdInvertOff     byte = 0x20
	cmdInvertOn      byte = 0x21
	cmdDisplayOff    byte = 0x28
	cmdDisplayOn     byte = 0x29
	cmdColumnAddr    byte = 0x2A
	cmdPageAddr      byte = 0x2B
	cmdMemoryWrite   byte = 0x2C
	cmdScrollDefine  byte = 0x33
	cmdMemoryAccess  byte = 0x36
	cmdScrollStart   byte = 0x37
	cmdPixelFormat   byte = 0x3A
)

// Memory access control bits.
const (
	madctlMY  byte = 0x80
	madctlMX  byte = 0x40
	madctlMV  byte = 0x20
	madctlBGR byte = 0x08
)

// Panel size in landscape orientation.
const (
	MaxW = 320
	MaxH = 240
)

// Opts is the configuration for the ILI9341 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 320, must be ≤320)
	H int // Height (default: 240, must be ≤240)

	Rotated bool // 180° rotation
	BGR     bool // Panel wired with red and blue swapped

	// Optional hardware reset pin
	RST gpio.PinOut
}

// Dev is the device handle for the ILI9341 display.
type Dev struct {
	c     conn.Conn
	dc    gpio.PinOut
	rst   gpio.PinOut
	maxTx int

	rect image.Rectangle

	// last is what the panel shows; next collects Draw calls.
	last *image565.Image
	next *image565.Image

	sleep  func(time.Duration)
	halted bool
}

var _ display.Drawer = (*Dev)(nil)

// NewSPI creates a new ILI9341 device connected via SPI.
//
// The SPI port is configured for 10MHz, Mode0, 8-bit transfers. dc selects
// between command (low) and data (high) bytes.
//
// opts can be nil to use defaults (320x240).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if dc == nil {
		return nil, errors.New("ili9341: nil DC pin")
	}
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ili9341: %w", err)
	}
	return newDev(c, dc, opts, time.Sleep)
}

func newDev(c conn.Conn, dc gpio.PinOut, opts *Opts, sleep func(time.Duration)) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	w, h := opts.W, opts.H
	if w == 0 {
		w = MaxW
	}
	if h == 0 {
		h = MaxH
	}
	if w < 0 || w > MaxW {
		return nil, fmt.Errorf("ili9341: width must be between 1 and %d", MaxW)
	}
	if h < 0 || h > MaxH {
		return nil, fmt.Errorf("ili9341: height must be between 1 and %d", MaxH)
	}

	d := &Dev{
		c:     c,
		dc:    dc,
		rst:   opts.RST,
		rect:  image.Rect(0, 0, w, h),
		sleep: sleep,
	}
	if l, ok := c.(conn.Limits); ok {
		d.maxTx = l.MaxTxSize()
	}
	d.last = image565.New(d.rect)
	d.next = image565.New(d.rect)

	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// init sends the initialization sequence to the display.
func (d *Dev) init(opts *Opts) error {
	if d.rst != nil {
		if err := d.rst.Out(gpio.Low); err != nil {
			return fmt.Errorf("ili9341: failed to pull RST low: %w", err)
		}
		d.sleep(10 * time.Millisecond)
		if err := d.rst.Out(gpio.High); err != nil {
			return fmt.Errorf("ili9341: failed to pull RST high: %w", err)
		}
		d.sleep(120 * time.Millisecond)
	}

	if err := d.sendCommand(cmdSoftwareReset); err != nil {
		return err
	}
	d.sleep(150 * time.Millisecond)
	if err := d.sendCommand(cmdSleepOut); err != nil {
		return err
	}
	d.sleep(120 * time.Millisecond)

	madctl := madctlMV
	if opts.Rotated {
		madctl |= madctlMY | madctlMX
	}
	if opts.BGR {
		madctl |= madctlBGR
	}
	if err := d.command(cmdPixelFormat, 0x55); err != nil {
		return err
	}
	if err := d.command(cmdMemoryAccess, madctl); err != nil {
		return err
	}
	if err := d.sendCommand(cmdInvertOff); err != nil {
		return err
	}

	if err := d.clearRAM(); err != nil {
		return err
	}
	return d.sendCommand(cmdDisplayOn)
}

// clearRAM blanks the visible window to black, matching last.
func (d *Dev) clearRAM() error {
	return d.writeFullFrame(d.last.Pix)
}

// sendCommand sends a single command byte.
func (d *Dev) sendCommand(cmd byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	return d.c.Tx([]byte{cmd}, nil)
}

// command sends cmd followed by its parameters.
func (d *Dev) command(cmd byte, params ...byte) error {
	if err := d.sendCommand(cmd); err != nil {
		return err
	}
	return d.sendData(params)
}

// sendData sends data bytes, split to fit the port's transfer limit.
func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		n := len(data)
		if d.maxTx > 0 && n > d.maxTx {
			n = d.maxTx
		}
		if err := d.c.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// writeRect writes pixel data to the window r.
func (d *Dev) writeRect(r image.Rectangle, pixels []byte) error {
	x0, x1 := r.Min.X, r.Max.X-1
	y0, y1 := r.Min.Y, r.Max.Y-1
	if err := d.command(cmdColumnAddr, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := d.command(cmdPageAddr, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	if err := d.sendCommand(cmdMemoryWrite); err != nil {
		return err
	}
	return d.sendData(pixels)
}

// ColorModel returns image565.Model.
func (d *Dev) ColorModel() color.Model {
	return image565.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Write writes a raw RGB565 frame, big endian, row after row.
// The data must be exactly 2 * d.Bounds().Dx() * d.Bounds().Dy() bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("ili9341: halted")
	}
	if len(pixels) != len(d.last.Pix) {
		return 0, errors.New("ili9341: invalid buffer size")
	}
	if err := d.writeFullFrame(pixels); err != nil {
		return 0, err
	}
	copy(d.last.Pix, pixels)
	copy(d.next.Pix, pixels)
	return len(pixels), nil
}

// Draw draws src onto the display. Only the bounding box of the pixels that
// differ from the previous frame is sent.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("ili9341: halted")
	}

	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	// Fast path: a full frame already in the wire format.
	if img, ok := src.(*image565.Image); ok && dst == d.rect && sp == (image.Point{}) && img.Rect == d.rect {
		_, err := d.Write(img.Pix)
		return err
	}

	draw.Draw(d.next, dst, src, sp, draw.Src)

	r := d.calculateDiff()
	if r.Empty() {
		return nil
	}
	if err := d.writeRect(r, d.extractRegion(r)); err != nil {
		return err
	}
	copy(d.last.Pix, d.next.Pix)
	return nil
}

// calculateDiff returns the smallest rectangle holding every pixel that
// differs between last and next, or an empty rectangle.
func (d *Dev) calculateDiff() image.Rectangle {
	width, height := d.rect.Dx(), d.rect.Dy()
	stride := d.next.Stride

	minCol, maxCol := width, -1
	minRow, maxRow := height, -1
	for y := 0; y < height; y++ {
		row := y * stride
		if bytes.Equal(d.last.Pix[row:row+stride], d.next.Pix[row:row+stride]) {
			continue
		}
		if y < minRow {
			minRow = y
		}
		maxRow = y
		for x := 0; x < width; x++ {
			i := row + 2*x
			if d.last.Pix[i] != d.next.Pix[i] || d.last.Pix[i+1] != d.next.Pix[i+1] {
				if x < minCol {
					minCol = x
				}
				if x > maxCol {
					maxCol = x
				}
			}
		}
	}
	if maxRow < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minCol, minRow, maxCol+1, maxRow+1)
}

// extractRegion copies the pixel data of r out of next.
func (d *Dev) extractRegion(r image.Rectangle) []byte {
	byteWidth := 2 * r.Dx()
	result := make([]byte, 0, byteWidth*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		start := d.next.PixOffset(r.Min.X, y)
		result = append(result, d.next.Pix[start:start+byteWidth]...)
	}
	return result
}

// writeFullFrame writes a whole frame to the display.
func (d *Dev) writeFullFrame(pixels []byte) error {
	return d.writeRect(d.rect, pixels)
}

// Invert inverts the display colors.
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return errors.New("ili9341: halted")
	}
	cmd := cmdInvertOff
	if invert {
		cmd = cmdInvertOn
	}
	return d.sendCommand(cmd)
}

// Scroll scrolls the panel memory along its long axis, which is horizontal
// in landscape orientation. The first top and the last bottom lines stay
// fixed; the area in between shows memory starting at line start.
func (d *Dev) Scroll(top, bottom, start int) error {
	if d.halted {
		return errors.New("ili9341: halted")
	}
	if top < 0 || bottom < 0 || top+bottom >= MaxW {
		return errors.New("ili9341: invalid scroll margins")
	}
	if start < top || start >= MaxW-bottom {
		return errors.New("ili9341: scroll start out of range")
	}
	area := MaxW - top - bottom
	if err := d.command(cmdScrollDefine,
		byte(top>>8), byte(top),
		byte(area>>8), byte(area),
		byte(bottom>>8), byte(bottom),
	); err != nil {
		return err
	}
	return d.command(cmdScrollStart, byte(start>>8), byte(start))
}

// StopScroll returns to normal display mode.
func (d *Dev) StopScroll() error {
	if d.halted {
		return errors.New("ili9341: halted")
	}
	return d.sendCommand(cmdNormalMode)
}

// Halt turns the display off and puts the controller to sleep.
// The device does not accept further writes.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	if err := d.sendCommand(cmdDisplayOff); err != nil {
		return err
	}
	return d.sendCommand(cmdSleepIn)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ili9341.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
