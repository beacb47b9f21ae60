// Package image565 provides the 16-bit RGB565 image format of TFT panel
// controllers such as the ILI9341.
//
// Pixels are stored two bytes each, most significant byte first, which is
// the order the controller expects on the wire. A frame can therefore be
// sent to the display without conversion.
package image565

import (
	"image"
	"image/color"
)

// RGB565 is a 16-bit color: 5 bits red, 6 bits green, 5 bits blue.
type RGB565 uint16

// RGBA implements color.Color. Each channel is scaled to 16 bits, so full
// intensity maps to 0xFFFF.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r = uint32(c>>11) * 0xFFFF / 0x1F
	g = uint32(c>>5&0x3F) * 0xFFFF / 0x3F
	b = uint32(c&0x1F) * 0xFFFF / 0x1F
	return r, g, b, 0xFFFF
}

// toRGB565 drops the low bits of each channel.
func toRGB565(c color.Color) color.Color {
	if v, ok := c.(RGB565); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return RGB565(r>>11<<11 | g>>10<<5 | b>>11)
}

// Model converts colors to RGB565.
var Model = color.ModelFunc(toRGB565)

// Image is an in-memory RGB565 image.
type Image struct {
	Pix    []byte // 2 bytes per pixel, big endian
	Stride int    // Bytes per row
	Rect   image.Rectangle
}

// New returns a black image with the given bounds.
func New(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 2*w*h),
		Stride: 2 * w,
		Rect:   r,
	}
}

func (p *Image) ColorModel() color.Model {
	return Model
}

func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the color of the pixel at (x, y), black outside the
// image.
func (p *Image) RGB565At(x, y int) RGB565 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	i := p.PixOffset(x, y)
	return RGB565(p.Pix[i])<<8 | RGB565(p.Pix[i+1])
}

func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, Model.Convert(c).(RGB565))
}

// SetRGB565 sets the pixel at (x, y) without a color conversion.
func (p *Image) SetRGB565(x, y int, c RGB565) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	p.Pix[i] = byte(c >> 8)
	p.Pix[i+1] = byte(c)
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}
