package segment

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/espward/ward"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/display"
)

// Opts is the configuration for a Screen.
type Opts struct {
	// Face renders text (default basicfont.Face7x13).
	Face font.Face
	// Foreground is the text and pixel color (default black).
	Foreground color.Color
	// Background is the fill color (default white).
	Background color.Color
	// NameOffset is the gap above section names (default NameOffset). Small
	// displays such as a 128x64 OLED need a few pixels at most.
	NameOffset int
}

// Screen keeps a frame for a display and draws segmented text on it.
type Screen struct {
	dev   display.Drawer
	frame *image.RGBA
	face  font.Face
	fg    *image.Uniform
	bg    *image.Uniform

	nameOffset int
}

var _ ward.Display = (*Screen)(nil)

// NewScreen wraps dev and clears it to the background color.
//
// Every segment must be tall enough for a section name and a value line
// below it; NewScreen fails on displays that are too small for the face.
func NewScreen(dev display.Drawer, opts *Opts) (*Screen, error) {
	if dev == nil {
		return nil, errors.New("segment: nil display")
	}
	if opts == nil {
		opts = &Opts{}
	}
	if opts.NameOffset < 0 {
		return nil, fmt.Errorf("segment: negative name offset %d", opts.NameOffset)
	}
	s := &Screen{
		dev:   dev,
		frame: image.NewRGBA(dev.Bounds()),
		face:  opts.Face,
		fg:    image.NewUniform(opts.Foreground),
		bg:    image.NewUniform(opts.Background),

		nameOffset: opts.NameOffset,
	}
	if s.nameOffset == 0 {
		s.nameOffset = NameOffset
	}
	if s.face == nil {
		s.face = basicfont.Face7x13
	}
	if opts.Foreground == nil {
		s.fg = image.NewUniform(color.Black)
	}
	if opts.Background == nil {
		s.bg = image.NewUniform(color.White)
	}
	b := s.frame.Rect
	lh := s.face.Metrics().Height.Ceil()
	if need := s.nameOffset + 2*lh; Rect(b, TopLeft).Dy() < need {
		return nil, fmt.Errorf("segment: %dx%d display too small for %dpx text with a %dpx name offset", b.Dx(), b.Dy(), lh, s.nameOffset)
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Bounds returns the bounds of the underlying display.
func (s *Screen) Bounds() image.Rectangle {
	return s.frame.Rect
}

// textSize returns the width and line height of text in pixels.
func (s *Screen) textSize(text string) (w, h int) {
	return font.MeasureString(s.face, text).Ceil(), s.face.Metrics().Height.Ceil()
}

// drawText draws text with its top-left corner at p.
func (s *Screen) drawText(p image.Point, text string) {
	d := font.Drawer{
		Dst:  s.frame,
		Src:  s.fg,
		Face: s.face,
		Dot:  fixed.P(p.X, p.Y+s.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// flush sends the part of the frame inside r to the display.
func (s *Screen) flush(r image.Rectangle) error {
	r = r.Intersect(s.frame.Rect)
	if r.Empty() {
		return nil
	}
	return ward.Wrap("draw "+s.dev.String(), -1, s.dev.Draw(r, s.frame, r.Min))
}

// WriteToSegment replaces the value shown in seg with text, centred in the
// segment and kept below the section name, which is left untouched.
func (s *Screen) WriteToSegment(seg Segment, text string) error {
	r := Rect(s.frame.Rect, seg)
	w, h := s.textSize(text)
	draw.Draw(s.frame, ValueArea(r, h, s.nameOffset), s.bg, image.Point{}, draw.Src)
	s.drawText(ValueOrigin(r, w, h, s.nameOffset), text)
	return s.flush(r)
}

// WriteSectionName draws a label near the top of seg.
func (s *Screen) WriteSectionName(seg Segment, name string) error {
	r := Rect(s.frame.Rect, seg)
	w, _ := s.textSize(name)
	s.drawText(NameOrigin(r, w, s.nameOffset), name)
	return s.flush(r)
}

// SetPixel paints the pixel at (x, y) in the foreground color. Pixels
// outside the display are ignored.
func (s *Screen) SetPixel(x, y int) error {
	if !(image.Point{X: x, Y: y}.In(s.frame.Rect)) {
		return nil
	}
	s.frame.Set(x, y, s.fg.C)
	return s.flush(image.Rect(x, y, x+1, y+1))
}

// WriteString writes text to the Center segment.
func (s *Screen) WriteString(text string) error {
	return s.WriteToSegment(Center, text)
}

// Reset fills the whole display with the background color.
func (s *Screen) Reset() error {
	draw.Draw(s.frame, s.frame.Rect, s.bg, image.Point{}, draw.Src)
	return s.flush(s.frame.Rect)
}

// Halt halts the underlying display.
func (s *Screen) Halt() error {
	return s.dev.Halt()
}

func (s *Screen) String() string {
	return fmt.Sprintf("segment.Screen{%s}", s.dev)
}
