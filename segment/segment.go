// Package segment splits a graphics display into five labelled areas and
// renders centred text into them.
//
// The four corner segments tile the display; Center overlaps all four and
// has the same size. Every segment is half the display width and half its
// height:
//
//	+---------+---------+
//	| TopLeft |TopRight |
//	|    +----+----+    |
//	+----| Center  |----+
//	|    +----+----+    |
//	|BottomLft|BottomRgt|
//	+---------+---------+
//
// A segment shows an optional section name near its top edge and a value
// centred in the segment. Writing a value only clears the area below the
// name, so names survive value updates.
package segment

import (
	"fmt"
	"image"
)

// NameOffset is the default distance in pixels between the top of a segment
// and its section name.
const NameOffset = 15

// Segment identifies one area of the display.
type Segment int

const (
	TopLeft Segment = iota
	TopRight
	BottomLeft
	BottomRight
	Center
)

func (s Segment) String() string {
	switch s {
	case TopLeft:
		return "TopLeft"
	case TopRight:
		return "TopRight"
	case BottomLeft:
		return "BottomLeft"
	case BottomRight:
		return "BottomRight"
	case Center:
		return "Center"
	default:
		return fmt.Sprintf("Segment(%d)", int(s))
	}
}

// Rect returns the area of s within bounds.
func Rect(bounds image.Rectangle, s Segment) image.Rectangle {
	w, h := bounds.Dx()/2, bounds.Dy()/2
	var origin image.Point
	switch s {
	case TopLeft:
	case TopRight:
		origin = image.Pt(w, 0)
	case BottomLeft:
		origin = image.Pt(0, h)
	case BottomRight:
		origin = image.Pt(w, h)
	case Center:
		origin = image.Pt(bounds.Dx()/4, bounds.Dy()/4)
	default:
		panic(fmt.Sprintf("segment: unknown segment %d", int(s)))
	}
	tl := bounds.Min.Add(origin)
	return image.Rectangle{Min: tl, Max: tl.Add(image.Pt(w, h))}
}

// TextOrigin returns the top-left corner of a textW x textH box centred in r.
func TextOrigin(r image.Rectangle, textW, textH int) image.Point {
	return image.Pt(r.Min.X+(r.Dx()-textW)/2, r.Min.Y+(r.Dy()-textH)/2)
}

// NameOrigin returns the top-left corner of a section name textW pixels
// wide, centred horizontally offset pixels below the top of r.
func NameOrigin(r image.Rectangle, textW, offset int) image.Point {
	return image.Pt(r.Min.X+(r.Dx()-textW)/2, r.Min.Y+offset)
}

// ValueArea returns the part of r below a section name of height nameH
// drawn offset pixels below the top of r. This is the area cleared before a
// new value is drawn.
func ValueArea(r image.Rectangle, nameH, offset int) image.Rectangle {
	top := r.Min.Y + nameH + offset
	if top > r.Max.Y {
		top = r.Max.Y
	}
	return image.Rect(r.Min.X, top, r.Max.X, r.Max.Y)
}

// ValueOrigin returns where a textW x textH value goes in r: centred, but
// never above the value area, so it cannot overlap the section name.
func ValueOrigin(r image.Rectangle, textW, textH, offset int) image.Point {
	p := TextOrigin(r, textW, textH)
	if top := ValueArea(r, textH, offset).Min.Y; p.Y < top {
		p.Y = top
	}
	return p
}
