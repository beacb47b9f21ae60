// Package bitmap provides the 1-bit image format used by 8x8 LED matrix
// panels chained side by side.
//
// Each panel is stored as 8 bytes, one per row. Within a row byte the most
// significant bit is the leftmost column:
//
//	Columns: 0 1 2 3 4 5 6 7
//	Lit:     x . . x . . . x
//	Byte:    0b1001_0001 = 0x91
//
// A chain of N panels forms one flat image N*8 pixels wide and 8 pixels
// high. Flat column x lives on panel x/8 at local column x%8; rows map
// through unchanged. Locate performs that mapping.
//
// This package provides:
//
// - Panel: one 8x8 tile
// - Locate: the flat to (panel, column, row) mapping
// - Tiled: an image.Image / draw.Image spanning a chain of panels
//
// Example usage:
//
//	img := bitmap.NewTiled(4) // 32x8 pixels
//	img.SetBit(9, 3, image1bit.On)
//	p := img.Panels[1]
//	println(p.At(1, 3)) // Output: true
//
//	// Standard image operations work as well.
//	draw.Draw(img, img.Bounds(), image.NewUniform(image1bit.On), image.Point{}, draw.Src)
package bitmap
