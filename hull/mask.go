// Package hull derives collision shapes from sprite alpha masks.
//
// A mask is reduced to its edge pixels, which are wrapped in a convex hull with a Graham scan.
// The resulting polygon is expressed in the sprite frame (x = column, y = row) scaled to the
// on-screen height of the sprite.
package hull

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/imgio"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Mask is a boolean solidity grid indexed Solid[row][col]; true is an opaque pixel.
type Mask struct {
	Width  int
	Height int
	Solid  [][]bool
}

// NewMask returns a fully transparent mask
func NewMask(width, height int) *Mask {
	solid := make([][]bool, height)
	for row := range solid {
		solid[row] = make([]bool, width)
	}
	return &Mask{Width: width, Height: height, Solid: solid}
}

// At reports whether the pixel at (col, row) is solid. Pixels outside the mask are transparent.
func (m *Mask) At(col, row int) bool {
	if row < 0 || row >= len(m.Solid) || col < 0 || col >= len(m.Solid[row]) {
		return false
	}
	return m.Solid[row][col]
}

// Set marks the pixel at (col, row). Out of bounds writes are ignored.
func (m *Mask) Set(col, row int, solid bool) {
	if row < 0 || row >= len(m.Solid) || col < 0 || col >= len(m.Solid[row]) {
		return
	}
	m.Solid[row][col] = solid
}

// Count returns the number of solid pixels
func (m *Mask) Count() int {
	n := 0
	for _, row := range m.Solid {
		for _, solid := range row {
			if solid {
				n++
			}
		}
	}
	return n
}

// validate checks that the mask is usable for shape derivation
func (m *Mask) validate() error {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return ErrEmptyMask
	}
	if len(m.Solid) != m.Height {
		return fmt.Errorf("mask has %d rows, want %d: %w", len(m.Solid), m.Height, ErrEmptyMask)
	}
	for row, cols := range m.Solid {
		if len(cols) != m.Width {
			return fmt.Errorf("mask row %d has %d columns, want %d: %w", row, len(cols), m.Width, ErrEmptyMask)
		}
	}
	return nil
}

// MaskFromImage maps the image alpha channel: a pixel is transparent only when its alpha is 0
func MaskFromImage(img image.Image) *Mask {
	bounds := img.Bounds()
	mask := NewMask(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			mask.Solid[y-bounds.Min.Y][x-bounds.Min.X] = a != 0
		}
	}

	return mask
}

// MaskFromRows builds a mask from text rows, '#' marking a solid pixel.
// Rows shorter than the longest one are padded with transparent pixels.
func MaskFromRows(rows ...string) *Mask {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	mask := NewMask(width, len(rows))
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			mask.Solid[y][x] = row[x] == '#'
		}
	}

	return mask
}

// LoadMask decodes a sprite file (PNG, JPEG, GIF, BMP or WEBP) and returns its alpha mask
func LoadMask(path string) (*Mask, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load mask %s: %w", path, err)
	}
	return MaskFromImage(img), nil
}
