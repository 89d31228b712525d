// Package image1bit provides a 1-bit black and white image format matching
// the e-paper panel's bilevel frame layout.
//
// Each byte holds 8 horizontally adjacent pixels, earliest pixel in the
// most significant bit. A set bit is a white pixel.
package image1bit

import (
	"image"
	"image/color"
)

// Bit is a 1-bit color. true renders white, false renders black.
type Bit bool

// Possible bit values.
const (
	Off Bit = false
	On  Bit = true
)

// RGBA converts the bit to standard RGBA.
func (b Bit) RGBA() (r, g, bl, a uint32) {
	if b {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// toBit converts any color.Color to Bit, splitting at mid intensity.
func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y >= 0x8000)
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(toBit)

// HorizontalMSB is a 1-bit image where each byte packs 8 pixels, most
// significant bit first. This is the exact byte layout of a packed
// bilevel page record.
type HorizontalMSB struct {
	Pix    []byte          // Pixel data (8 pixels per byte)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewHorizontalMSB creates a new HorizontalMSB image with the specified
// bounds. The width must be a multiple of 8 so that rows end on byte
// boundaries.
func NewHorizontalMSB(r image.Rectangle) *HorizontalMSB {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &HorizontalMSB{Rect: r}
	}
	if w%8 != 0 {
		panic("image1bit: width must be a multiple of 8")
	}

	stride := w / 8
	return &HorizontalMSB{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *HorizontalMSB) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the image bounds.
func (p *HorizontalMSB) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *HorizontalMSB) At(x, y int) color.Color {
	return p.BitAt(x, y)
}

// BitAt returns the Bit value of the pixel at (x, y).
func (p *HorizontalMSB) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Off
	}
	offset, mask := p.pixOffset(x, y)
	return Bit(p.Pix[offset]&mask != 0)
}

// Set sets the color of the pixel at (x, y).
func (p *HorizontalMSB) Set(x, y int, c color.Color) {
	p.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit sets the Bit value of the pixel at (x, y).
// This is faster than Set() as it doesn't require color conversion.
func (p *HorizontalMSB) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, mask := p.pixOffset(x, y)
	if b {
		p.Pix[offset] |= mask
	} else {
		p.Pix[offset] &^= mask
	}
}

// pixOffset returns the byte offset and bit mask for the pixel at (x, y).
// The leftmost pixel of each byte occupies the most significant bit.
func (p *HorizontalMSB) pixOffset(x, y int) (offset int, mask byte) {
	offset = (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)/8
	mask = 0x80 >> uint((x-p.Rect.Min.X)&7)
	return
}
