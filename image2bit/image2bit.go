// Package image2bit provides a 2-bit grayscale image format matching the
// e-paper panel's 4-tone frame layout.
//
// Each byte holds 4 horizontally adjacent pixels, earliest pixel in the
// most significant crumb (bit pair). Bytes are stored in display polarity:
// the in-memory crumb is the tone value inverted against 3, so the darkest
// tone occupies the numerically highest bits. Gray2At and SetGray2 work in
// tone space (0 = black, 3 = white) and apply the inversion internally.
package image2bit

import (
	"image"
	"image/color"
)

// Gray2 represents a 2-bit grayscale tone (0-3 intensity levels).
// Only the lower 2 bits of Y are used. 0 is black, 3 is white.
type Gray2 struct {
	Y uint8
}

// RGBA converts the Gray2 tone to standard RGBA.
// The 2-bit value (0-3) is scaled to 16-bit (0-65535).
func (c Gray2) RGBA() (r, g, b, a uint32) {
	// 0x3 * 0x5555 = 0xFFFF, 0x1 * 0x5555 = 0x5555, etc.
	y := uint32(c.Y&0x03) * 0x5555
	return y, y, y, 0xFFFF
}

// toGray2 converts any color.Color to Gray2.
func toGray2(c color.Color) color.Color {
	if g, ok := c.(Gray2); ok {
		return g
	}
	r, g, b, _ := c.RGBA()
	y := (299*r + 587*g + 114*b + 500) / 1000
	// Convert 16-bit (0-65535) to 2-bit (0-3).
	return Gray2{Y: uint8(y >> 14)}
}

// Gray2Model converts colors to Gray2.
var Gray2Model = color.ModelFunc(toGray2)

// HorizontalCrumb is a 2-bit grayscale image where each byte packs 4
// pixels, most significant crumb first, stored inverted (display
// polarity). Pix therefore holds the exact bytes of a packed 4-tone page
// record.
type HorizontalCrumb struct {
	Pix    []byte          // Pixel data (4 pixels per byte, inverted)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewHorizontalCrumb creates a new HorizontalCrumb image with the
// specified bounds. The width must be a multiple of 4 so that rows end on
// byte boundaries. A zeroed Pix slice is all-white (tone 3 inverted is 0).
func NewHorizontalCrumb(r image.Rectangle) *HorizontalCrumb {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &HorizontalCrumb{Rect: r}
	}
	if w%4 != 0 {
		panic("image2bit: width must be a multiple of 4")
	}

	stride := w / 4
	return &HorizontalCrumb{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *HorizontalCrumb) ColorModel() color.Model {
	return Gray2Model
}

// Bounds returns the image bounds.
func (p *HorizontalCrumb) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *HorizontalCrumb) At(x, y int) color.Color {
	return p.Gray2At(x, y)
}

// Gray2At returns the Gray2 tone of the pixel at (x, y).
func (p *HorizontalCrumb) Gray2At(x, y int) Gray2 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Gray2{}
	}
	offset, shift := p.pixOffset(x, y)
	return Gray2{Y: ((p.Pix[offset] >> shift) & 0x03) ^ 0x03}
}

// Set sets the color of the pixel at (x, y).
func (p *HorizontalCrumb) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	gray2 := Gray2Model.Convert(c).(Gray2)
	p.SetGray2(x, y, gray2)
}

// SetGray2 sets the Gray2 tone of the pixel at (x, y).
// This is faster than Set() as it doesn't require color conversion.
func (p *HorizontalCrumb) SetGray2(x, y int, c Gray2) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, shift := p.pixOffset(x, y)
	inv := (c.Y & 0x03) ^ 0x03
	p.Pix[offset] = (p.Pix[offset] &^ (0x03 << shift)) | (inv << shift)
}

// pixOffset returns the byte offset and bit shift for the pixel at (x, y).
// The leftmost pixel of each byte occupies the most significant crumb
// (shift 6), the rightmost the least significant (shift 0).
func (p *HorizontalCrumb) pixOffset(x, y int) (offset int, shift uint) {
	offset = (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)/4
	shift = uint(6 - 2*((x-p.Rect.Min.X)&3))
	return
}
