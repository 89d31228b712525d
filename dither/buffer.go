package dither

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrInvalidBounds is returned when a buffer has non-positive dimensions
// or a pixel slice that does not match them.
var ErrInvalidBounds = errors.New("dither: invalid buffer bounds")

// Buffer is a greyscale pixel plane with real-valued samples in [0, 255],
// stored row-major. Samples may leave the nominal range transiently while
// error diffusion is accumulating; they are clamped on output.
//
// A Buffer is owned by one transform at a time. The engines in this
// package mutate it in place.
type Buffer struct {
	Pix  []float64 // Samples, length W*H
	W, H int       // Dimensions in pixels
}

// NewBuffer creates a zeroed w×h buffer.
func NewBuffer(w, h int) (*Buffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidBounds, w, h)
	}
	return &Buffer{Pix: make([]float64, w*h), W: w, H: h}, nil
}

// FromImage converts any image to a greyscale buffer using the standard
// Rec. 601 luma weights.
func FromImage(img image.Image) *Buffer {
	b := img.Bounds()
	buf := &Buffer{
		Pix: make([]float64, b.Dx()*b.Dy()),
		W:   b.Dx(),
		H:   b.Dy(),
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels, scale down to 8-bit.
			y16 := (299*r + 587*g + 114*bl + 500) / 1000
			buf.Pix[i] = float64(y16 >> 8)
			i++
		}
	}
	return buf
}

func (b *Buffer) validate() error {
	if b.W <= 0 || b.H <= 0 || len(b.Pix) != b.W*b.H {
		return fmt.Errorf("%w: %dx%d with %d samples", ErrInvalidBounds, b.W, b.H, len(b.Pix))
	}
	return nil
}

// At returns the sample at (x, y). Out-of-bounds reads return 0.
func (b *Buffer) At(x, y int) float64 {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return 0
	}
	return b.Pix[y*b.W+x]
}

// Set sets the sample at (x, y). Out-of-bounds writes do nothing.
func (b *Buffer) Set(x, y int, v float64) {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return
	}
	b.Pix[y*b.W+x] = v
}

// Clone returns an independent copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]float64, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Pix: pix, W: b.W, H: b.H}
}

// ToGray renders the buffer into a stdlib greyscale image, rounding and
// clamping samples to [0, 255].
func (b *Buffer) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			v := b.Pix[y*b.W+x]
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v + 0.5)})
		}
	}
	return img
}
