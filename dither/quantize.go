package dither

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrUnsupportedLevels is returned when the requested palette size is not
// 2 or 4.
var ErrUnsupportedLevels = errors.New("dither: levels must be 2 or 4")

// Quantized is a plane of palette indices in [0, Levels-1], same
// dimensions as the source buffer, row-major. Index 0 is the darkest
// tone.
type Quantized struct {
	Pix    []uint8
	W, H   int
	Levels int
}

// Quantize reduces the buffer to a fixed palette of 2 or 4 grey levels
// without dithering, assigning each pixel the index of its equal-width
// intensity bin. The mapping is a pure per-pixel function, so output is
// deterministic and independent of processing order.
//
// Samples outside [0, 255] (possible after error diffusion near edges)
// are clamped into the extreme bins.
func Quantize(b *Buffer, levels int) (*Quantized, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	if levels != 2 && levels != 4 {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedLevels, levels)
	}

	q := &Quantized{
		Pix:    make([]uint8, len(b.Pix)),
		W:      b.W,
		H:      b.H,
		Levels: levels,
	}
	for i, v := range b.Pix {
		idx := int(v * float64(levels) / 256.0)
		if idx < 0 {
			idx = 0
		}
		if idx > levels-1 {
			idx = levels - 1
		}
		q.Pix[i] = uint8(idx)
	}
	return q, nil
}

// Gray renders the quantized plane back into a stdlib greyscale image,
// spreading the palette indices evenly over [0, 255]. Intended for
// previews and tests, not for the packed output path.
func (q *Quantized) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, q.W, q.H))
	scale := 255 / (q.Levels - 1)
	for y := 0; y < q.H; y++ {
		for x := 0; x < q.W; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(int(q.Pix[y*q.W+x]) * scale)})
		}
	}
	return img
}
