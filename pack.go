package epdpage

import (
	"errors"
	"fmt"

	"github.com/flavioheleno/epdpage/dither"
)

var (
	// ErrUnsupportedDepth is returned for bit depths other than 1 or 2.
	ErrUnsupportedDepth = errors.New("epdpage: bits per pixel must be 1 or 2")

	// ErrIncompletePackGroup is returned when the pixel count does not
	// fill a whole number of bytes. Truncating the tail would corrupt
	// the display layout, so it is never done silently; use PackPadded
	// to pad instead.
	ErrIncompletePackGroup = errors.New("epdpage: pixel count not aligned to pack group")

	// ErrDepthTooSmall is returned when the quantized palette has more
	// levels than the bit depth can represent.
	ErrDepthTooSmall = errors.New("epdpage: quantized levels exceed bit depth")
)

// groupSize returns pixels per byte for a bit depth, or 0 if unsupported.
func groupSize(bits int) int {
	switch bits {
	case 1:
		return 8
	case 2:
		return 4
	}
	return 0
}

// Pack serializes a quantized pixel plane into the display's packed byte
// layout, row-major, earliest pixel in the most significant bits.
//
// At 2 bits per pixel each value is inverted against 3 before packing
// (the display wants the darkest tone on the highest bits); at 1 bit per
// pixel values pack raw. The pixel count must be a multiple of the pack
// group (8 pixels at depth 1, 4 at depth 2).
func Pack(q *dither.Quantized, bits int) ([]byte, error) {
	group := groupSize(bits)
	if group == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedDepth, bits)
	}
	if q.Levels > 1<<bits {
		return nil, fmt.Errorf("%w: %d levels at %d bpp", ErrDepthTooSmall, q.Levels, bits)
	}
	if len(q.Pix)%group != 0 {
		return nil, fmt.Errorf("%w: %d pixels leave %d over a group of %d",
			ErrIncompletePackGroup, len(q.Pix), len(q.Pix)%group, group)
	}
	return packAligned(q.Pix, bits), nil
}

// PackPadded is Pack with the final partial group padded using the given
// tone value, for callers whose pixel count cannot align. The padding is
// an explicit decision, not a silent drop: the returned record is longer
// than the pixel data, never shorter.
func PackPadded(q *dither.Quantized, bits int, pad uint8) ([]byte, error) {
	group := groupSize(bits)
	if group == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedDepth, bits)
	}
	if q.Levels > 1<<bits {
		return nil, fmt.Errorf("%w: %d levels at %d bpp", ErrDepthTooSmall, q.Levels, bits)
	}
	if int(pad) >= 1<<bits {
		return nil, fmt.Errorf("%w: pad value %d at %d bpp", ErrDepthTooSmall, pad, bits)
	}

	rem := len(q.Pix) % group
	if rem == 0 {
		return packAligned(q.Pix, bits), nil
	}
	padded := make([]uint8, len(q.Pix)+group-rem)
	copy(padded, q.Pix)
	for i := len(q.Pix); i < len(padded); i++ {
		padded[i] = pad
	}
	return packAligned(padded, bits), nil
}

// packAligned packs values whose count is a whole number of groups.
func packAligned(values []uint8, bits int) []byte {
	if bits == 1 {
		out := make([]byte, len(values)/8)
		for i, v := range values {
			out[i/8] |= (v & 0x01) << uint(7-i%8)
		}
		return out
	}

	out := make([]byte, len(values)/4)
	for i, v := range values {
		out[i/4] |= ((v ^ 0x03) & 0x03) << uint(6-2*(i%4))
	}
	return out
}

// Unpack reverses Pack, recovering n pixel values from a packed record.
// It is the exact inverse for aligned pixel counts:
// Unpack(Pack(q, bits), bits, len(q.Pix)) == q.Pix.
func Unpack(data []byte, bits, n int) ([]uint8, error) {
	group := groupSize(bits)
	if group == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedDepth, bits)
	}
	if n < 0 || n%group != 0 {
		return nil, fmt.Errorf("%w: %d pixels over a group of %d", ErrIncompletePackGroup, n, group)
	}
	if len(data) != n/group {
		return nil, fmt.Errorf("epdpage: packed record is %d bytes, want %d for %d pixels",
			len(data), n/group, n)
	}

	values := make([]uint8, n)
	if bits == 1 {
		for i := range values {
			values[i] = (data[i/8] >> uint(7-i%8)) & 0x01
		}
		return values, nil
	}
	for i := range values {
		values[i] = ((data[i/4] >> uint(6-2*(i%4))) & 0x03) ^ 0x03
	}
	return values, nil
}
