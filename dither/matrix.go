package dither

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidMatrix is returned when a threshold matrix is malformed.
var ErrInvalidMatrix = errors.New("dither: invalid threshold matrix")

// Matrix is an immutable square threshold matrix, tiled over the image by
// modulo indexing on both axes. Thresholds are in [0, 255].
//
// The engine compares each pixel against its threshold plus half a
// quantization step (128/T² for a T×T matrix). The bias keeps the mapping
// symmetric: a pure black input never crosses the lowest threshold and a
// pure white input always crosses the highest, so bilevel input passes
// through unchanged.
type Matrix struct {
	Name       string
	Thresholds [][]float64
}

// Bayer index matrices, scaled to [0, 255] by 256/T². Bayer8 is the 8×8
// matrix the classic dispersed-dot algorithm produces; Bayer4 is its 4×4
// parent, coarser but with a shorter repeat.
var (
	Bayer8 = mustMatrix("bayer8", [][]int{
		{0, 32, 8, 40, 2, 34, 10, 42},
		{48, 16, 56, 24, 50, 18, 58, 26},
		{12, 44, 4, 36, 14, 46, 6, 38},
		{60, 28, 52, 20, 62, 30, 54, 22},
		{3, 35, 11, 43, 1, 33, 9, 41},
		{51, 19, 59, 27, 49, 17, 57, 25},
		{15, 47, 7, 39, 13, 45, 5, 37},
		{63, 31, 55, 23, 61, 29, 53, 21},
	})

	Bayer4 = mustMatrix("bayer4", [][]int{
		{0, 8, 2, 10},
		{12, 4, 14, 6},
		{3, 11, 1, 9},
		{15, 7, 13, 5},
	})
)

var matrices = map[string]Matrix{
	Bayer8.Name: Bayer8,
	Bayer4.Name: Bayer4,
}

// MatrixByName returns a named threshold matrix from the registry.
func MatrixByName(name string) (Matrix, bool) {
	m, ok := matrices[name]
	return m, ok
}

// MatrixNames returns the sorted names of all registered matrices.
func MatrixNames() []string {
	names := make([]string, 0, len(matrices))
	for name := range matrices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// mustMatrix scales a T×T index matrix (values 0..T²-1) to thresholds in
// [0, 255]. Only used for the package constants.
func mustMatrix(name string, index [][]int) Matrix {
	t := len(index)
	scale := 256.0 / float64(t*t)
	thresholds := make([][]float64, t)
	for r, row := range index {
		thresholds[r] = make([]float64, t)
		for c, v := range row {
			thresholds[r][c] = float64(v) * scale
		}
	}
	m, err := NewMatrix(name, thresholds)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMatrix builds and validates a custom threshold matrix.
func NewMatrix(name string, thresholds [][]float64) (Matrix, error) {
	m := Matrix{Name: name, Thresholds: thresholds}
	if err := m.validate(); err != nil {
		return Matrix{}, err
	}
	return m, nil
}

func (m Matrix) validate() error {
	t := len(m.Thresholds)
	if t == 0 {
		return fmt.Errorf("%w: empty matrix", ErrInvalidMatrix)
	}
	for r, row := range m.Thresholds {
		if len(row) != t {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidMatrix, r, len(row), t)
		}
		for c, v := range row {
			if v < 0 || v > 255 {
				return fmt.Errorf("%w: threshold %v at (%d,%d) outside [0,255]", ErrInvalidMatrix, v, r, c)
			}
		}
	}
	return nil
}

// bias is half a quantization step for this matrix granularity.
func (m Matrix) bias() float64 {
	t := len(m.Thresholds)
	return 128.0 / float64(t*t)
}

// Ordered reduces the buffer to bilevel values {0, 255} in place by
// comparing each pixel against the tiled threshold matrix. A pixel turns
// white when its intensity exceeds thresholds[y%T][x%T] plus the
// half-step bias.
//
// Each output pixel depends only on its own value and position; the
// transform is pure and order-independent.
func Ordered(b *Buffer, m Matrix) error {
	if err := b.validate(); err != nil {
		return err
	}
	if err := m.validate(); err != nil {
		return err
	}

	t := len(m.Thresholds)
	bias := m.bias()
	for y := 0; y < b.H; y++ {
		row := m.Thresholds[y%t]
		for x := 0; x < b.W; x++ {
			if b.Pix[y*b.W+x] > row[x%t]+bias {
				b.Pix[y*b.W+x] = 255
			} else {
				b.Pix[y*b.W+x] = 0
			}
		}
	}
	return nil
}
