package dither

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidKernel is returned when a diffusion kernel is malformed.
var ErrInvalidKernel = errors.New("dither: invalid diffusion kernel")

// Kernel is an immutable error-diffusion weight matrix. The center column
// (cols/2) of the first row sits over the pixel being quantized; weights
// below and to the right of it apply to not-yet-visited neighbours.
//
// Invariants, checked by NewKernel and Diffuse: odd column count, uniform
// row lengths, non-negative weights summing to at most 1, and zero weights
// at and left of the center on the first row (those positions were already
// quantized).
type Kernel struct {
	Name    string
	Weights [][]float64
}

// Named diffusion kernels. FloydSteinberg is the usual default; Atkinson
// diffuses only 3/4 of the error which lifts contrast on e-ink panels.
var (
	FloydSteinberg = Kernel{
		Name: "floyd-steinberg",
		Weights: [][]float64{
			{0, 0, 7.0 / 16},
			{3.0 / 16, 5.0 / 16, 1.0 / 16},
		},
	}

	Stucki = Kernel{
		Name: "stucki",
		Weights: [][]float64{
			{0, 0, 0, 8.0 / 42, 4.0 / 42},
			{2.0 / 42, 4.0 / 42, 8.0 / 42, 4.0 / 42, 2.0 / 42},
			{1.0 / 42, 2.0 / 42, 4.0 / 42, 2.0 / 42, 1.0 / 42},
		},
	}

	Atkinson = Kernel{
		Name: "atkinson",
		Weights: [][]float64{
			{0, 0, 0, 1.0 / 8, 1.0 / 8},
			{0, 1.0 / 8, 1.0 / 8, 1.0 / 8, 0},
			{0, 0, 1.0 / 8, 0, 0},
		},
	}

	Burkes = Kernel{
		Name: "burkes",
		Weights: [][]float64{
			{0, 0, 0, 8.0 / 32, 4.0 / 32},
			{2.0 / 32, 4.0 / 32, 8.0 / 32, 4.0 / 32, 2.0 / 32},
		},
	}

	SierraLite = Kernel{
		Name: "sierra-lite",
		Weights: [][]float64{
			{0, 0, 2.0 / 4},
			{1.0 / 4, 1.0 / 4, 0},
		},
	}
)

var kernels = map[string]Kernel{
	FloydSteinberg.Name: FloydSteinberg,
	Stucki.Name:         Stucki,
	Atkinson.Name:       Atkinson,
	Burkes.Name:         Burkes,
	SierraLite.Name:     SierraLite,
}

// KernelByName returns a named kernel from the registry.
func KernelByName(name string) (Kernel, bool) {
	k, ok := kernels[name]
	return k, ok
}

// KernelNames returns the sorted names of all registered kernels.
func KernelNames() []string {
	names := make([]string, 0, len(kernels))
	for name := range kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewKernel builds and validates a custom diffusion kernel.
func NewKernel(name string, weights [][]float64) (Kernel, error) {
	k := Kernel{Name: name, Weights: weights}
	if err := k.validate(); err != nil {
		return Kernel{}, err
	}
	return k, nil
}

func (k Kernel) validate() error {
	if len(k.Weights) == 0 || len(k.Weights[0]) == 0 {
		return fmt.Errorf("%w: empty weight matrix", ErrInvalidKernel)
	}
	cols := len(k.Weights[0])
	if cols%2 == 0 {
		return fmt.Errorf("%w: %d columns, want odd count", ErrInvalidKernel, cols)
	}

	mid := cols / 2
	sum := 0.0
	for r, row := range k.Weights {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidKernel, r, len(row), cols)
		}
		for c, w := range row {
			if w < 0 {
				return fmt.Errorf("%w: negative weight at (%d,%d)", ErrInvalidKernel, r, c)
			}
			if r == 0 && c <= mid && w != 0 {
				return fmt.Errorf("%w: non-zero weight at already-visited position (%d,%d)", ErrInvalidKernel, r, c)
			}
			sum += w
		}
	}
	// Weights summing above 1 would amplify error instead of conserving it.
	if sum > 1+1e-9 {
		return fmt.Errorf("%w: weights sum to %v, want at most 1", ErrInvalidKernel, sum)
	}
	return nil
}

// Diffuse reduces the buffer to bilevel values {0, 255} in place using
// error diffusion with the given kernel.
//
// Pixels are visited in raster order (top-to-bottom, left-to-right). Each
// sample is rounded to the nearer extreme and the residual is added,
// scaled by the kernel weights, onto the in-bounds neighbours below and
// to the right. The kernel window is clipped at the buffer edges, so the
// error that would land outside the image is dropped. All accumulation is
// done in floating point; quantization happens exactly once per pixel.
//
// The scan order is load-bearing: later pixels see earlier errors. Do not
// parallelize.
func Diffuse(b *Buffer, k Kernel) error {
	if err := b.validate(); err != nil {
		return err
	}
	if err := k.validate(); err != nil {
		return err
	}

	mid := len(k.Weights[0]) / 2
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			old := b.Pix[y*b.W+x]
			var q float64
			if old >= 127.5 {
				q = 255
			}
			b.Pix[y*b.W+x] = q
			err := old - q

			for kr, row := range k.Weights {
				ty := y + kr
				if ty >= b.H {
					break
				}
				for kc, w := range row {
					if w == 0 || (kr == 0 && kc <= mid) {
						continue
					}
					tx := x + kc - mid
					if tx < 0 || tx >= b.W {
						continue
					}
					b.Pix[ty*b.W+tx] += err * w
				}
			}
		}
	}
	return nil
}
