package epdpage

import (
	"errors"
	"fmt"
	"image"

	"github.com/flavioheleno/epdpage/dither"
)

// Mode selects the tone-reduction algorithm.
type Mode int

const (
	// ModeNone quantizes to equal-width intensity bins without dithering.
	ModeNone Mode = iota
	// ModeDiffusion applies error-diffusion dithering with Opts.Kernel.
	ModeDiffusion
	// ModeOrdered applies ordered dithering with Opts.Matrix.
	ModeOrdered
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeDiffusion:
		return "diffusion"
	case ModeOrdered:
		return "ordered"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ErrInvalidMode is returned for modes outside the defined set.
var ErrInvalidMode = errors.New("epdpage: invalid mode")

// Opts is the configuration for a conversion pipeline.
type Opts struct {
	// Mode selects the tone reduction (default: ModeNone).
	Mode Mode

	// Kernel is the diffusion kernel for ModeDiffusion
	// (default: dither.FloydSteinberg). Ignored in other modes.
	Kernel dither.Kernel

	// Matrix is the threshold matrix for ModeOrdered
	// (default: dither.Bayer8). Ignored in other modes.
	Matrix dither.Matrix

	// Depth is the packed output bit depth, 1 or 2 (default: 1).
	// The dithering modes always produce bilevel tones; at depth 2 they
	// land on the extreme bins of the 4-tone palette.
	Depth int
}

// Pipeline converts page images into packed records. It holds no state
// between pages; a single Pipeline may convert any number of pages.
type Pipeline struct {
	mode   Mode
	kernel dither.Kernel
	matrix dither.Matrix
	depth  int
}

// New creates a conversion pipeline, validating the configuration up
// front so per-page calls cannot fail on bad parameters.
//
// opts can be nil to use defaults (quantize-only, 1 bit per pixel).
func New(opts *Opts) (*Pipeline, error) {
	if opts == nil {
		opts = &Opts{}
	}

	p := &Pipeline{
		mode:   opts.Mode,
		kernel: opts.Kernel,
		matrix: opts.Matrix,
		depth:  opts.Depth,
	}
	if p.depth == 0 {
		p.depth = 1
	}
	if groupSize(p.depth) == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedDepth, p.depth)
	}

	switch p.mode {
	case ModeNone:
	case ModeDiffusion:
		if len(p.kernel.Weights) == 0 {
			p.kernel = dither.FloydSteinberg
		}
		if _, err := dither.NewKernel(p.kernel.Name, p.kernel.Weights); err != nil {
			return nil, err
		}
	case ModeOrdered:
		if len(p.matrix.Thresholds) == 0 {
			p.matrix = dither.Bayer8
		}
		if _, err := dither.NewMatrix(p.matrix.Name, p.matrix.Thresholds); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(p.mode))
	}

	return p, nil
}

// Depth returns the configured bit depth.
func (p *Pipeline) Depth() int {
	return p.depth
}

// Quantize reduces a page image to palette indices using the configured
// mode, without packing. The image is converted to greyscale first.
func (p *Pipeline) Quantize(img image.Image) (*dither.Quantized, error) {
	return p.QuantizeBuffer(dither.FromImage(img))
}

// QuantizeBuffer is Quantize for callers that already hold a greyscale
// buffer. The buffer is consumed: dithering modes overwrite it.
func (p *Pipeline) QuantizeBuffer(b *dither.Buffer) (*dither.Quantized, error) {
	switch p.mode {
	case ModeDiffusion:
		if err := dither.Diffuse(b, p.kernel); err != nil {
			return nil, err
		}
	case ModeOrdered:
		if err := dither.Ordered(b, p.matrix); err != nil {
			return nil, err
		}
	}
	return dither.Quantize(b, 1<<p.depth)
}

// Convert runs the full pipeline on one page image and returns the packed
// record. The pixel count (width x height) must align to the pack group:
// 8 pixels at depth 1, 4 at depth 2.
func (p *Pipeline) Convert(img image.Image) ([]byte, error) {
	q, err := p.Quantize(img)
	if err != nil {
		return nil, err
	}
	return Pack(q, p.depth)
}

// ConvertBuffer is Convert for callers that already hold a greyscale
// buffer. The buffer is consumed.
func (p *Pipeline) ConvertBuffer(b *dither.Buffer) ([]byte, error) {
	q, err := p.QuantizeBuffer(b)
	if err != nil {
		return nil, err
	}
	return Pack(q, p.depth)
}

// PageSink receives packed page records in order.
type PageSink interface {
	WritePage(packed []byte) error
}

// Progress is called after each page of a batch with the number of pages
// done so far and the total. It runs on the converting goroutine, so keep
// it cheap.
type Progress func(done, total int)

// ConvertAll converts a batch of pages and hands each packed record to
// the sink. progress may be nil. Conversion stops at the first error,
// reported with the failing page index.
//
// Pages are independent; callers wanting parallelism should convert pages
// on separate goroutines and serialize only the sink writes.
func (p *Pipeline) ConvertAll(pages []image.Image, sink PageSink, progress Progress) error {
	for i, img := range pages {
		packed, err := p.Convert(img)
		if err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		if err := sink.WritePage(packed); err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		if progress != nil {
			progress(i+1, len(pages))
		}
	}
	return nil
}
