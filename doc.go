// Package epdpage converts greyscale page images into the packed binary
// rasters an e-ink display expects.
//
// The pipeline has three stages, all deterministic and single-threaded
// per page:
//
// 1. Tone reduction: error-diffusion dithering (Floyd-Steinberg, Stucki,
// Atkinson, ...), ordered dithering (Bayer matrices), or plain
// quantization to 2 or 4 grey levels. See the dither subpackage.
//
// 2. Packing: quantized pixel values are serialized row-major into bytes,
// earliest pixel in the most significant bits. At 1 bit per pixel, 8
// pixels share a byte with no polarity change. At 2 bits per pixel, 4
// pixels share a byte and every value is inverted against 3, so the
// darkest tone lands on the highest bits - the polarity the display
// controller expects.
//
// 3. Output: packed records are handed to a sink. PageWriter implements
// the on-disk layout (zero-padded page files plus a HEAD index record);
// the epd75 subpackage pushes frames straight to a panel over SPI.
//
// # Basic Usage
//
//	p, err := epdpage.New(&epdpage.Opts{
//		Mode:  epdpage.ModeDiffusion,
//		Depth: 1,
//	})
//	if err != nil {
//		return err
//	}
//	packed, err := p.Convert(pageImage)
//
// For a batch of pages with numbered output files:
//
//	w, err := epdpage.NewPageWriter(outDir)
//	if err != nil {
//		return err
//	}
//	if err := p.ConvertAll(pages, w, nil); err != nil {
//		return err
//	}
//	err = w.WriteIndex()
//
// # Byte Layout
//
// A w×h page packs into w*h/8 bytes at depth 1 and w*h/4 bytes at depth
// 2. Page dimensions must align to the pack group (8 or 4 pixels);
// unaligned pixel counts are rejected rather than silently truncated,
// since a dropped tail shifts every following row on the display.
//
// The 2-bit layout for tones t0..t3 (0 = black) is:
//
//	byte = (t0^3)<<6 | (t1^3)<<4 | (t2^3)<<2 | (t3^3)
//
// Pack and Unpack are exact inverses for aligned input.
package epdpage
