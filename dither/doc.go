// Package dither reduces greyscale page images to 2- or 4-tone rasters.
//
// The package works on Buffer, a real-valued greyscale plane in [0, 255].
// Three reductions are provided:
//
// - Diffuse: error-diffusion dithering driven by a Kernel. The rounding
// error of each pixel is spread over not-yet-visited neighbours, so the
// scan is strictly sequential but gradients stay smooth.
//
// - Ordered: ordered dithering driven by a tileable threshold Matrix.
// Each pixel depends only on its own value and position, so the result
// is stable across runs and trivially parallelizable, at the cost of
// visible periodic patterning.
//
// - Quantize: straight equal-width binning to 2 or 4 levels with no
// dithering, for multi-tone greyscale output.
//
// Kernels and matrices are pure data. The named ones (FloydSteinberg,
// Stucki, Atkinson, Bayer8, ...) are package constants; callers can build
// their own with NewKernel and NewMatrix.
//
// Example reducing an image to bilevel with Floyd-Steinberg:
//
//	buf := dither.FromImage(img)
//	if err := dither.Diffuse(buf, dither.FloydSteinberg); err != nil {
//		return err
//	}
//	q, err := dither.Quantize(buf, 2)
package dither
